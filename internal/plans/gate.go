package plans

import (
	"fmt"

	"github.com/gatehouse/marketplace/pkg/models"
)

// Plan slugs in upgrade order
const (
	PlanFree       = "free"
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

var planLadder = []string{PlanFree, PlanStarter, PlanPro, PlanEnterprise}

// EntryPaidPlan is suggested when a plan has no access to a resource type
const EntryPaidPlan = PlanStarter

// NextPlan returns the plan one step above slug. The top plan and unknown
// slugs map to PlanEnterprise.
func NextPlan(slug string) string {
	for i, s := range planLadder {
		if s == slug && i+1 < len(planLadder) {
			return planLadder[i+1]
		}
	}
	return PlanEnterprise
}

// Decision is the outcome of a plan check. A denial is an expected result,
// not an error.
type Decision struct {
	Allowed       bool   `json:"allowed"`
	Reason        string `json:"reason,omitempty"`
	SuggestedPlan string `json:"suggested_plan,omitempty"`
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason, suggested string) Decision {
	return Decision{Reason: reason, SuggestedPlan: suggested}
}

// exceeds reports whether value is over a ceiling. A ceiling of zero or less
// means unlimited.
func exceeds(value, ceiling int) bool {
	return ceiling > 0 && value > ceiling
}

// PlanAllowsResource runs the plan checks in order and returns on the first
// failure, so callers always get one actionable reason.
func PlanAllowsResource(plan *models.SubscriptionPlan, r *models.ComputeResource) Decision {
	if plan == nil {
		return deny("no active subscription plan", EntryPaidPlan)
	}
	if r == nil {
		return deny("resource not found", "")
	}

	if r.IsGPU() && ResolveAccessTier(plan.AllowedGPUAccess) == AccessNone {
		return deny(fmt.Sprintf("the %s plan does not include GPU access", planName(plan)), EntryPaidPlan)
	}
	if !r.IsGPU() && ResolveAccessTier(plan.AllowedCPUAccess) == AccessNone {
		return deny(fmt.Sprintf("the %s plan does not include CPU access", planName(plan)), EntryPaidPlan)
	}

	upgrade := NextPlan(plan.Slug)
	if exceeds(r.CPUCores, plan.MaxCPUCores) {
		return deny(fmt.Sprintf("resource has %d CPU cores; the %s plan allows up to %d",
			r.CPUCores, planName(plan), plan.MaxCPUCores), upgrade)
	}
	if exceeds(r.GPUCount, plan.MaxGPUCount) {
		return deny(fmt.Sprintf("resource has %d GPUs; the %s plan allows up to %d",
			r.GPUCount, planName(plan), plan.MaxGPUCount), upgrade)
	}
	if exceeds(r.RAMGB, plan.MaxRAMGB) {
		return deny(fmt.Sprintf("resource has %dGB RAM; the %s plan allows up to %dGB",
			r.RAMGB, planName(plan), plan.MaxRAMGB), upgrade)
	}
	if exceeds(r.StorageGB, plan.MaxStorageGB) {
		return deny(fmt.Sprintf("resource has %dGB storage; the %s plan allows up to %dGB",
			r.StorageGB, planName(plan), plan.MaxStorageGB), upgrade)
	}

	return allow()
}

// ResourceMeetsPlanRequirements is the boolean form used for bulk filtering.
// On top of PlanAllowsResource it enforces the plan's PoW score floors: the
// CPU floor applies to every resource, the GPU floor to GPU resources only.
func ResourceMeetsPlanRequirements(plan *models.SubscriptionPlan, r *models.ComputeResource) bool {
	if !PlanAllowsResource(plan, r).Allowed {
		return false
	}
	if plan.MinCPUPowScore > 0 && r.CPUPowScore < plan.MinCPUPowScore {
		return false
	}
	if r.IsGPU() && plan.MinGPUPowScore > 0 && r.GPUPowScore < plan.MinGPUPowScore {
		return false
	}
	return true
}

func planName(plan *models.SubscriptionPlan) string {
	if plan.Name != "" {
		return plan.Name
	}
	if plan.Slug != "" {
		return plan.Slug
	}
	return "current"
}
