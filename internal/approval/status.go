// Package approval combines the three independent approval signals of a
// compute resource into an overall state and a rent/no-rent decision.
package approval

import "github.com/gatehouse/marketplace/pkg/models"

// OverallStatus combines validation, verifier and admin approval.
// Rejection is absorbing: a single rejected signal rejects the resource
// regardless of the other two. Verified requires all three. A nil
// resource is pending.
func OverallStatus(r *models.ComputeResource) models.ApprovalStatus {
	if r == nil {
		return models.ApprovalPending
	}

	statuses := [...]models.ApprovalStatus{
		r.ValidationStatus,
		r.VerifierStatus,
		r.AdminApprovalStatus,
	}

	for _, s := range statuses {
		if s == models.ApprovalRejected {
			return models.ApprovalRejected
		}
	}

	for _, s := range statuses {
		if s != models.ApprovalVerified {
			return models.ApprovalPending
		}
	}

	return models.ApprovalVerified
}

// IsResourceAvailable reports whether the resource can be rented right now
func IsResourceAvailable(r *models.ComputeResource) bool {
	return models.MeetsRentalConditions(r)
}

// ReviewSummary is the admin-facing view of a resource's approval state
type ReviewSummary struct {
	ResourceID          string                `json:"resource_id"`
	ValidationStatus    models.ApprovalStatus `json:"validation_status"`
	VerifierStatus      models.ApprovalStatus `json:"verifier_status"`
	AdminApprovalStatus models.ApprovalStatus `json:"admin_approval_status"`
	OverallStatus       models.ApprovalStatus `json:"overall_status"`
	IsBlacklisted       bool                  `json:"is_blacklisted"`
	IsActive            bool                  `json:"is_active"`
	IsOccupied          bool                  `json:"is_occupied"`
	IsAvailable         bool                  `json:"is_available"`
	Blockers            []string              `json:"blockers,omitempty"`
}

// Review builds a ReviewSummary, listing every reason the resource is not rentable.
// A nil resource is reviewed as an empty, inactive record.
func Review(r *models.ComputeResource) ReviewSummary {
	if r == nil {
		r = &models.ComputeResource{}
	}

	summary := ReviewSummary{
		ResourceID:          r.ID,
		ValidationStatus:    r.ValidationStatus,
		VerifierStatus:      r.VerifierStatus,
		AdminApprovalStatus: r.AdminApprovalStatus,
		OverallStatus:       OverallStatus(r),
		IsBlacklisted:       r.IsBlacklisted,
		IsActive:            r.IsActive,
		IsOccupied:          r.IsOccupied(),
		IsAvailable:         IsResourceAvailable(r),
	}

	if r.IsBlacklisted {
		summary.Blockers = append(summary.Blockers, "blacklisted")
	}
	if !r.IsActive {
		summary.Blockers = append(summary.Blockers, "inactive")
	}
	if r.IsOccupied() {
		summary.Blockers = append(summary.Blockers, "occupied")
	}
	signals := []struct {
		name   string
		status models.ApprovalStatus
	}{
		{"validation", r.ValidationStatus},
		{"verifier", r.VerifierStatus},
		{"admin", r.AdminApprovalStatus},
	}
	for _, sig := range signals {
		if sig.status != models.ApprovalVerified {
			summary.Blockers = append(summary.Blockers, sig.name+"_"+statusOrPending(sig.status))
		}
	}

	return summary
}

// statusOrPending treats an unset status as pending
func statusOrPending(s models.ApprovalStatus) string {
	if s == "" {
		return string(models.ApprovalPending)
	}
	return string(s)
}
