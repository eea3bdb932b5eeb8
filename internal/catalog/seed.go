// Package catalog loads the local resource and plan catalog from a YAML
// seed file and writes it into a catalog store.
package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"

	"github.com/gatehouse/marketplace/pkg/models"
)

// seedIDNamespace derives stable IDs for seed entries that omit one
var seedIDNamespace = uuid.MustParse("2f0b8d7e-3c55-4b8e-9a53-6f1f7f0c1a42")

// Seed is the on-disk catalog format
type Seed struct {
	Plans     []models.SubscriptionPlan `yaml:"plans"`
	Resources []models.ComputeResource  `yaml:"resources"`
}

// ResourceWriter persists catalog resources
type ResourceWriter interface {
	Upsert(ctx context.Context, r *models.ComputeResource) error
}

// PlanWriter persists subscription plans
type PlanWriter interface {
	Upsert(ctx context.Context, p *models.SubscriptionPlan) error
}

// LoadFile reads and parses a seed file
func LoadFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document, fills derived fields and validates it
func Parse(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.UnmarshalStrict(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	for i := range seed.Plans {
		p := &seed.Plans[i]
		if p.ID == "" && p.Slug != "" {
			p.ID = "plan-" + p.Slug
		}
	}

	for i := range seed.Resources {
		r := &seed.Resources[i]
		if r.ResourceType == "" {
			if r.GPUModel != "" {
				r.ResourceType = models.ResourceTypeGPU
			} else {
				r.ResourceType = models.ResourceTypeCPU
			}
		}
		// Derived ids carry the type marker the public id prefix keys on
		if r.ID == "" {
			u := uuid.NewSHA1(seedIDNamespace, []byte(fmt.Sprintf("%s|%s|%s|%d", r.ResourceType, r.GPUModel, r.Region, i)))
			r.ID = fmt.Sprintf("cat-%s-%s", r.ResourceType, u)
		}
		r.Source = models.SourceCatalog
	}

	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks identifiers and enumerated fields
func (s *Seed) Validate() error {
	slugs := make(map[string]bool, len(s.Plans))
	for i, p := range s.Plans {
		if p.Slug == "" {
			return fmt.Errorf("plan %d: slug is required", i)
		}
		if p.Name == "" {
			return fmt.Errorf("plan %s: name is required", p.Slug)
		}
		if slugs[p.Slug] {
			return fmt.Errorf("plan %s: duplicate slug", p.Slug)
		}
		slugs[p.Slug] = true
	}

	ids := make(map[string]bool, len(s.Resources))
	for _, r := range s.Resources {
		if ids[r.ID] {
			return fmt.Errorf("resource %s: duplicate id", r.ID)
		}
		ids[r.ID] = true

		if r.ResourceType != models.ResourceTypeGPU && r.ResourceType != models.ResourceTypeCPU {
			return fmt.Errorf("resource %s: unknown resource_type %q", r.ID, r.ResourceType)
		}
		for field, status := range map[string]models.ApprovalStatus{
			"validation_status":     r.ValidationStatus,
			"verifier_status":       r.VerifierStatus,
			"admin_approval_status": r.AdminApprovalStatus,
		} {
			if status != "" && !status.Valid() {
				return fmt.Errorf("resource %s: invalid %s %q", r.ID, field, status)
			}
		}
	}
	return nil
}

// Apply upserts every plan and resource in the seed
func Apply(ctx context.Context, seed *Seed, plans PlanWriter, resources ResourceWriter) error {
	for i := range seed.Plans {
		if err := plans.Upsert(ctx, &seed.Plans[i]); err != nil {
			return fmt.Errorf("seed plan %s: %w", seed.Plans[i].Slug, err)
		}
	}
	for i := range seed.Resources {
		if err := resources.Upsert(ctx, &seed.Resources[i]); err != nil {
			return fmt.Errorf("seed resource %s: %w", seed.Resources[i].ID, err)
		}
	}
	return nil
}
