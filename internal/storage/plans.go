package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gatehouse/marketplace/pkg/models"
)

// PlanStore handles subscription plan definitions
type PlanStore struct {
	db *DB
}

// NewPlanStore creates a new plan store
func NewPlanStore(db *DB) *PlanStore {
	return &PlanStore{db: db}
}

const planColumns = `
	id, name, slug, price_monthly,
	allowed_gpu_access, allowed_cpu_access,
	max_cpu_cores, max_gpu_count, max_ram_gb, max_storage_gb,
	min_cpu_pow_score, min_gpu_pow_score
`

// Upsert inserts a plan or replaces the stored copy with the same ID
func (s *PlanStore) Upsert(ctx context.Context, p *models.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (` + planColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			price_monthly = excluded.price_monthly,
			allowed_gpu_access = excluded.allowed_gpu_access,
			allowed_cpu_access = excluded.allowed_cpu_access,
			max_cpu_cores = excluded.max_cpu_cores,
			max_gpu_count = excluded.max_gpu_count,
			max_ram_gb = excluded.max_ram_gb,
			max_storage_gb = excluded.max_storage_gb,
			min_cpu_pow_score = excluded.min_cpu_pow_score,
			min_gpu_pow_score = excluded.min_gpu_pow_score
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Slug, p.PriceMonthly,
		p.AllowedGPUAccess, p.AllowedCPUAccess,
		p.MaxCPUCores, p.MaxGPUCount, p.MaxRAMGB, p.MaxStorageGB,
		p.MinCPUPowScore, p.MinGPUPowScore,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}
	return nil
}

// Get retrieves a plan by ID or slug
func (s *PlanStore) Get(ctx context.Context, ref string) (*models.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = ? OR slug = ? LIMIT 1`

	p := &models.SubscriptionPlan{}
	err := s.db.QueryRowContext(ctx, query, ref, ref).Scan(
		&p.ID, &p.Name, &p.Slug, &p.PriceMonthly,
		&p.AllowedGPUAccess, &p.AllowedCPUAccess,
		&p.MaxCPUCores, &p.MaxGPUCount, &p.MaxRAMGB, &p.MaxStorageGB,
		&p.MinCPUPowScore, &p.MinGPUPowScore,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return p, nil
}

// List returns all plans ordered by monthly price
func (s *PlanStore) List(ctx context.Context) ([]models.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY price_monthly, slug`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.SubscriptionPlan
	for rows.Next() {
		var p models.SubscriptionPlan
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.PriceMonthly,
			&p.AllowedGPUAccess, &p.AllowedCPUAccess,
			&p.MaxCPUCores, &p.MaxGPUCount, &p.MaxRAMGB, &p.MaxStorageGB,
			&p.MinCPUPowScore, &p.MinGPUPowScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}
	return plans, nil
}

// GetPlan implements the marketplace plan catalog
func (s *PlanStore) GetPlan(ctx context.Context, ref string) (*models.SubscriptionPlan, error) {
	return s.Get(ctx, ref)
}

// ListPlans implements the marketplace plan catalog
func (s *PlanStore) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	return s.List(ctx)
}
