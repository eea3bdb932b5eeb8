// Package postgres reads the resource and plan catalogs from a shared
// PostgreSQL database owned by the provider onboarding and billing services.
// The marketplace never writes to it.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse/marketplace/internal/storage"
	"github.com/gatehouse/marketplace/pkg/models"
)

// Catalog is a read-only view over the resources and subscription_plans tables
type Catalog struct {
	pool *pgxpool.Pool
}

// NewPool creates a connection pool from a DSN and verifies connectivity
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

// NewCatalog wraps an existing pool
func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// Close releases the pool
func (c *Catalog) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

const resourceSelect = `
	SELECT id, resource_type, provider,
		gpu_model, cpu_model, gpu_count, gpu_vram_gb, cpu_cores, ram_gb, storage_gb, storage_type,
		cpu_pow_score, gpu_pow_score,
		region, country, ip_address, ssh_port,
		hourly_price, is_spot,
		validation_status, verifier_status, admin_approval_status,
		is_blacklisted, is_active, rental_user_id
	FROM resources
`

// ListResources returns every catalog resource ordered by price
func (c *Catalog) ListResources(ctx context.Context) ([]models.ComputeResource, error) {
	rows, err := c.pool.Query(ctx, resourceSelect+` ORDER BY hourly_price, id`)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var resources []models.ComputeResource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, *r)
	}

	return resources, rows.Err()
}

// GetResource retrieves a resource by its internal ID
func (c *Catalog) GetResource(ctx context.Context, id string) (*models.ComputeResource, error) {
	r, err := scanResource(c.pool.QueryRow(ctx, resourceSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return r, nil
}

const planSelect = `
	SELECT id, name, slug, price_monthly,
		allowed_gpu_access, allowed_cpu_access,
		max_cpu_cores, max_gpu_count, max_ram_gb, max_storage_gb,
		min_cpu_pow_score, min_gpu_pow_score
	FROM subscription_plans
`

// GetPlan retrieves a plan by ID or slug
func (c *Catalog) GetPlan(ctx context.Context, ref string) (*models.SubscriptionPlan, error) {
	p, err := scanPlan(c.pool.QueryRow(ctx, planSelect+` WHERE id = $1 OR slug = $1 LIMIT 1`, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

// ListPlans returns all plans ordered by monthly price
func (c *Catalog) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	rows, err := c.pool.Query(ctx, planSelect+` ORDER BY price_monthly, slug`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var plans []models.SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}

	return plans, rows.Err()
}

func scanResource(row pgx.Row) (*models.ComputeResource, error) {
	r := &models.ComputeResource{Source: models.SourceCatalog}
	var resourceType, validation, verifier, admin string

	err := row.Scan(
		&r.ID, &resourceType, &r.Provider,
		&r.GPUModel, &r.CPUModel, &r.GPUCount, &r.GPUVramGB, &r.CPUCores, &r.RAMGB, &r.StorageGB, &r.StorageType,
		&r.CPUPowScore, &r.GPUPowScore,
		&r.Region, &r.Country, &r.IPAddress, &r.SSHPort,
		&r.HourlyPrice, &r.IsSpot,
		&validation, &verifier, &admin,
		&r.IsBlacklisted, &r.IsActive, &r.RentalUserID,
	)
	if err != nil {
		return nil, err
	}

	r.ResourceType = models.ResourceType(resourceType)
	r.ValidationStatus = models.ApprovalStatus(validation)
	r.VerifierStatus = models.ApprovalStatus(verifier)
	r.AdminApprovalStatus = models.ApprovalStatus(admin)
	return r, nil
}

func scanPlan(row pgx.Row) (*models.SubscriptionPlan, error) {
	p := &models.SubscriptionPlan{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.PriceMonthly,
		&p.AllowedGPUAccess, &p.AllowedCPUAccess,
		&p.MaxCPUCores, &p.MaxGPUCount, &p.MaxRAMGB, &p.MaxStorageGB,
		&p.MinCPUPowScore, &p.MinGPUPowScore,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
