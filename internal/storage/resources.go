package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gatehouse/marketplace/pkg/models"
)

// ResourceStore handles the local resource catalog
type ResourceStore struct {
	db *DB
}

// NewResourceStore creates a new resource store
func NewResourceStore(db *DB) *ResourceStore {
	return &ResourceStore{db: db}
}

const resourceColumns = `
	id, resource_type, provider,
	gpu_model, cpu_model, gpu_count, gpu_vram_gb, cpu_cores, ram_gb, storage_gb, storage_type,
	cpu_pow_score, gpu_pow_score,
	region, country, ip_address, ssh_port,
	hourly_price, is_spot,
	validation_status, verifier_status, admin_approval_status,
	is_blacklisted, is_active, rental_user_id
`

// Upsert inserts a resource or replaces the stored copy with the same ID
func (s *ResourceStore) Upsert(ctx context.Context, r *models.ComputeResource) error {
	query := `
		INSERT INTO resources (` + resourceColumns + `) VALUES (
			?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?,
			?, ?,
			?, ?, ?, ?,
			?, ?,
			?, ?, ?,
			?, ?, ?
		)
		ON CONFLICT(id) DO UPDATE SET
			resource_type = excluded.resource_type,
			provider = excluded.provider,
			gpu_model = excluded.gpu_model,
			cpu_model = excluded.cpu_model,
			gpu_count = excluded.gpu_count,
			gpu_vram_gb = excluded.gpu_vram_gb,
			cpu_cores = excluded.cpu_cores,
			ram_gb = excluded.ram_gb,
			storage_gb = excluded.storage_gb,
			storage_type = excluded.storage_type,
			cpu_pow_score = excluded.cpu_pow_score,
			gpu_pow_score = excluded.gpu_pow_score,
			region = excluded.region,
			country = excluded.country,
			ip_address = excluded.ip_address,
			ssh_port = excluded.ssh_port,
			hourly_price = excluded.hourly_price,
			is_spot = excluded.is_spot,
			validation_status = excluded.validation_status,
			verifier_status = excluded.verifier_status,
			admin_approval_status = excluded.admin_approval_status,
			is_blacklisted = excluded.is_blacklisted,
			is_active = excluded.is_active,
			rental_user_id = excluded.rental_user_id,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.ResourceType, r.Provider,
		r.GPUModel, r.CPUModel, r.GPUCount, r.GPUVramGB, r.CPUCores, r.RAMGB, r.StorageGB, r.StorageType,
		r.CPUPowScore, r.GPUPowScore,
		r.Region, r.Country, r.IPAddress, r.SSHPort,
		r.HourlyPrice, r.IsSpot,
		statusOrPending(r.ValidationStatus), statusOrPending(r.VerifierStatus), statusOrPending(r.AdminApprovalStatus),
		r.IsBlacklisted, r.IsActive, nullString(r.RentalUserID),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert resource: %w", err)
	}
	return nil
}

// Get retrieves a resource by its internal ID
func (s *ResourceStore) Get(ctx context.Context, id string) (*models.ComputeResource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = ?`

	r, err := scanResource(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return r, nil
}

// List returns every catalog resource ordered by price
func (s *ResourceStore) List(ctx context.Context) ([]models.ComputeResource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources ORDER BY hourly_price, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []models.ComputeResource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resources: %w", err)
	}
	return resources, nil
}

// Delete removes a resource from the catalog
func (s *ResourceStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of catalog resources
func (s *ResourceStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return n, nil
}

// ListResources implements the marketplace resource catalog
func (s *ResourceStore) ListResources(ctx context.Context) ([]models.ComputeResource, error) {
	return s.List(ctx)
}

// GetResource implements the marketplace resource catalog
func (s *ResourceStore) GetResource(ctx context.Context, id string) (*models.ComputeResource, error) {
	return s.Get(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*models.ComputeResource, error) {
	r := &models.ComputeResource{Source: models.SourceCatalog}
	var rentalUserID sql.NullString

	err := row.Scan(
		&r.ID, &r.ResourceType, &r.Provider,
		&r.GPUModel, &r.CPUModel, &r.GPUCount, &r.GPUVramGB, &r.CPUCores, &r.RAMGB, &r.StorageGB, &r.StorageType,
		&r.CPUPowScore, &r.GPUPowScore,
		&r.Region, &r.Country, &r.IPAddress, &r.SSHPort,
		&r.HourlyPrice, &r.IsSpot,
		&r.ValidationStatus, &r.VerifierStatus, &r.AdminApprovalStatus,
		&r.IsBlacklisted, &r.IsActive, &rentalUserID,
	)
	if err != nil {
		return nil, err
	}

	if rentalUserID.Valid {
		id := rentalUserID.String
		r.RentalUserID = &id
	}
	return r, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func statusOrPending(s models.ApprovalStatus) models.ApprovalStatus {
	if s == "" {
		return models.ApprovalPending
	}
	return s
}
