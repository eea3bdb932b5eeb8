package catalog

import (
	"context"
	"fmt"

	"github.com/gatehouse/marketplace/internal/config"
	"github.com/gatehouse/marketplace/internal/storage"
	"github.com/gatehouse/marketplace/internal/storage/postgres"
	"github.com/gatehouse/marketplace/pkg/models"
)

// ResourceReader reads catalog resources
type ResourceReader interface {
	ListResources(ctx context.Context) ([]models.ComputeResource, error)
	GetResource(ctx context.Context, id string) (*models.ComputeResource, error)
}

// PlanReader reads subscription plans
type PlanReader interface {
	GetPlan(ctx context.Context, ref string) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
}

// Backend is an opened catalog store. The writers are nil for read-only
// backends.
type Backend struct {
	Driver    string
	Resources ResourceReader
	Plans     PlanReader

	ResourceWriter ResourceWriter
	PlanWriter     PlanWriter

	close func() error
}

// Writable reports whether the backend accepts seeds
func (b *Backend) Writable() bool {
	return b.ResourceWriter != nil && b.PlanWriter != nil
}

// Seed applies a seed file to a writable backend
func (b *Backend) Seed(ctx context.Context, path string) (*Seed, error) {
	if !b.Writable() {
		return nil, fmt.Errorf("%s catalog is read-only", b.Driver)
	}
	seed, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Apply(ctx, seed, b.PlanWriter, b.ResourceWriter); err != nil {
		return nil, err
	}
	return seed, nil
}

// Close releases the underlying connection
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the catalog store selected by the database config.
// SQLite databases are migrated on open.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		db, err := storage.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		resources := storage.NewResourceStore(db)
		plans := storage.NewPlanStore(db)
		return &Backend{
			Driver:         config.DriverSQLite,
			Resources:      resources,
			Plans:          plans,
			ResourceWriter: resources,
			PlanWriter:     plans,
			close:          db.Close,
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		c := postgres.NewCatalog(pool)
		return &Backend{
			Driver:    config.DriverPostgres,
			Resources: c,
			Plans:     c,
			close: func() error {
				c.Close()
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
