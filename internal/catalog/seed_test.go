package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/marketplace/internal/storage"
	"github.com/gatehouse/marketplace/pkg/models"
)

const testSeed = `
plans:
  - name: Free
    slug: free
    allowed_gpu_access: none
    allowed_cpu_access: entry
    max_cpu_cores: 4
  - id: plan-pro
    name: Pro
    slug: pro
    price_monthly: 49
    allowed_gpu_access: standard
    allowed_cpu_access: all
resources:
  - id: res-gpu-1
    gpu_model: NVIDIA RTX 4090
    gpu_count: 1
    gpu_vram_gb: 24
    cpu_cores: 16
    ram_gb: 64
    storage_gb: 500
    region: Lagos
    country: Nigeria
    hourly_price: 0.74
    validation_status: verified
    verifier_status: verified
    admin_approval_status: verified
    is_active: true
  - resource_type: cpu
    cpu_cores: 8
    ram_gb: 32
    storage_gb: 100
    region: Nairobi
    hourly_price: 0.12
    is_active: true
`

func TestParse(t *testing.T) {
	seed, err := Parse([]byte(testSeed))
	require.NoError(t, err)

	require.Len(t, seed.Plans, 2)
	assert.Equal(t, "plan-free", seed.Plans[0].ID)
	assert.Equal(t, "plan-pro", seed.Plans[1].ID)
	assert.Equal(t, 4, seed.Plans[0].MaxCPUCores)

	require.Len(t, seed.Resources, 2)
	gpu := seed.Resources[0]
	assert.Equal(t, models.ResourceTypeGPU, gpu.ResourceType)
	assert.Equal(t, models.ApprovalVerified, gpu.AdminApprovalStatus)
	assert.Equal(t, models.SourceCatalog, gpu.Source)

	cpu := seed.Resources[1]
	assert.Equal(t, models.ResourceTypeCPU, cpu.ResourceType)
	assert.NotEmpty(t, cpu.ID)
}

func TestParse_DerivedIDsAreStable(t *testing.T) {
	a, err := Parse([]byte(testSeed))
	require.NoError(t, err)
	b, err := Parse([]byte(testSeed))
	require.NoError(t, err)

	assert.Equal(t, a.Resources[1].ID, b.Resources[1].ID)
}

func TestParse_DerivedIDsCarryTypeMarker(t *testing.T) {
	seed, err := Parse([]byte(`
resources:
  - gpu_model: NVIDIA RTX 4090
    region: Lagos
  - resource_type: cpu
    region: Nairobi
`))
	require.NoError(t, err)
	require.Len(t, seed.Resources, 2)

	assert.Regexp(t, `^cat-gpu-[0-9a-f-]{36}$`, seed.Resources[0].ID)
	assert.Regexp(t, `^cat-cpu-[0-9a-f-]{36}$`, seed.Resources[1].ID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"malformed", "plans: [", "failed to parse seed"},
		{"unknown field", "plans:\n  - slug: free\n    name: Free\n    colour: red\n", "failed to parse seed"},
		{"missing slug", "plans:\n  - name: Free\n", "slug is required"},
		{"missing name", "plans:\n  - slug: free\n", "name is required"},
		{"duplicate slug", "plans:\n  - {slug: free, name: Free}\n  - {slug: free, name: Again}\n", "duplicate slug"},
		{"duplicate id", "resources:\n  - {id: a, cpu_cores: 1}\n  - {id: a, cpu_cores: 2}\n", "duplicate id"},
		{"bad type", "resources:\n  - {id: a, resource_type: tpu}\n", "unknown resource_type"},
		{"bad status", "resources:\n  - {id: a, admin_approval_status: approved}\n", "invalid admin_approval_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0644))

	seed, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, seed.Resources, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply_SQLite(t *testing.T) {
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))

	seed, err := Parse([]byte(testSeed))
	require.NoError(t, err)

	plans := storage.NewPlanStore(db)
	resources := storage.NewResourceStore(db)
	require.NoError(t, Apply(ctx, seed, plans, resources))

	// Applying twice is idempotent
	require.NoError(t, Apply(ctx, seed, plans, resources))

	n, err := resources.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := plans.Get(ctx, "free")
	require.NoError(t, err)
	assert.Equal(t, "entry", p.AllowedCPUAccess)
}

type failingWriter struct{}

func (failingWriter) Upsert(ctx context.Context, _ *models.ComputeResource) error {
	return errors.New("disk full")
}

type nopPlanWriter struct{}

func (nopPlanWriter) Upsert(ctx context.Context, _ *models.SubscriptionPlan) error { return nil }

func TestApply_PropagatesErrors(t *testing.T) {
	seed, err := Parse([]byte(testSeed))
	require.NoError(t, err)

	err = Apply(context.Background(), seed, nopPlanWriter{}, failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed resource res-gpu-1")
	assert.Contains(t, err.Error(), "disk full")
}

func TestDefaultSeedFileParses(t *testing.T) {
	seed, err := LoadFile(filepath.Join("..", "..", "configs", "catalog.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, seed.Plans)
	assert.NotEmpty(t, seed.Resources)
}
