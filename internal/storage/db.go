package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// WAL lets listing reads proceed while a seed is being written
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't handle concurrent writes well
	db.SetMaxIdleConns(1)

	return &DB{db}, nil
}

// Migrate runs database migrations
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationResources,
		migrationPlans,
		migrationIndexes,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	// Run ALTER TABLE migrations (ignore "duplicate column" errors)
	alterMigrations := []string{
		migrationResourceSSHPort,
	}

	for _, migration := range alterMigrations {
		_, _ = db.ExecContext(ctx, migration) // Ignore errors for idempotency
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

const migrationResources = `
CREATE TABLE IF NOT EXISTS resources (
	id TEXT PRIMARY KEY,
	resource_type TEXT NOT NULL CHECK (resource_type IN ('gpu', 'cpu')),
	provider TEXT NOT NULL DEFAULT '',

	-- Hardware
	gpu_model TEXT NOT NULL DEFAULT '',
	cpu_model TEXT NOT NULL DEFAULT '',
	gpu_count INTEGER NOT NULL DEFAULT 0,
	gpu_vram_gb INTEGER NOT NULL DEFAULT 0,
	cpu_cores INTEGER NOT NULL,
	ram_gb INTEGER NOT NULL,
	storage_gb INTEGER NOT NULL,
	storage_type TEXT NOT NULL DEFAULT '',
	cpu_pow_score REAL NOT NULL DEFAULT 0,
	gpu_pow_score REAL NOT NULL DEFAULT 0,

	-- Location
	region TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL DEFAULT '',

	-- Pricing
	hourly_price REAL NOT NULL,
	is_spot INTEGER NOT NULL DEFAULT 0,

	-- Approval signals
	validation_status TEXT NOT NULL DEFAULT 'pending',
	verifier_status TEXT NOT NULL DEFAULT 'pending',
	admin_approval_status TEXT NOT NULL DEFAULT 'pending',

	is_blacklisted INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	rental_user_id TEXT,

	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const migrationPlans = `
CREATE TABLE IF NOT EXISTS subscription_plans (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	price_monthly REAL NOT NULL DEFAULT 0,
	allowed_gpu_access TEXT NOT NULL DEFAULT 'none',
	allowed_cpu_access TEXT NOT NULL DEFAULT 'none',
	max_cpu_cores INTEGER NOT NULL DEFAULT 0,
	max_gpu_count INTEGER NOT NULL DEFAULT 0,
	max_ram_gb INTEGER NOT NULL DEFAULT 0,
	max_storage_gb INTEGER NOT NULL DEFAULT 0,
	min_cpu_pow_score REAL NOT NULL DEFAULT 0,
	min_gpu_pow_score REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const migrationIndexes = `
CREATE INDEX IF NOT EXISTS idx_resources_type ON resources(resource_type);
CREATE INDEX IF NOT EXISTS idx_resources_listable ON resources(is_active, is_blacklisted, admin_approval_status);
CREATE INDEX IF NOT EXISTS idx_resources_price ON resources(hourly_price);
`

// migrationResourceSSHPort was added after the first catalog release
const migrationResourceSSHPort = `
ALTER TABLE resources ADD COLUMN ssh_port INTEGER NOT NULL DEFAULT 0;
`
