package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema lists the PostgreSQL statements applied by Migrate, in order.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	uid TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	role TEXT NOT NULL,
	first_name TEXT,
	last_name TEXT,
	password_hash TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS revoked_accounts (
	uid TEXT PRIMARY KEY,
	revoked_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS document_types (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS archives (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	document_type_id TEXT NOT NULL,
	document_type_name TEXT NOT NULL DEFAULT '',
	file_name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	storage_locator TEXT NOT NULL,
	uploaded_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS archives_created_at_idx ON archives (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS archives_document_type_idx ON archives (document_type_id)`,
	`CREATE TABLE IF NOT EXISTS institution_profiles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL,
	phone TEXT NOT NULL,
	email TEXT NOT NULL,
	description TEXT NOT NULL,
	dashboard_title TEXT,
	logo_locator TEXT,
	logo_name TEXT,
	logo_content_type TEXT,
	documents JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_by TEXT,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	user_id TEXT,
	action TEXT NOT NULL,
	resource TEXT NOT NULL,
	resource_id TEXT,
	old_values JSONB,
	new_values JSONB,
	ip_address TEXT,
	user_agent TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS stored_objects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	data BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`,
}

// Migrate applies Schema inside one transaction. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range Schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
