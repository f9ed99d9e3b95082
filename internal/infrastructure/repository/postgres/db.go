package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates all tables. Safe to run from api and worker
// concurrently; the advisory lock serializes bootstrap DDL.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS applications (
	id TEXT PRIMARY KEY,
	applicant_name TEXT NOT NULL,
	applicant_email TEXT NOT NULL,
	applicant_phone TEXT NOT NULL,
	property_address TEXT NOT NULL,
	project_description TEXT,
	project_type TEXT NOT NULL,
	permit_type TEXT NOT NULL,
	estimated_cost TEXT,
	status TEXT NOT NULL,
	required_documents JSONB NOT NULL DEFAULT '[]'::jsonb,
	documents JSONB NOT NULL DEFAULT '[]'::jsonb,
	missing_items JSONB NOT NULL DEFAULT '[]'::jsonb,
	comments JSONB NOT NULL DEFAULT '[]'::jsonb,
	ready_for_human_review BOOLEAN NOT NULL DEFAULT FALSE,
	complete BOOLEAN NOT NULL DEFAULT FALSE,
	assigned_to TEXT,
	estimated_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);
CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at);

CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	service_type TEXT NOT NULL,
	details JSONB NOT NULL DEFAULT '{}'::jsonb,
	status TEXT NOT NULL,
	notes JSONB NOT NULL DEFAULT '[]'::jsonb,
	assigned_to TEXT,
	estimated_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_contact_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);

CREATE TABLE IF NOT EXISTS quick_quotes (
	id TEXT PRIMARY KEY,
	permit_type TEXT NOT NULL,
	timeline TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	status TEXT NOT NULL,
	notes JSONB NOT NULL DEFAULT '[]'::jsonb,
	assigned_to TEXT,
	estimated_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_contact_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quick_quotes_status ON quick_quotes(status);

CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	application_id TEXT NOT NULL,
	amount BIGINT NOT NULL,
	currency TEXT NOT NULL,
	status TEXT NOT NULL,
	permit_type TEXT NOT NULL,
	fee_breakdown JSONB NOT NULL DEFAULT '{}'::jsonb,
	session_id TEXT,
	paid_at TIMESTAMPTZ,
	refunded_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payments_application_id ON payments(application_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
