package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schemaLockID = int64(2026101601)

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

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker/gapctl startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS fields (
	name TEXT PRIMARY KEY,
	hcfa_box TEXT NOT NULL DEFAULT '',
	requirement_level TEXT NOT NULL DEFAULT '',
	short_description TEXT NOT NULL DEFAULT '',
	likely_source TEXT NOT NULL DEFAULT '',
	primary_need TEXT NOT NULL DEFAULT '',
	implementation_note TEXT NOT NULL DEFAULT '',
	phase TEXT NOT NULL DEFAULT '',
	cm_extract_requirement TEXT NOT NULL DEFAULT '',
	case_management_system TEXT NOT NULL DEFAULT '',
	program TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	data_frequency TEXT NOT NULL DEFAULT '',
	origin TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fields_origin_position ON fields(origin, position);

CREATE TABLE IF NOT EXISTS assessments (
	id TEXT PRIMARY KEY,
	field_name TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL,
	mapped_field_name TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT '',
	assigned_to TEXT NOT NULL DEFAULT '',
	author TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_updated_at ON assessments(updated_at DESC);

CREATE TABLE IF NOT EXISTS assessment_notes_history (
	id TEXT PRIMARY KEY,
	field_name TEXT NOT NULL,
	author TEXT NOT NULL,
	notes TEXT NOT NULL,
	status_at_time_of_note TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_history_field_created ON assessment_notes_history(field_name, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
