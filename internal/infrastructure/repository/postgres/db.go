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

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS revision_statuses (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL,
	label_native TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS revision_descriptions (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL,
	label_native TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS revision_steps (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL,
	label_native TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS review_codes (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL,
	label_native TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id BIGSERIAL PRIMARY KEY,
	number TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	project_id BIGINT NOT NULL,
	discipline_id BIGINT NOT NULL DEFAULT 0,
	type_id BIGINT NOT NULL DEFAULT 0,
	language_id BIGINT,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS document_revisions (
	id BIGSERIAL PRIMARY KEY,
	document_id BIGINT NOT NULL REFERENCES documents(id),
	sequence_number VARCHAR(8) NOT NULL,
	status_id BIGINT NOT NULL REFERENCES revision_statuses(id),
	description_id BIGINT REFERENCES revision_descriptions(id),
	step_id BIGINT REFERENCES revision_steps(id),
	content_ref TEXT NOT NULL DEFAULT '',
	uploader_id BIGINT NOT NULL DEFAULT 0,
	remarks TEXT NOT NULL DEFAULT '',
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	deleted_via_document BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_document_revisions_document_created
	ON document_revisions(document_id, created_at DESC);

CREATE TABLE IF NOT EXISTS workflow_presets (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	is_global BOOLEAN NOT NULL DEFAULT TRUE,
	created_by BIGINT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS workflow_preset_sequences (
	id BIGSERIAL PRIMARY KEY,
	preset_id BIGINT NOT NULL REFERENCES workflow_presets(id),
	sequence_order INT NOT NULL,
	description_id BIGINT NOT NULL REFERENCES revision_descriptions(id),
	step_id BIGINT NOT NULL REFERENCES revision_steps(id),
	is_final BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS workflow_preset_rules (
	id BIGSERIAL PRIMARY KEY,
	preset_id BIGINT NOT NULL REFERENCES workflow_presets(id),
	document_type_id BIGINT,
	current_description_id BIGINT NOT NULL REFERENCES revision_descriptions(id),
	current_step_id BIGINT NOT NULL REFERENCES revision_steps(id),
	operator TEXT NOT NULL,
	review_code_id BIGINT REFERENCES review_codes(id),
	review_code_list JSONB,
	priority INT NOT NULL DEFAULT 100,
	next_description_id BIGINT REFERENCES revision_descriptions(id),
	next_step_id BIGINT REFERENCES revision_steps(id),
	action_on_fail TEXT NOT NULL DEFAULT 'increment_number'
);

CREATE INDEX IF NOT EXISTS idx_workflow_preset_rules_preset
	ON workflow_preset_rules(preset_id, priority, id);

CREATE TABLE IF NOT EXISTS document_reviews (
	id BIGSERIAL PRIMARY KEY,
	revision_id BIGINT NOT NULL REFERENCES document_revisions(id),
	review_code_id BIGINT NOT NULL REFERENCES review_codes(id),
	reviewer_id BIGINT NOT NULL,
	remarks TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
