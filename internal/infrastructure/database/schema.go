package database

import (
	"context"
	"fmt"
)

// Schema DDL, executed statement by statement so a failure names the
// statement. The partial unique indexes on authors are the enforcement
// mechanism of record for the assignment invariants: application-level
// pre-checks are advisory and may race, the index rejection is not.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

	`CREATE TABLE IF NOT EXISTS departments (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name        TEXT NOT NULL,
		code        TEXT,
		university  TEXT NOT NULL DEFAULT '',
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT departments_name_key UNIQUE (name)
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS departments_code_key
		ON departments (code) WHERE code IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS admins (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id   TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL,
		fullname      TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'admin',
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT admins_email_key UNIQUE (email),
		CONSTRAINT admins_role_check CHECK (role IN ('admin', 'super-admin', 'moderator'))
	)`,

	`CREATE TABLE IF NOT EXISTS publications (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title            TEXT NOT NULL,
		abstract         TEXT NOT NULL DEFAULT '',
		publication_date DATE NOT NULL,
		isbn             TEXT NOT NULL,
		journal_name     TEXT NOT NULL DEFAULT '',
		journal_type     TEXT NOT NULL DEFAULT 'journal',
		impact_factor    NUMERIC(6,3),
		file_url         TEXT NOT NULL,
		department_id    UUID NOT NULL REFERENCES departments (id) ON DELETE RESTRICT,
		co_author_count  INTEGER NOT NULL DEFAULT 0 CHECK (co_author_count >= 0),
		keywords         TEXT[] NOT NULL DEFAULT '{}',
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT publications_isbn_key UNIQUE (isbn),
		CONSTRAINT publications_journal_type_check
			CHECK (journal_type IN ('journal', 'conference', 'workshop', 'preprint'))
	)`,

	`CREATE TABLE IF NOT EXISTS authors (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id    TEXT NOT NULL,
		author_name    TEXT NOT NULL,
		email          TEXT NOT NULL DEFAULT '',
		password       TEXT NOT NULL DEFAULT '',
		department_id  UUID NOT NULL REFERENCES departments (id) ON DELETE RESTRICT,
		publication_id UUID REFERENCES publications (id) ON DELETE RESTRICT,
		author_order   INTEGER CHECK (author_order >= 1),
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT authors_order_required CHECK (
			(publication_id IS NULL AND author_order IS NULL) OR
			(publication_id IS NOT NULL AND author_order IS NOT NULL)
		)
	)`,

	// One active template per person.
	`CREATE UNIQUE INDEX IF NOT EXISTS authors_template_employee_uq
		ON authors (employee_id) WHERE publication_id IS NULL AND is_active`,

	// No author assigned twice to the same publication.
	`CREATE UNIQUE INDEX IF NOT EXISTS authors_publication_employee_uq
		ON authors (publication_id, employee_id) WHERE publication_id IS NOT NULL AND is_active`,

	// No two assignments occupying one ordinal slot.
	`CREATE UNIQUE INDEX IF NOT EXISTS authors_publication_order_uq
		ON authors (publication_id, author_order) WHERE publication_id IS NOT NULL AND is_active`,

	`CREATE INDEX IF NOT EXISTS publications_department_idx ON publications (department_id)`,
	`CREATE INDEX IF NOT EXISTS publications_date_idx ON publications (publication_date)`,
	`CREATE INDEX IF NOT EXISTS publications_keywords_idx ON publications USING GIN (keywords)`,
	`CREATE INDEX IF NOT EXISTS authors_publication_idx ON authors (publication_id)`,
}

// EnsureSchema creates tables and indexes idempotently on startup.
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
