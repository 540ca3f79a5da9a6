package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

const recordsTable = "pdf_cufe"

var schemaDDL = map[string]string{
	dialect.SQLite: `CREATE TABLE IF NOT EXISTS pdf_cufe (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name TEXT NOT NULL,
	page_count INTEGER NOT NULL,
	identifier TEXT,
	file_size TEXT NOT NULL,
	extracted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`,
	dialect.Postgres: `CREATE TABLE IF NOT EXISTS pdf_cufe (
	id BIGSERIAL PRIMARY KEY,
	file_name TEXT NOT NULL,
	page_count INTEGER NOT NULL,
	identifier TEXT,
	file_size TEXT NOT NULL,
	extracted_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

// EnsureSchema creates the records table if it is missing. Existing tables
// and rows are left untouched.
func (d *DB) EnsureSchema(ctx context.Context) error {
	ddl, ok := schemaDDL[d.Dialect()]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", d.Dialect())
	}
	if err := d.drv.Exec(ctx, ddl, []any{}, nil); err != nil {
		d.logger.Error("failed to create schema", "table", recordsTable, "error", err)
		return fmt.Errorf("create table %s: %w", recordsTable, err)
	}
	d.logger.Debug("schema ready", "table", recordsTable, "dialect", d.Dialect())
	return nil
}
