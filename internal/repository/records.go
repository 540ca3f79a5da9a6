package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/cufe-extractor/internal/entity"
)

var recordColumns = []string{"id", "file_name", "page_count", "identifier", "file_size", "extracted_at"}

type RecordRepository interface {
	// Create inserts rec and returns it with the store-assigned id and timestamp.
	Create(ctx context.Context, rec entity.ExtractionRecord) (*entity.ExtractionRecord, error)
	// List returns every record in insertion order.
	List(ctx context.Context) ([]*entity.ExtractionRecord, error)
	Count(ctx context.Context) (int, error)
}

type recordRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRecordRepository(db *DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{db: db, logger: logger}
}

func (r *recordRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

func (r *recordRepository) Create(ctx context.Context, rec entity.ExtractionRecord) (*entity.ExtractionRecord, error) {
	var ident any
	if rec.Identifier != nil {
		ident = *rec.Identifier
	}
	query, args := r.builder().
		Insert(recordsTable).
		Columns("file_name", "page_count", "identifier", "file_size").
		Values(rec.FileName, rec.PageCount, ident, rec.FileSize).
		Returning("id", "extracted_at").
		Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to insert record", "file", rec.FileName, "error", err)
		return nil, fmt.Errorf("insert %s: %w", recordsTable, err)
	}
	defer rows.Close()

	if !rows.Next() {
		err := rows.Err()
		if err == nil {
			err = errors.New("no row returned")
		}
		r.logger.Error("failed to insert record", "file", rec.FileName, "error", err)
		return nil, fmt.Errorf("insert %s: %w", recordsTable, err)
	}
	out := rec
	if err := rows.Scan(&out.ID, timestamp{&out.ExtractedAt}); err != nil {
		return nil, fmt.Errorf("insert %s: scan: %w", recordsTable, err)
	}
	r.logger.Debug("record stored", "id", out.ID, "file", out.FileName)
	return &out, nil
}

func (r *recordRepository) List(ctx context.Context) ([]*entity.ExtractionRecord, error) {
	b := r.builder()
	query, args := b.Select(recordColumns...).
		From(b.Table(recordsTable)).
		OrderBy(entsql.Asc("id")).
		Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to list records", "error", err)
		return nil, fmt.Errorf("list %s: %w", recordsTable, err)
	}
	defer rows.Close()

	var out []*entity.ExtractionRecord
	for rows.Next() {
		var (
			rec   entity.ExtractionRecord
			ident sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.PageCount, &ident, &rec.FileSize, timestamp{&rec.ExtractedAt}); err != nil {
			return nil, fmt.Errorf("list %s: scan: %w", recordsTable, err)
		}
		if ident.Valid {
			v := ident.String
			rec.Identifier = &v
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", recordsTable, err)
	}
	return out, nil
}

func (r *recordRepository) Count(ctx context.Context) (int, error) {
	b := r.builder()
	query, args := b.Select(entsql.Count("*")).From(b.Table(recordsTable)).Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("count %s: %w", recordsTable, err)
	}
	defer rows.Close()

	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", recordsTable, err)
	}
	return n, nil
}

// timestamp scans a column that drivers return either as time.Time or as
// SQLite's text form.
type timestamp struct{ t *time.Time }

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05",
}

func (s timestamp) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*s.t = time.Time{}
		return nil
	case time.Time:
		*s.t = x
		return nil
	case []byte:
		return s.parse(string(x))
	case string:
		return s.parse(x)
	default:
		return fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func (s timestamp) parse(v string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", v)
}
