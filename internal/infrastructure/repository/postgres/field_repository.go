package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/resilience"
)

const (
	fieldColumns     = `name, hcfa_box, requirement_level, short_description, likely_source, primary_need, implementation_note, phase, cm_extract_requirement, case_management_system, program, state, data_frequency, origin, author, position, created_at`
	fieldColumnCount = 17

	DefaultImportBatchSize = 100
)

type FieldRepository struct {
	db        *sql.DB
	guard     guard
	batchSize int
	now       func() time.Time
}

func NewFieldRepository(db *sql.DB, executor *resilience.Executor, batchSize int) *FieldRepository {
	if batchSize <= 0 {
		batchSize = DefaultImportBatchSize
	}
	return &FieldRepository{
		db:        db,
		guard:     guard{executor: executor},
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// LoadFields returns the imported catalog in CSV order.
func (r *FieldRepository) LoadFields(ctx context.Context) ([]domain.FieldRecord, error) {
	return r.listByOrigin(ctx, domain.OriginCSV)
}

func (r *FieldRepository) ListUserAdded(ctx context.Context) ([]domain.FieldRecord, error) {
	return r.listByOrigin(ctx, domain.OriginUserAdded)
}

func (r *FieldRepository) listByOrigin(ctx context.Context, origin domain.FieldOrigin) ([]domain.FieldRecord, error) {
	var out []domain.FieldRecord
	err := r.guard.run(ctx, "postgres.fields.list", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, `
SELECT `+fieldColumns+`
FROM fields
WHERE origin = $1
ORDER BY position ASC, created_at ASC, name ASC
`, string(origin))
		if err != nil {
			return fmt.Errorf("list %s fields: %w", origin, err)
		}
		defer rows.Close()

		out = make([]domain.FieldRecord, 0)
		for rows.Next() {
			record, err := scanField(rows)
			if err != nil {
				return fmt.Errorf("scan field: %w", err)
			}
			out = append(out, record)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate fields: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *FieldRepository) CreateField(ctx context.Context, field domain.FieldRecord) error {
	if field.CreatedAt.IsZero() {
		field.CreatedAt = r.now()
	}
	return r.guard.run(ctx, "postgres.fields.create", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO fields (`+fieldColumns+`)
VALUES (`+placeholders(0, fieldColumnCount)+`)
`, fieldArgs(field, 0)...)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.WrapError(domain.ErrConflict, "create field", fmt.Errorf("field %q already exists", field.Name))
			}
			return fmt.Errorf("create field: %w", err)
		}
		return nil
	})
}

// ReplaceImported swaps every csv-origin row for fields inside one transaction. Names that
// collide with a user-added row are skipped. It returns the number of rows inserted.
func (r *FieldRepository) ReplaceImported(ctx context.Context, fields []domain.FieldRecord) (int, error) {
	inserted := 0
	err := r.guard.run(ctx, "postgres.fields.replace_imported", func(ctx context.Context) error {
		inserted = 0
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin import tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		if _, err := tx.ExecContext(ctx, `DELETE FROM fields WHERE origin = $1`, string(domain.OriginCSV)); err != nil {
			return fmt.Errorf("clear imported fields: %w", err)
		}

		now := r.now()
		for start := 0; start < len(fields); start += r.batchSize {
			end := start + r.batchSize
			if end > len(fields) {
				end = len(fields)
			}
			n, err := insertFieldBatch(ctx, tx, fields[start:end], start, now)
			if err != nil {
				return err
			}
			inserted += n
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit import tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertFieldBatch(ctx context.Context, tx *sql.Tx, batch []domain.FieldRecord, offset int, now time.Time) (int, error) {
	var query strings.Builder
	query.WriteString("INSERT INTO fields (" + fieldColumns + ") VALUES ")
	args := make([]interface{}, 0, len(batch)*fieldColumnCount)
	for i, field := range batch {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(" + placeholders(i*fieldColumnCount, fieldColumnCount) + ")")

		field.Origin = domain.OriginCSV
		if field.CreatedAt.IsZero() {
			field.CreatedAt = now
		}
		args = append(args, fieldArgs(field, offset+i)...)
	}
	query.WriteString(" ON CONFLICT (name) DO NOTHING")

	result, err := tx.ExecContext(ctx, query.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert field batch at %d: %w", offset, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert field batch rows affected: %w", err)
	}
	return int(affected), nil
}

func placeholders(start, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i+1)
	}
	return strings.Join(parts, ",")
}

func fieldArgs(f domain.FieldRecord, position int) []interface{} {
	return []interface{}{
		f.Name, f.HCFABox, f.RequirementLevel, f.ShortDescription, f.LikelySource,
		f.PrimaryNeed, f.ImplementationNote, f.Phase, f.CMExtractRequirement,
		f.CaseManagementSystem, f.Program, f.State, f.DataFrequency,
		string(f.Origin), f.Author, position, f.CreatedAt,
	}
}

func scanField(row rowScanner) (domain.FieldRecord, error) {
	var f domain.FieldRecord
	var origin string
	var position int
	err := row.Scan(
		&f.Name,
		&f.HCFABox,
		&f.RequirementLevel,
		&f.ShortDescription,
		&f.LikelySource,
		&f.PrimaryNeed,
		&f.ImplementationNote,
		&f.Phase,
		&f.CMExtractRequirement,
		&f.CaseManagementSystem,
		&f.Program,
		&f.State,
		&f.DataFrequency,
		&origin,
		&f.Author,
		&position,
		&f.CreatedAt,
	)
	if err != nil {
		return domain.FieldRecord{}, err
	}
	f.Origin = domain.FieldOrigin(origin)
	return f, nil
}
