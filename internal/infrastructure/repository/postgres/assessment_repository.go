package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/resilience"
)

const assessmentColumns = `id, field_name, status, mapped_field_name, notes, priority, assigned_to, author, created_at, updated_at`

type AssessmentRepository struct {
	db    *sql.DB
	guard guard
}

// NewAssessmentRepository returns a repository; executor may be nil.
func NewAssessmentRepository(db *sql.DB, executor *resilience.Executor) *AssessmentRepository {
	return &AssessmentRepository{db: db, guard: guard{executor: executor}}
}

// ListAssessments returns every stored assessment, most recently updated first.
func (r *AssessmentRepository) ListAssessments(ctx context.Context) ([]domain.Assessment, error) {
	var out []domain.Assessment
	err := r.guard.run(ctx, "postgres.assessments.list", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, `
SELECT `+assessmentColumns+`
FROM assessments
ORDER BY updated_at DESC, field_name ASC
`)
		if err != nil {
			return fmt.Errorf("list assessments: %w", err)
		}
		defer rows.Close()

		out = make([]domain.Assessment, 0)
		for rows.Next() {
			a, err := scanAssessment(rows)
			if err != nil {
				return fmt.Errorf("scan assessment: %w", err)
			}
			out = append(out, a)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate assessments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AssessmentRepository) GetAssessment(ctx context.Context, fieldName string) (*domain.Assessment, error) {
	var out domain.Assessment
	err := r.guard.run(ctx, "postgres.assessments.get", func(ctx context.Context) error {
		row := r.db.QueryRowContext(ctx, `
SELECT `+assessmentColumns+`
FROM assessments
WHERE field_name = $1
`, fieldName)
		a, err := scanAssessment(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.WrapError(domain.ErrAssessmentNotFound, "get assessment", fmt.Errorf("field=%s", fieldName))
			}
			return fmt.Errorf("get assessment: %w", err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertAssessment inserts or updates the row keyed by field name. On update the stored id
// and created_at are kept.
func (r *AssessmentRepository) UpsertAssessment(ctx context.Context, a domain.Assessment) (*domain.Assessment, error) {
	var out domain.Assessment
	err := r.guard.run(ctx, "postgres.assessments.upsert", func(ctx context.Context) error {
		row := r.db.QueryRowContext(ctx, `
INSERT INTO assessments (`+assessmentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (field_name) DO UPDATE SET
	status = EXCLUDED.status,
	mapped_field_name = EXCLUDED.mapped_field_name,
	notes = EXCLUDED.notes,
	priority = EXCLUDED.priority,
	assigned_to = EXCLUDED.assigned_to,
	author = EXCLUDED.author,
	updated_at = EXCLUDED.updated_at
RETURNING `+assessmentColumns,
			a.ID, a.FieldName, string(a.Status), a.MappedFieldName, a.Notes,
			string(a.Priority), a.AssignedTo, a.Author, a.CreatedAt, a.UpdatedAt,
		)
		saved, err := scanAssessment(row)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.WrapError(domain.ErrConflict, "upsert assessment", err)
			}
			return fmt.Errorf("upsert assessment: %w", err)
		}
		out = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AssessmentRepository) DeleteAssessment(ctx context.Context, fieldName string) error {
	return r.guard.run(ctx, "postgres.assessments.delete", func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE field_name = $1`, fieldName)
		if err != nil {
			return fmt.Errorf("delete assessment: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete assessment rows affected: %w", err)
		}
		if affected == 0 {
			return domain.WrapError(domain.ErrAssessmentNotFound, "delete assessment", fmt.Errorf("field=%s", fieldName))
		}
		return nil
	})
}

func scanAssessment(row rowScanner) (domain.Assessment, error) {
	var a domain.Assessment
	var status, priority string
	err := row.Scan(
		&a.ID,
		&a.FieldName,
		&status,
		&a.MappedFieldName,
		&a.Notes,
		&priority,
		&a.AssignedTo,
		&a.Author,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Assessment{}, err
	}
	a.Status = domain.AssessmentStatus(status)
	a.Priority = domain.Priority(priority)
	return a, nil
}
