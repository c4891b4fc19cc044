package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/resilience"
)

// NoteHistoryRepository is append-only: rows are never updated or deleted.
type NoteHistoryRepository struct {
	db    *sql.DB
	guard guard
}

func NewNoteHistoryRepository(db *sql.DB, executor *resilience.Executor) *NoteHistoryRepository {
	return &NoteHistoryRepository{db: db, guard: guard{executor: executor}}
}

func (r *NoteHistoryRepository) AppendNote(ctx context.Context, entry domain.NoteHistoryEntry) error {
	return r.guard.run(ctx, "postgres.notes.append", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO assessment_notes_history (id, field_name, author, notes, status_at_time_of_note, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, entry.ID, entry.FieldName, entry.Author, entry.Notes, string(entry.StatusAtTimeOfNote), entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("append note history: %w", err)
		}
		return nil
	})
}

// ListNotes returns the history of one field, newest first.
func (r *NoteHistoryRepository) ListNotes(ctx context.Context, fieldName string) ([]domain.NoteHistoryEntry, error) {
	var out []domain.NoteHistoryEntry
	err := r.guard.run(ctx, "postgres.notes.list", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, `
SELECT id, field_name, author, notes, status_at_time_of_note, created_at
FROM assessment_notes_history
WHERE field_name = $1
ORDER BY created_at DESC
`, fieldName)
		if err != nil {
			return fmt.Errorf("list note history: %w", err)
		}
		defer rows.Close()

		out = make([]domain.NoteHistoryEntry, 0)
		for rows.Next() {
			var entry domain.NoteHistoryEntry
			var status string
			if err := rows.Scan(&entry.ID, &entry.FieldName, &entry.Author, &entry.Notes, &status, &entry.CreatedAt); err != nil {
				return fmt.Errorf("scan note history: %w", err)
			}
			entry.StatusAtTimeOfNote = domain.AssessmentStatus(status)
			out = append(out, entry)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate note history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
