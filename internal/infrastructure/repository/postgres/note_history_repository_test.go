package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

func TestAppendNoteInsertsHistoryRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewNoteHistoryRepository(db, nil)
	at := time.Now().UTC()
	mock.ExpectExec("INSERT INTO assessment_notes_history").
		WithArgs("n-1", "A", "Jo", "checked extract", "needs_addition", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.AppendNote(context.Background(), domain.NoteHistoryEntry{
		ID:                 "n-1",
		FieldName:          "A",
		Author:             "Jo",
		Notes:              "checked extract",
		StatusAtTimeOfNote: domain.StatusNeedsAddition,
		CreatedAt:          at,
	})
	if err != nil {
		t.Fatalf("AppendNote() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListNotesReturnsNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewNoteHistoryRepository(db, nil)
	now := time.Now().UTC()
	mock.ExpectQuery("FROM assessment_notes_history").
		WithArgs("A").
		WillReturnRows(sqlmock.NewRows([]string{"id", "field_name", "author", "notes", "status_at_time_of_note", "created_at"}).
			AddRow("n-2", "A", "Sam", "second", "edit_requested", now).
			AddRow("n-1", "A", "Jo", "first", "needs_addition", now.Add(-time.Minute)))

	notes, err := repo.ListNotes(context.Background(), "A")
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if len(notes) != 2 || notes[0].Notes != "second" || notes[0].StatusAtTimeOfNote != domain.StatusEditRequested {
		t.Fatalf("unexpected notes: %+v", notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
