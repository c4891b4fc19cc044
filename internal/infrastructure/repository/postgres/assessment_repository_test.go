package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/resilience"
)

var assessmentRowColumns = []string{"id", "field_name", "status", "mapped_field_name", "notes", "priority", "assigned_to", "author", "created_at", "updated_at"}

func newAssessmentRepoWithMock(t *testing.T, executor *resilience.Executor) (*AssessmentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewAssessmentRepository(db, executor), mock, func() { _ = db.Close() }
}

func TestUpsertAssessmentReturnsStoredRow(t *testing.T) {
	repo, mock, done := newAssessmentRepoWithMock(t, nil)
	defer done()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(time.Hour)
	mock.ExpectQuery("INSERT INTO assessments").
		WithArgs("new-id", "Client DOB", "currently_captured", "CLIENT_DOB", "", "high", "", "Jo", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(assessmentRowColumns).
			AddRow("old-id", "Client DOB", "currently_captured", "CLIENT_DOB", "", "high", "", "Jo", created, updated))

	saved, err := repo.UpsertAssessment(context.Background(), domain.Assessment{
		ID:              "new-id",
		FieldName:       "Client DOB",
		Status:          domain.StatusCurrentlyCaptured,
		MappedFieldName: "CLIENT_DOB",
		Priority:        domain.PriorityHigh,
		Author:          "Jo",
		CreatedAt:       updated,
		UpdatedAt:       updated,
	})
	if err != nil {
		t.Fatalf("UpsertAssessment() error = %v", err)
	}
	if saved.ID != "old-id" || !saved.CreatedAt.Equal(created) {
		t.Fatalf("expected stored id and created_at preserved, got %+v", saved)
	}
	if saved.Priority != domain.PriorityHigh {
		t.Fatalf("expected priority high, got %s", saved.Priority)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertAssessmentMapsUniqueViolationToConflict(t *testing.T) {
	repo, mock, done := newAssessmentRepoWithMock(t, nil)
	defer done()

	mock.ExpectQuery("INSERT INTO assessments").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, Message: "duplicate key"})

	_, err := repo.UpsertAssessment(context.Background(), domain.Assessment{ID: "dup", FieldName: "A", Status: domain.StatusInvestigation})
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteAssessmentReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newAssessmentRepoWithMock(t, nil)
	defer done()

	mock.ExpectExec("DELETE FROM assessments").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteAssessment(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrAssessmentNotFound) {
		t.Fatalf("expected ErrAssessmentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetAssessmentReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newAssessmentRepoWithMock(t, nil)
	defer done()

	mock.ExpectQuery("FROM assessments").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(assessmentRowColumns))

	_, err := repo.GetAssessment(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrAssessmentNotFound) {
		t.Fatalf("expected ErrAssessmentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListAssessmentsOrdersByUpdatedAt(t *testing.T) {
	repo, mock, done := newAssessmentRepoWithMock(t, nil)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("ORDER BY updated_at DESC").
		WillReturnRows(sqlmock.NewRows(assessmentRowColumns).
			AddRow("a-2", "B", "needs_addition", "", "later", "", "", "Sam", now, now).
			AddRow("a-1", "A", "investigation", "", "", "low", "Lee", "Jo", now.Add(-time.Hour), now.Add(-time.Hour)))

	list, err := repo.ListAssessments(context.Background())
	if err != nil {
		t.Fatalf("ListAssessments() error = %v", err)
	}
	if len(list) != 2 || list[0].FieldName != "B" || list[1].AssignedTo != "Lee" {
		t.Fatalf("unexpected assessments: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreBreakerOpensAndReportsTemporary(t *testing.T) {
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:        1,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})
	repo, mock, done := newAssessmentRepoWithMock(t, executor)
	defer done()

	errDown := errors.New("connection reset")
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("INSERT INTO assessments").WillReturnError(errDown)
	}

	for i := 0; i < 2; i++ {
		_, err := repo.UpsertAssessment(context.Background(), domain.Assessment{ID: "x", FieldName: "A", Status: domain.StatusInvestigation})
		if !errors.Is(err, errDown) {
			t.Fatalf("expected store error on attempt %d, got %v", i, err)
		}
	}

	_, err := repo.UpsertAssessment(context.Background(), domain.Assessment{ID: "x", FieldName: "A", Status: domain.StatusInvestigation})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary from open breaker, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
