package ports

import (
	"context"
	"io"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

// FieldSource loads the static field catalog.
type FieldSource interface {
	LoadFields(ctx context.Context) ([]domain.FieldRecord, error)
}

// FieldRepository persists catalog rows: user-added fields and imported CSV rows.
type FieldRepository interface {
	ListUserAdded(ctx context.Context) ([]domain.FieldRecord, error)
	CreateField(ctx context.Context, field domain.FieldRecord) error
	ReplaceImported(ctx context.Context, fields []domain.FieldRecord) (int, error)
}

// AssessmentRepository keeps at most one assessment per field name.
type AssessmentRepository interface {
	ListAssessments(ctx context.Context) ([]domain.Assessment, error)
	GetAssessment(ctx context.Context, fieldName string) (*domain.Assessment, error)
	UpsertAssessment(ctx context.Context, assessment domain.Assessment) (*domain.Assessment, error)
	DeleteAssessment(ctx context.Context, fieldName string) error
}

// NoteHistoryRepository is the append-only note log.
type NoteHistoryRepository interface {
	AppendNote(ctx context.Context, entry domain.NoteHistoryEntry) error
	ListNotes(ctx context.Context, fieldName string) ([]domain.NoteHistoryEntry, error)
}

// EventPublisher announces persisted assessment changes.
type EventPublisher interface {
	PublishAssessmentChanged(ctx context.Context, event domain.AssessmentChanged) error
}

// EventSubscriber consumes assessment changes until ctx is done.
type EventSubscriber interface {
	SubscribeAssessmentChanged(ctx context.Context, handler func(context.Context, domain.AssessmentChanged) error) error
}

// ObjectStorage stores the catalog CSV and export snapshots.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// AssessmentExporter renders assessments into a downloadable document.
type AssessmentExporter interface {
	ContentType() string
	Extension() string
	Export(assessments []domain.Assessment, stats domain.ProgressStats) ([]byte, error)
}
