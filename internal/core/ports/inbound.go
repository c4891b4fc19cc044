package ports

import (
	"context"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

// DashboardReader is the inbound read model over the loaded workspace.
type DashboardReader interface {
	View(selection domain.FilterSelection) (*domain.DashboardView, error)
	Stats() (domain.ProgressStats, error)
	ListFields(selection domain.FilterSelection) ([]domain.FieldCard, error)
	FieldDetail(ctx context.Context, name string) (*domain.FieldDetail, error)
	Catalog() domain.FilterCatalog
}

// WorkspaceLoader exposes the load lifecycle.
type WorkspaceLoader interface {
	Reload(ctx context.Context) error
	Status() domain.WorkspaceStatus
}

// AssessmentService is the inbound contract for the assessment save workflow.
type AssessmentService interface {
	Save(ctx context.Context, input domain.SaveAssessmentInput) (*domain.SaveOutcome, error)
	Delete(ctx context.Context, fieldName string) error
	List(ctx context.Context) ([]domain.Assessment, error)
	History(ctx context.Context, fieldName string) ([]domain.NoteHistoryEntry, error)
}

// FieldService adds fields to the catalog by hand.
type FieldService interface {
	AddField(ctx context.Context, input domain.NewFieldInput) (*domain.AddFieldOutcome, error)
}

// ExportService renders all stored assessments.
type ExportService interface {
	Export(ctx context.Context, format string) (*domain.ExportDocument, error)
}
