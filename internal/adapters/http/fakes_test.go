package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/kirillkom/field-gap-tracker/internal/config"
	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

type dashboardFake struct {
	view      *domain.DashboardView
	stats     domain.ProgressStats
	detail    *domain.FieldDetail
	err       error
	selection domain.FilterSelection
}

func (f *dashboardFake) View(selection domain.FilterSelection) (*domain.DashboardView, error) {
	f.selection = selection
	if f.err != nil {
		return nil, f.err
	}
	if err := selection.Validate(f.Catalog()); err != nil {
		return nil, err
	}
	return f.view, nil
}

func (f *dashboardFake) Stats() (domain.ProgressStats, error) { return f.stats, f.err }

func (f *dashboardFake) ListFields(selection domain.FilterSelection) ([]domain.FieldCard, error) {
	f.selection = selection
	if f.err != nil {
		return nil, f.err
	}
	return []domain.FieldCard{{Field: domain.FieldRecord{Name: "Client DOB"}, Status: domain.StatusNotAssessed}}, nil
}

func (f *dashboardFake) FieldDetail(_ context.Context, name string) (*domain.FieldDetail, error) {
	if f.detail == nil || f.detail.Field.Name != name {
		return nil, domain.WrapError(domain.ErrFieldNotFound, "field detail", fmt.Errorf("name=%s", name))
	}
	return f.detail, nil
}

func (f *dashboardFake) Catalog() domain.FilterCatalog { return domain.DefaultFilterCatalog() }

type loaderFake struct {
	err    error
	status domain.WorkspaceStatus
	calls  int
}

func (f *loaderFake) Reload(context.Context) error {
	f.calls++
	return f.err
}

func (f *loaderFake) Status() domain.WorkspaceStatus { return f.status }

type assessmentsFake struct {
	outcome *domain.SaveOutcome
	err     error
	input   domain.SaveAssessmentInput
	deleted string
	history []domain.NoteHistoryEntry
}

func (f *assessmentsFake) Save(_ context.Context, input domain.SaveAssessmentInput) (*domain.SaveOutcome, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &domain.SaveOutcome{
		Assessment:  domain.Assessment{FieldName: input.FieldName, Status: input.Status, Author: input.Author},
		Persistence: domain.PersistencePersisted,
	}, nil
}

func (f *assessmentsFake) Delete(_ context.Context, fieldName string) error {
	f.deleted = fieldName
	return f.err
}

func (f *assessmentsFake) List(context.Context) ([]domain.Assessment, error) {
	return []domain.Assessment{{FieldName: "Client DOB", Status: domain.StatusNeedsAddition}}, f.err
}

func (f *assessmentsFake) History(_ context.Context, fieldName string) ([]domain.NoteHistoryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.NoteHistoryEntry, 0, len(f.history))
	for _, entry := range f.history {
		if entry.FieldName == fieldName {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fieldsFake struct {
	input domain.NewFieldInput
	err   error
}

func (f *fieldsFake) AddField(_ context.Context, input domain.NewFieldInput) (*domain.AddFieldOutcome, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AddFieldOutcome{
		Field:       domain.FieldRecord{Name: input.Name, Origin: domain.OriginUserAdded},
		Persistence: domain.PersistencePersisted,
	}, nil
}

type exportsFake struct{}

func (exportsFake) Export(_ context.Context, format string) (*domain.ExportDocument, error) {
	if format != "csv" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export", errors.New("unsupported format"))
	}
	return &domain.ExportDocument{
		Filename:    "assessments-2025-03-04.csv",
		ContentType: "text/csv; charset=utf-8",
		Body:        []byte("\"Field Name\"\n\"Client DOB\"\n"),
	}, nil
}

type recorderFake struct {
	saves   []string
	deletes []string
	exports []string
	reloads []error
}

func (r *recorderFake) RecordAssessmentSave(_ string, persistence string) {
	r.saves = append(r.saves, persistence)
}
func (r *recorderFake) RecordAssessmentDelete(_ string, status string) {
	r.deletes = append(r.deletes, status)
}
func (r *recorderFake) RecordFieldAdded(string, string) {}
func (r *recorderFake) RecordExport(_ string, format string) {
	r.exports = append(r.exports, format)
}
func (r *recorderFake) RecordReload(_ string, err error) {
	r.reloads = append(r.reloads, err)
}
func (r *recorderFake) SetWorkspaceSize(string, int, int) {}

type testServices struct {
	dashboard   *dashboardFake
	loader      *loaderFake
	assessments *assessmentsFake
	fields      *fieldsFake
	metrics     *recorderFake
}

func newTestServices() *testServices {
	return &testServices{
		dashboard:   &dashboardFake{view: &domain.DashboardView{TotalCount: 1}},
		loader:      &loaderFake{status: domain.WorkspaceStatus{State: domain.LoadStateReady, Records: 1}},
		assessments: &assessmentsFake{},
		fields:      &fieldsFake{},
		metrics:     &recorderFake{},
	}
}

func (s *testServices) handler(cfg config.Config) http.Handler {
	return NewRouter(cfg, Services{
		Dashboard:   s.dashboard,
		Loader:      s.loader,
		Assessments: s.assessments,
		Fields:      s.fields,
		Exports:     exportsFake{},
		Metrics:     s.metrics,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).Handler()
}
