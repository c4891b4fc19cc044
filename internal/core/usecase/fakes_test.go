package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fieldSourceFake struct {
	records []domain.FieldRecord
	err     error
	calls   int
}

func (f *fieldSourceFake) LoadFields(context.Context) ([]domain.FieldRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.FieldRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

type fieldRepoFake struct {
	added     []domain.FieldRecord
	created   []domain.FieldRecord
	listErr   error
	createErr error
}

func (f *fieldRepoFake) ListUserAdded(context.Context) ([]domain.FieldRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.added, nil
}

func (f *fieldRepoFake) CreateField(_ context.Context, field domain.FieldRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, field)
	return nil
}

func (f *fieldRepoFake) ReplaceImported(context.Context, []domain.FieldRecord) (int, error) {
	return 0, errors.New("not implemented")
}

// assessmentRepoFake keys rows by field name, like the unique index in Postgres.
type assessmentRepoFake struct {
	mu        sync.Mutex
	rows      map[string]domain.Assessment
	upserts   int
	upsertErr error
	listErr   error
	deleteErr error
}

func newAssessmentRepoFake(seed ...domain.Assessment) *assessmentRepoFake {
	f := &assessmentRepoFake{rows: make(map[string]domain.Assessment)}
	for _, a := range seed {
		f.rows[a.FieldName] = a
	}
	return f
}

func (f *assessmentRepoFake) ListAssessments(context.Context) ([]domain.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Assessment, 0, len(f.rows))
	for _, a := range f.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out, nil
}

func (f *assessmentRepoFake) GetAssessment(_ context.Context, fieldName string) (*domain.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[fieldName]
	if !ok {
		return nil, domain.WrapError(domain.ErrAssessmentNotFound, "get", fmt.Errorf("name=%s", fieldName))
	}
	return &a, nil
}

func (f *assessmentRepoFake) UpsertAssessment(_ context.Context, a domain.Assessment) (*domain.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if prev, ok := f.rows[a.FieldName]; ok {
		a.ID = prev.ID
		a.CreatedAt = prev.CreatedAt
	}
	f.rows[a.FieldName] = a
	return &a, nil
}

func (f *assessmentRepoFake) DeleteAssessment(_ context.Context, fieldName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[fieldName]; !ok {
		return domain.WrapError(domain.ErrAssessmentNotFound, "delete", fmt.Errorf("name=%s", fieldName))
	}
	delete(f.rows, fieldName)
	return nil
}

type notesRepoFake struct {
	entries   []domain.NoteHistoryEntry
	appendErr error
}

func (f *notesRepoFake) AppendNote(_ context.Context, entry domain.NoteHistoryEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *notesRepoFake) ListNotes(_ context.Context, fieldName string) ([]domain.NoteHistoryEntry, error) {
	out := make([]domain.NoteHistoryEntry, 0)
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].FieldName == fieldName {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

type publisherFake struct {
	events []domain.AssessmentChanged
	err    error
}

func (f *publisherFake) PublishAssessmentChanged(_ context.Context, event domain.AssessmentChanged) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type harness struct {
	source  *fieldSourceFake
	fields  *fieldRepoFake
	repo    *assessmentRepoFake
	notes   *notesRepoFake
	events  *publisherFake
	ws      *Workspace
	assess  *AssessmentUseCase
	dash    *DashboardUseCase
	fieldUC *FieldUseCase
}

func newHarness(records []domain.FieldRecord, seed ...domain.Assessment) *harness {
	h := &harness{
		source: &fieldSourceFake{records: records},
		fields: &fieldRepoFake{},
		repo:   newAssessmentRepoFake(seed...),
		notes:  &notesRepoFake{},
		events: &publisherFake{},
	}
	logger := discardLogger()
	catalog := domain.DefaultFilterCatalog()
	h.ws = NewWorkspace(h.source, h.fields, h.repo, logger)
	h.assess = NewAssessmentUseCase(h.ws, h.repo, h.notes, h.events, logger)
	h.dash = NewDashboardUseCase(h.ws, h.notes, catalog)
	h.fieldUC = NewFieldUseCase(h.ws, h.fields, h.assess, catalog, logger)
	return h
}

func (h *harness) load() error {
	return h.ws.Reload(context.Background())
}

func sampleRecords() []domain.FieldRecord {
	return []domain.FieldRecord{
		{Name: "A", Phase: "Front", PrimaryNeed: "Billing", RequirementLevel: "Always", LikelySource: "Intake", DataFrequency: "By Patient"},
		{Name: "B", Phase: "front", PrimaryNeed: "Service Delivery", RequirementLevel: "Dependent", LikelySource: "Service Notes", DataFrequency: "By Encounter"},
		{Name: "C", Phase: " Middle ", PrimaryNeed: "Billing, Service Delivery", RequirementLevel: "Always", LikelySource: "RCM Module", DataFrequency: "Period Dependent"},
		{Name: "D", Phase: "BACK", PrimaryNeed: "MCP Reporting", RequirementLevel: "Other", LikelySource: "Admin Panel", DataFrequency: "By Encounter"},
		{Name: "E", Phase: "Unknown", PrimaryNeed: "Billing", RequirementLevel: "Always", LikelySource: "Intake", DataFrequency: "By Patient"},
		{Name: "F", Phase: "back"},
	}
}
