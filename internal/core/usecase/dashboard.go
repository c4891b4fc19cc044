package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/core/ports"
)

type DashboardUseCase struct {
	ws      *Workspace
	notes   ports.NoteHistoryRepository
	catalog domain.FilterCatalog
}

func NewDashboardUseCase(ws *Workspace, notes ports.NoteHistoryRepository, catalog domain.FilterCatalog) *DashboardUseCase {
	return &DashboardUseCase{
		ws:      ws,
		notes:   notes,
		catalog: catalog,
	}
}

func (uc *DashboardUseCase) Catalog() domain.FilterCatalog {
	return uc.catalog
}

func (uc *DashboardUseCase) Reload(ctx context.Context) error {
	return uc.ws.Reload(ctx)
}

func (uc *DashboardUseCase) Status() domain.WorkspaceStatus {
	return uc.ws.Status()
}

// View filters the catalog, groups the result into the display columns and attaches the
// unfiltered progress stats.
func (uc *DashboardUseCase) View(selection domain.FilterSelection) (*domain.DashboardView, error) {
	if err := selection.Validate(uc.catalog); err != nil {
		return nil, err
	}
	snap, err := uc.ws.Snapshot()
	if err != nil {
		return nil, err
	}

	filtered := FilterFields(snap.Records, uc.catalog, selection)
	visible := GroupByPhase(filtered)
	all := GroupByPhase(snap.Records)

	columns := make([]domain.PhaseColumn, 0, len(domain.DisplayPhases()))
	for _, phase := range domain.DisplayPhases() {
		cards := toCards(visible[phase], snap.Overlay)
		columns = append(columns, domain.PhaseColumn{
			Phase:        phase,
			Fields:       cards,
			VisibleCount: len(cards),
			TotalCount:   len(all[phase]),
		})
	}

	return &domain.DashboardView{
		Columns:       columns,
		FilteredCount: len(filtered),
		TotalCount:    len(snap.Records),
		HiddenCount:   len(visible[domain.PhaseOther]),
		FiltersActive: selection.Active(),
		Selection:     selection,
		Stats:         ComputeProgress(snap.Records, snap.Overlay),
	}, nil
}

func (uc *DashboardUseCase) Stats() (domain.ProgressStats, error) {
	snap, err := uc.ws.Snapshot()
	if err != nil {
		return domain.ProgressStats{}, err
	}
	return ComputeProgress(snap.Records, snap.Overlay), nil
}

func (uc *DashboardUseCase) ListFields(selection domain.FilterSelection) ([]domain.FieldCard, error) {
	if err := selection.Validate(uc.catalog); err != nil {
		return nil, err
	}
	snap, err := uc.ws.Snapshot()
	if err != nil {
		return nil, err
	}
	return toCards(FilterFields(snap.Records, uc.catalog, selection), snap.Overlay), nil
}

func (uc *DashboardUseCase) FieldDetail(ctx context.Context, name string) (*domain.FieldDetail, error) {
	snap, err := uc.ws.Snapshot()
	if err != nil {
		return nil, err
	}
	record, ok := snap.Field(name)
	if !ok {
		return nil, domain.WrapError(domain.ErrFieldNotFound, "field detail", fmt.Errorf("name=%s", name))
	}

	detail := &domain.FieldDetail{
		Field:          record,
		Classification: record.Classify(),
		Assessment: domain.Assessment{
			FieldName: record.Name,
			Status:    domain.StatusNotAssessed,
		},
		History: []domain.NoteHistoryEntry{},
	}
	if a, ok := snap.Details[name]; ok {
		detail.Assessment = a
		detail.Assessed = a.Status.IsAssessed()
	}

	if uc.notes != nil {
		history, err := uc.notes.ListNotes(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load note history: %w", err)
		}
		detail.History = history
	}
	return detail, nil
}

func toCards(records []domain.FieldRecord, overlay map[string]domain.AssessmentStatus) []domain.FieldCard {
	cards := make([]domain.FieldCard, 0, len(records))
	for _, record := range records {
		cards = append(cards, domain.FieldCard{
			Field:          record,
			Classification: record.Classify(),
			Status:         StatusOf(overlay, record.Name),
		})
	}
	return cards
}
