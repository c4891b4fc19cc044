package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/core/ports"
)

// assessmentSaver runs the assessment save workflow for a field.
type assessmentSaver interface {
	Save(ctx context.Context, input domain.SaveAssessmentInput) (*domain.SaveOutcome, error)
}

type FieldUseCase struct {
	ws          *Workspace
	repo        ports.FieldRepository
	assessments assessmentSaver
	catalog     domain.FilterCatalog
	logger      *slog.Logger
	now         func() time.Time
}

func NewFieldUseCase(
	ws *Workspace,
	repo ports.FieldRepository,
	assessments assessmentSaver,
	catalog domain.FilterCatalog,
	logger *slog.Logger,
) *FieldUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldUseCase{
		ws:          ws,
		repo:        repo,
		assessments: assessments,
		catalog:     catalog,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AddField appends a hand-entered field to the workspace, persists it best-effort and,
// when an initial status is given, runs the assessment save workflow for it. Once the field
// is in the workspace a failed initial assessment is reported on the outcome, not as an error.
func (uc *FieldUseCase) AddField(ctx context.Context, input domain.NewFieldInput) (*domain.AddFieldOutcome, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.ShortDescription)
	author := strings.TrimSpace(input.Author)
	if name == "" || description == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add field", errors.New("name and short description are required"))
	}
	if author == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add field", errors.New("author is required"))
	}
	initial, err := domain.ParseAssessmentStatus(string(input.InitialStatus))
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add field", err)
	}
	var initialSave domain.SaveAssessmentInput
	if initial.IsAssessed() {
		initialSave, err = normalizeSaveInput(domain.SaveAssessmentInput{
			FieldName:       name,
			Status:          initial,
			MappedFieldName: input.MappedFieldName,
			Notes:           input.AssessmentNotes,
			Author:          author,
		})
		if err != nil {
			return nil, err
		}
	}

	record := domain.FieldRecord{
		Name:               name,
		HCFABox:            strings.TrimSpace(input.HCFABox),
		RequirementLevel:   strings.TrimSpace(input.RequirementLevel),
		ShortDescription:   description,
		LikelySource:       strings.TrimSpace(input.LikelySource),
		PrimaryNeed:        uc.joinPrimaryNeeds(input.PrimaryNeeds),
		ImplementationNote: strings.TrimSpace(input.ImplementationNote),
		Phase:              strings.TrimSpace(input.Phase),
		DataFrequency:      strings.TrimSpace(input.DataFrequency),
		Origin:             domain.OriginUserAdded,
		Author:             author,
		CreatedAt:          uc.now(),
	}

	if err := uc.ws.AppendField(record); err != nil {
		return nil, err
	}

	outcome := &domain.AddFieldOutcome{
		Field:       record,
		Persistence: domain.PersistencePersisted,
	}
	if err := uc.repo.CreateField(ctx, record); err != nil {
		uc.logger.Warn("field_save_failed", "field_name", name, "error", err)
		outcome.Persistence = domain.PersistenceLocalOnly
		outcome.Error = err.Error()
	}

	if initial.IsAssessed() {
		saved, err := uc.assessments.Save(ctx, initialSave)
		if err != nil {
			uc.logger.Warn("initial_assessment_failed", "field_name", name, "error", err)
			outcome.AssessmentError = err.Error()
			return outcome, nil
		}
		outcome.Assessment = saved
	}
	return outcome, nil
}

// joinPrimaryNeeds accepts toggle keys or free text and stores the comma-joined labels,
// so hand-added fields match the same filters as imported ones.
func (uc *FieldUseCase) joinPrimaryNeeds(needs []string) string {
	category, _ := uc.catalog.Category(domain.FilterPrimaryNeed)
	labels := make([]string, 0, len(needs))
	for _, need := range needs {
		need = strings.TrimSpace(need)
		if need == "" {
			continue
		}
		label := need
		for _, toggle := range category.Toggles {
			if strings.EqualFold(toggle.Key, need) {
				label = toggle.Label
				break
			}
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, ", ")
}
