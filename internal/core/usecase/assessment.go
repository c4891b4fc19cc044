package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/core/ports"
)

type AssessmentUseCase struct {
	ws     *Workspace
	repo   ports.AssessmentRepository
	notes  ports.NoteHistoryRepository
	events ports.EventPublisher
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewAssessmentUseCase wires the save workflow. events may be nil.
func NewAssessmentUseCase(
	ws *Workspace,
	repo ports.AssessmentRepository,
	notes ports.NoteHistoryRepository,
	events ports.EventPublisher,
	logger *slog.Logger,
) *AssessmentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssessmentUseCase{
		ws:     ws,
		repo:   repo,
		notes:  notes,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Save validates, upserts, appends a history note and updates the overlay. A store failure
// does not fail the call: the overlay is updated anyway and the outcome is local_only.
func (uc *AssessmentUseCase) Save(ctx context.Context, input domain.SaveAssessmentInput) (*domain.SaveOutcome, error) {
	in, err := normalizeSaveInput(input)
	if err != nil {
		return nil, err
	}
	if _, err := uc.ws.Field(in.FieldName); err != nil {
		return nil, err
	}

	now := uc.now()
	assessment := domain.Assessment{
		ID:              uc.newID(),
		FieldName:       in.FieldName,
		Status:          in.Status,
		MappedFieldName: in.MappedFieldName,
		Notes:           in.Notes,
		Priority:        in.Priority,
		AssignedTo:      in.AssignedTo,
		Author:          in.Author,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if prev, ok := uc.ws.Assessment(in.FieldName); ok {
		if prev.ID != "" {
			assessment.ID = prev.ID
		}
		if !prev.CreatedAt.IsZero() {
			assessment.CreatedAt = prev.CreatedAt
		}
	}

	outcome := domain.SaveOutcome{
		Assessment:  assessment,
		Persistence: domain.PersistencePersisted,
	}

	saved, err := uc.repo.UpsertAssessment(ctx, assessment)
	if err != nil {
		uc.logger.Warn("assessment_save_failed",
			"field_name", in.FieldName,
			"status", in.Status,
			"error", err,
		)
		outcome.Persistence = domain.PersistenceLocalOnly
		outcome.Error = err.Error()
	} else {
		if saved != nil {
			outcome.Assessment = *saved
		}
		outcome.NoteRecorded = uc.recordNote(ctx, in, now)
		uc.publish(ctx, domain.AssessmentChanged{
			FieldName: in.FieldName,
			Status:    in.Status,
			Author:    in.Author,
			At:        outcome.Assessment.UpdatedAt,
		})
	}

	if err := uc.ws.ApplyAssessment(outcome.Assessment); err != nil {
		return nil, fmt.Errorf("apply assessment to workspace: %w", err)
	}
	return &outcome, nil
}

func (uc *AssessmentUseCase) recordNote(ctx context.Context, in domain.SaveAssessmentInput, at time.Time) bool {
	if in.Notes == "" || uc.notes == nil {
		return false
	}
	entry := domain.NoteHistoryEntry{
		ID:                 uc.newID(),
		FieldName:          in.FieldName,
		Author:             in.Author,
		Notes:              in.Notes,
		StatusAtTimeOfNote: in.Status,
		CreatedAt:          at,
	}
	if err := uc.notes.AppendNote(ctx, entry); err != nil {
		uc.logger.Warn("note_history_append_failed", "field_name", in.FieldName, "error", err)
		return false
	}
	return true
}

func (uc *AssessmentUseCase) publish(ctx context.Context, event domain.AssessmentChanged) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishAssessmentChanged(ctx, event); err != nil {
		uc.logger.Warn("assessment_event_publish_failed", "field_name", event.FieldName, "error", err)
	}
}

// Delete removes the stored assessment; the field reverts to not_assessed.
func (uc *AssessmentUseCase) Delete(ctx context.Context, fieldName string) error {
	name := strings.TrimSpace(fieldName)
	if name == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete assessment", errors.New("field name is required"))
	}

	err := uc.repo.DeleteAssessment(ctx, name)
	if err != nil && !domain.IsKind(err, domain.ErrAssessmentNotFound) {
		return err
	}

	existed, applyErr := uc.ws.RemoveAssessment(name)
	if applyErr != nil {
		return fmt.Errorf("remove assessment from workspace: %w", applyErr)
	}
	if err != nil && !existed {
		return err
	}

	uc.publish(ctx, domain.AssessmentChanged{
		FieldName: name,
		Status:    domain.StatusNotAssessed,
		Deleted:   true,
		At:        uc.now(),
	})
	return nil
}

func (uc *AssessmentUseCase) List(ctx context.Context) ([]domain.Assessment, error) {
	return uc.repo.ListAssessments(ctx)
}

func (uc *AssessmentUseCase) History(ctx context.Context, fieldName string) ([]domain.NoteHistoryEntry, error) {
	name := strings.TrimSpace(fieldName)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "note history", errors.New("field name is required"))
	}
	return uc.notes.ListNotes(ctx, name)
}

func normalizeSaveInput(input domain.SaveAssessmentInput) (domain.SaveAssessmentInput, error) {
	out := domain.SaveAssessmentInput{
		FieldName:       strings.TrimSpace(input.FieldName),
		MappedFieldName: strings.TrimSpace(input.MappedFieldName),
		Notes:           strings.TrimSpace(input.Notes),
		AssignedTo:      strings.TrimSpace(input.AssignedTo),
		Author:          strings.TrimSpace(input.Author),
	}
	if out.FieldName == "" {
		return out, domain.WrapError(domain.ErrInvalidInput, "save assessment", errors.New("field name is required"))
	}
	if out.Author == "" {
		return out, domain.WrapError(domain.ErrInvalidInput, "save assessment", errors.New("author is required"))
	}

	status, err := domain.ParseAssessmentStatus(string(input.Status))
	if err != nil {
		return out, domain.WrapError(domain.ErrInvalidInput, "save assessment", err)
	}
	if !status.IsAssessed() {
		return out, domain.WrapError(domain.ErrInvalidInput, "save assessment", fmt.Errorf("status %q cannot be saved", status))
	}
	out.Status = status

	priority, err := domain.ParsePriority(string(input.Priority))
	if err != nil {
		return out, domain.WrapError(domain.ErrInvalidInput, "save assessment", err)
	}
	out.Priority = priority

	if out.Status != domain.StatusCurrentlyCaptured {
		out.MappedFieldName = ""
	}
	return out, nil
}
