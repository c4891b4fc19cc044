package usecase

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/core/ports"
)

type ExportUseCase struct {
	repo      ports.AssessmentRepository
	ws        *Workspace
	exporters map[string]ports.AssessmentExporter
	now       func() time.Time
}

// NewExportUseCase registers exporters by their file extension. ws may be nil, in which
// case exported stats are computed from the assessments alone.
func NewExportUseCase(repo ports.AssessmentRepository, ws *Workspace, exporters ...ports.AssessmentExporter) *ExportUseCase {
	byFormat := make(map[string]ports.AssessmentExporter, len(exporters))
	for _, exp := range exporters {
		byFormat[strings.ToLower(exp.Extension())] = exp
	}
	return &ExportUseCase{
		repo:      repo,
		ws:        ws,
		exporters: byFormat,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ExportUseCase) Formats() []string {
	out := make([]string, 0, len(uc.exporters))
	for format := range uc.exporters {
		out = append(out, format)
	}
	return out
}

// Export renders every stored assessment in the requested format.
func (uc *ExportUseCase) Export(ctx context.Context, format string) (*domain.ExportDocument, error) {
	exp, ok := uc.exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export", fmt.Errorf("unsupported format %q", format))
	}
	assessments, err := uc.repo.ListAssessments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load assessments for export: %w", err)
	}
	body, err := exp.Export(assessments, uc.stats(assessments))
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", exp.Extension(), err)
	}
	return &domain.ExportDocument{
		Filename:    fmt.Sprintf("assessments-%s.%s", uc.now().Format("2006-01-02"), exp.Extension()),
		ContentType: exp.ContentType(),
		Body:        body,
	}, nil
}

// WriteSnapshot stores one export per registered format under prefix and returns the keys.
func (uc *ExportUseCase) WriteSnapshot(ctx context.Context, storage ports.ObjectStorage, prefix string) ([]string, error) {
	keys := make([]string, 0, len(uc.exporters))
	for format := range uc.exporters {
		doc, err := uc.Export(ctx, format)
		if err != nil {
			return keys, err
		}
		key := path.Join(prefix, "assessments."+format)
		if err := storage.Save(ctx, key, bytes.NewReader(doc.Body)); err != nil {
			return keys, fmt.Errorf("save %s snapshot: %w", format, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (uc *ExportUseCase) stats(assessments []domain.Assessment) domain.ProgressStats {
	if uc.ws != nil {
		if snap, err := uc.ws.Snapshot(); err == nil {
			return ComputeProgress(snap.Records, snap.Overlay)
		}
	}
	records := make([]domain.FieldRecord, 0, len(assessments))
	overlay := make(map[string]domain.AssessmentStatus, len(assessments))
	for _, a := range assessments {
		records = append(records, domain.FieldRecord{Name: a.FieldName})
		overlay[a.FieldName] = a.Status
	}
	return ComputeProgress(records, overlay)
}
