package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

type exporterFake struct {
	ext      string
	gotRows  int
	gotStats domain.ProgressStats
}

func (f *exporterFake) ContentType() string { return "text/plain" }
func (f *exporterFake) Extension() string   { return f.ext }

func (f *exporterFake) Export(assessments []domain.Assessment, stats domain.ProgressStats) ([]byte, error) {
	f.gotRows = len(assessments)
	f.gotStats = stats
	return []byte(fmt.Sprintf("%s:%d", f.ext, len(assessments))), nil
}

type storageFake struct {
	saved map[string]string
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[key] = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewBufferString(f.saved[key])), nil
}

func TestExportUsesWorkspaceStatsWhenLoaded(t *testing.T) {
	h := newHarness(sampleRecords(), domain.Assessment{FieldName: "A", Status: domain.StatusNeedsAddition})
	if err := h.load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	exp := &exporterFake{ext: "csv"}
	uc := NewExportUseCase(h.repo, h.ws, exp)

	doc, err := uc.Export(context.Background(), "CSV")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasSuffix(doc.Filename, ".csv") {
		t.Fatalf("expected csv filename, got %s", doc.Filename)
	}
	if exp.gotRows != 1 || exp.gotStats.Total != len(sampleRecords()) {
		t.Fatalf("expected 1 row and catalog stats, got rows=%d total=%d", exp.gotRows, exp.gotStats.Total)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	uc := NewExportUseCase(newAssessmentRepoFake(), nil, &exporterFake{ext: "csv"})
	if _, err := uc.Export(context.Background(), "pdf"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWriteSnapshotStoresEveryFormat(t *testing.T) {
	repo := newAssessmentRepoFake(
		domain.Assessment{FieldName: "A", Status: domain.StatusNeedsAddition},
		domain.Assessment{FieldName: "B", Status: domain.StatusCurrentlyCaptured},
	)
	uc := NewExportUseCase(repo, nil, &exporterFake{ext: "csv"}, &exporterFake{ext: "xlsx"})
	storage := &storageFake{}

	keys, err := uc.WriteSnapshot(context.Background(), storage, "exports")
	if err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected two snapshot keys, got %v", keys)
	}
	if storage.saved["exports/assessments.csv"] != "csv:2" || storage.saved["exports/assessments.xlsx"] != "xlsx:2" {
		t.Fatalf("unexpected snapshot contents: %v", storage.saved)
	}
}
