package xlsxexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

func TestExportWritesAssessmentAndProgressSheets(t *testing.T) {
	stats := domain.ProgressStats{
		PhaseStats:      domain.PhaseStats{Total: 4, CurrentlyCaptured: 1, NotAssessed: 3},
		Assessed:        1,
		PercentComplete: 25,
	}
	body, err := New().Export([]domain.Assessment{
		{FieldName: "Client DOB", Status: domain.StatusCurrentlyCaptured, MappedFieldName: "CLIENT_DOB", UpdatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}, stats)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != AssessmentsSheet || sheets[1] != ProgressSheet {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	rows, err := f.GetRows(AssessmentsSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "Field Name" || rows[1][2] != "CLIENT_DOB" {
		t.Fatalf("unexpected assessment rows: %v", rows)
	}

	percent, err := f.GetCellValue(ProgressSheet, "B9")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if percent != "25" {
		t.Fatalf("expected percent complete 25, got %q", percent)
	}
}
