package csvexport

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

func TestExportQuotesEveryCell(t *testing.T) {
	updated := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	body, err := New().Export([]domain.Assessment{
		{
			FieldName:       "Client DOB",
			Status:          domain.StatusCurrentlyCaptured,
			MappedFieldName: "CLIENT_DOB",
			Notes:           `says "see intake", twice`,
			Priority:        domain.PriorityHigh,
			UpdatedAt:       updated,
		},
		{FieldName: "Units", Status: domain.StatusInvestigation},
	}, domain.ProgressStats{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(string(body), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %d lines", len(lines))
	}
	if lines[0] != `"Field Name","Status","CalSAWS Field","Notes","Priority","Assigned To","Last Updated"` {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	want := `"Client DOB","currently_captured","CLIENT_DOB","says ""see intake"", twice","high","","2025-06-01T12:30:00Z"`
	if lines[1] != want {
		t.Fatalf("unexpected row:\n got %s\nwant %s", lines[1], want)
	}
	if lines[2] != `"Units","investigation","","","","",""` {
		t.Fatalf("unexpected empty-cell row: %s", lines[2])
	}

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	if err != nil {
		t.Fatalf("output must be valid CSV: %v", err)
	}
	if records[1][3] != `says "see intake", twice` {
		t.Fatalf("expected notes to round-trip, got %q", records[1][3])
	}
}
