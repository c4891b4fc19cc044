package csvexport

import (
	"strings"
	"time"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

var Header = []string{"Field Name", "Status", "CalSAWS Field", "Notes", "Priority", "Assigned To", "Last Updated"}

// Exporter renders assessments as CSV with every cell quoted.
type Exporter struct{}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string { return "text/csv; charset=utf-8" }

func (e *Exporter) Extension() string { return "csv" }

// Export ignores stats; the CSV carries assessment rows only.
func (e *Exporter) Export(assessments []domain.Assessment, _ domain.ProgressStats) ([]byte, error) {
	lines := make([]string, 0, len(assessments)+1)
	lines = append(lines, joinQuoted(Header))
	for _, a := range assessments {
		lines = append(lines, joinQuoted(Row(a)))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// Row is the export row of one assessment, in Header order.
func Row(a domain.Assessment) []string {
	updated := ""
	if !a.UpdatedAt.IsZero() {
		updated = a.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		a.FieldName,
		string(a.Status),
		a.MappedFieldName,
		a.Notes,
		string(a.Priority),
		a.AssignedTo,
		updated,
	}
}

func joinQuoted(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
