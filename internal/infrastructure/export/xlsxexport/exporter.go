package xlsxexport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/infrastructure/export/csvexport"
)

const (
	AssessmentsSheet = "Assessments"
	ProgressSheet    = "Progress"
)

var columnWidths = []float64{32, 20, 24, 48, 10, 18, 22}

// Exporter writes an XLSX workbook with an assessment sheet and a progress summary.
type Exporter struct{}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *Exporter) Extension() string { return "xlsx" }

func (e *Exporter) Export(assessments []domain.Assessment, stats domain.ProgressStats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(AssessmentsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if _, err := f.NewSheet(ProgressSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, AssessmentsSheet, 1, csvexport.Header); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(csvexport.Header), 1)
	if err != nil {
		return nil, fmt.Errorf("convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(AssessmentsSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("set header style: %w", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("convert column number: %w", err)
		}
		if err := f.SetColWidth(AssessmentsSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	for i, a := range assessments {
		if err := writeRow(f, AssessmentsSheet, i+2, csvexport.Row(a)); err != nil {
			return nil, err
		}
	}

	if err := writeProgress(f, stats, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeProgress(f *excelize.File, stats domain.ProgressStats, headerStyle int) error {
	rows := [][]any{
		{"Metric", "Total", "Front", "Middle", "Back"},
		{"Total", stats.Total, stats.ByPhase.Front.Total, stats.ByPhase.Middle.Total, stats.ByPhase.Back.Total},
		{"Assessed", stats.Assessed, stats.ByPhase.Front.AssessedCount(), stats.ByPhase.Middle.AssessedCount(), stats.ByPhase.Back.AssessedCount()},
		{"Currently captured", stats.CurrentlyCaptured, stats.ByPhase.Front.CurrentlyCaptured, stats.ByPhase.Middle.CurrentlyCaptured, stats.ByPhase.Back.CurrentlyCaptured},
		{"Needs addition", stats.NeedsAddition, stats.ByPhase.Front.NeedsAddition, stats.ByPhase.Middle.NeedsAddition, stats.ByPhase.Back.NeedsAddition},
		{"Edit requested", stats.EditRequested, stats.ByPhase.Front.EditRequested, stats.ByPhase.Middle.EditRequested, stats.ByPhase.Back.EditRequested},
		{"Investigation", stats.Investigation, stats.ByPhase.Front.Investigation, stats.ByPhase.Middle.Investigation, stats.ByPhase.Back.Investigation},
		{"Not assessed", stats.NotAssessed, stats.ByPhase.Front.NotAssessed, stats.ByPhase.Middle.NotAssessed, stats.ByPhase.Back.NotAssessed},
		{"Percent complete", stats.PercentComplete},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(ProgressSheet, cell, &row); err != nil {
			return fmt.Errorf("write progress row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(ProgressSheet, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("set progress header style: %w", err)
	}
	return f.SetColWidth(ProgressSheet, "A", "A", 22)
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("convert coordinates: %w", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
