package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
	"github.com/kirillkom/field-gap-tracker/internal/core/ports"
)

// Column headers of the catalog export.
const (
	ColFieldName            = "Field Name"
	ColHCFABox              = "HCFA Box #"
	ColRequirement          = "Field Requirement"
	ColShortDescription     = "Short Description"
	ColLikelySource         = "Likely Source"
	ColPrimaryNeed          = "Primary Need"
	ColAdditionalNote       = "Additional Note"
	ColPhase                = "Phase or Revenue Cycle"
	ColCMExtractRequirement = "CM System Extract Requirement"
	ColCaseManagementSystem = "Case Management System"
	ColProgram              = "Program"
	ColState                = "State"
	ColDataFrequency        = "Frequency of Data Transfer"
)

const utf8BOM = "\ufeff"

// Source reads the field catalog CSV from object storage on every load.
type Source struct {
	storage ports.ObjectStorage
	key     string
	logger  *slog.Logger
}

func New(storage ports.ObjectStorage, key string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{storage: storage, key: key, logger: logger}
}

func (s *Source) LoadFields(ctx context.Context) ([]domain.FieldRecord, error) {
	rc, err := s.storage.Open(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("open field catalog %s: %w", s.key, err)
	}
	defer rc.Close()

	result, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse field catalog %s: %w", s.key, err)
	}
	if result.Dropped > 0 || result.Duplicates > 0 {
		s.logger.Warn("field_catalog_rows_skipped",
			"key", s.key,
			"dropped_unnamed", result.Dropped,
			"duplicates", result.Duplicates,
		)
	}
	return result.Records, nil
}

// ParseResult carries the parsed records and how many rows were skipped.
type ParseResult struct {
	Records    []domain.FieldRecord
	Dropped    int
	Duplicates int
}

// Parse reads a catalog CSV. Headers are trimmed; rows without a field name are dropped;
// a repeated field name keeps its first row.
func Parse(r io.Reader) (ParseResult, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{}, fmt.Errorf("catalog is empty")
		}
		return ParseResult{}, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	if _, ok := index[ColFieldName]; !ok {
		return ParseResult{}, fmt.Errorf("missing %q column", ColFieldName)
	}

	var result ParseResult
	seen := make(map[string]struct{})
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return ParseResult{}, fmt.Errorf("read row %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		get := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		name := strings.TrimSpace(get(ColFieldName))
		if name == "" {
			result.Dropped++
			continue
		}
		if _, dup := seen[name]; dup {
			result.Duplicates++
			continue
		}
		seen[name] = struct{}{}

		result.Records = append(result.Records, domain.FieldRecord{
			Name:                 name,
			HCFABox:              get(ColHCFABox),
			RequirementLevel:     get(ColRequirement),
			ShortDescription:     get(ColShortDescription),
			LikelySource:         get(ColLikelySource),
			PrimaryNeed:          get(ColPrimaryNeed),
			ImplementationNote:   get(ColAdditionalNote),
			Phase:                get(ColPhase),
			CMExtractRequirement: get(ColCMExtractRequirement),
			CaseManagementSystem: get(ColCaseManagementSystem),
			Program:              get(ColProgram),
			State:                get(ColState),
			DataFrequency:        get(ColDataFrequency),
			Origin:               domain.OriginCSV,
		})
	}
	return result, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
