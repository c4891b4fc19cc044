package usecase

import (
	"strings"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

// MatchesFilters reports whether record passes every category of selection. Within a
// category every enabled toggle must match; an untouched category passes.
func MatchesFilters(record domain.FieldRecord, catalog domain.FilterCatalog, selection domain.FilterSelection) bool {
	for _, category := range catalog.Categories {
		enabled := selection[category.Key]
		if len(enabled) == 0 {
			continue
		}
		value := strings.ToLower(record.Attribute(category.Attribute))
		for _, toggle := range category.Toggles {
			if !enabled[toggle.Key] {
				continue
			}
			if !strings.Contains(value, strings.ToLower(toggle.Match)) {
				return false
			}
		}
	}
	return true
}

// FilterFields keeps the input order. With no toggle enabled it returns records as is.
func FilterFields(records []domain.FieldRecord, catalog domain.FilterCatalog, selection domain.FilterSelection) []domain.FieldRecord {
	if !selection.Active() {
		return records
	}
	out := make([]domain.FieldRecord, 0, len(records))
	for _, record := range records {
		if MatchesFilters(record, catalog, selection) {
			out = append(out, record)
		}
	}
	return out
}
