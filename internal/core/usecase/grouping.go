package usecase

import "github.com/kirillkom/field-gap-tracker/internal/core/domain"

// GroupByPhase partitions records by normalized phase, preserving input order inside
// each bucket. Non-canonical phases land in domain.PhaseOther.
func GroupByPhase(records []domain.FieldRecord) map[domain.Phase][]domain.FieldRecord {
	groups := make(map[domain.Phase][]domain.FieldRecord, 4)
	for _, record := range records {
		phase := record.NormalizedPhase()
		groups[phase] = append(groups[phase], record)
	}
	return groups
}
