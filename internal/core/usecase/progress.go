package usecase

import (
	"math"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

// StatusOf reads the overlay; fields without an entry are not assessed.
func StatusOf(overlay map[string]domain.AssessmentStatus, fieldName string) domain.AssessmentStatus {
	status, ok := overlay[fieldName]
	if !ok || status == "" {
		return domain.StatusNotAssessed
	}
	return status
}

// ComputeProgress counts the full catalog. Phase buckets ignore records outside the three
// display phases, so they may sum to less than the overall total.
func ComputeProgress(records []domain.FieldRecord, overlay map[string]domain.AssessmentStatus) domain.ProgressStats {
	var stats domain.ProgressStats
	for _, record := range records {
		status := StatusOf(overlay, record.Name)
		stats.PhaseStats.Add(status)
		if bucket := stats.ByPhase.For(record.NormalizedPhase()); bucket != nil {
			bucket.Add(status)
		}
	}
	stats.Assessed = stats.PhaseStats.AssessedCount()
	stats.PercentComplete = percent(stats.Assessed, stats.Total)
	return stats
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
