package usecase

import (
	"testing"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

func TestComputeProgressCountsOverlayAgainstCatalog(t *testing.T) {
	records := sampleRecords()
	overlay := map[string]domain.AssessmentStatus{
		"A":     domain.StatusCurrentlyCaptured,
		"C":     domain.StatusNeedsAddition,
		"D":     domain.StatusInvestigation,
		"E":     domain.StatusEditRequested,
		"ghost": domain.StatusCurrentlyCaptured,
	}

	stats := ComputeProgress(records, overlay)
	if stats.Total != 6 {
		t.Fatalf("expected total 6, got %d", stats.Total)
	}
	if stats.Assessed != 4 || stats.NotAssessed != 2 {
		t.Fatalf("expected assessed=4 not_assessed=2, got %d/%d", stats.Assessed, stats.NotAssessed)
	}
	if stats.Assessed+stats.NotAssessed != stats.Total {
		t.Fatalf("assessed + not_assessed must equal total")
	}
	if stats.CurrentlyCaptured != 1 {
		t.Fatalf("expected overlay entries without a record to be ignored, got captured=%d", stats.CurrentlyCaptured)
	}
	if stats.PercentComplete != 67 {
		t.Fatalf("expected 67%% complete, got %d", stats.PercentComplete)
	}
}

func TestComputeProgressExcludesUnknownPhaseFromPhaseBuckets(t *testing.T) {
	records := sampleRecords()
	overlay := map[string]domain.AssessmentStatus{"E": domain.StatusEditRequested}

	stats := ComputeProgress(records, overlay)
	phaseTotal := stats.ByPhase.Front.Total + stats.ByPhase.Middle.Total + stats.ByPhase.Back.Total
	if phaseTotal != stats.Total-1 {
		t.Fatalf("expected the Unknown-phase record outside phase buckets, got phase total %d of %d", phaseTotal, stats.Total)
	}
	if stats.EditRequested != 1 {
		t.Fatalf("expected Unknown-phase record counted overall, got %d", stats.EditRequested)
	}
	if stats.ByPhase.Front.EditRequested+stats.ByPhase.Middle.EditRequested+stats.ByPhase.Back.EditRequested != 0 {
		t.Fatalf("expected no phase bucket to count the Unknown-phase record")
	}
	if stats.ByPhase.Front.Total != 2 || stats.ByPhase.Middle.Total != 1 || stats.ByPhase.Back.Total != 2 {
		t.Fatalf("unexpected phase totals: %+v", stats.ByPhase)
	}
}

func TestComputeProgressEmptyCatalog(t *testing.T) {
	stats := ComputeProgress(nil, nil)
	if stats.Total != 0 || stats.Assessed != 0 || stats.PercentComplete != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestComputeProgressAssessedCountsAgreeAcrossBuckets(t *testing.T) {
	overlay := map[string]domain.AssessmentStatus{
		"A": domain.StatusCurrentlyCaptured,
		"B": domain.StatusNeedsAddition,
		"D": domain.StatusInvestigation,
		"E": domain.StatusEditRequested,
	}

	stats := ComputeProgress(sampleRecords(), overlay)
	if got := stats.PhaseStats.AssessedCount(); got != stats.Assessed {
		t.Fatalf("expected overall AssessedCount %d to match Assessed %d", got, stats.Assessed)
	}
	front, middle, back := stats.ByPhase.Front.AssessedCount(), stats.ByPhase.Middle.AssessedCount(), stats.ByPhase.Back.AssessedCount()
	if front != 2 || middle != 0 || back != 1 {
		t.Fatalf("expected front=2 middle=0 back=1 assessed, got %d/%d/%d", front, middle, back)
	}
}
