package usecase

import (
	"testing"

	"github.com/kirillkom/field-gap-tracker/internal/core/domain"
)

func names(records []domain.FieldRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestFilterFieldsIdentityWithNoTogglesEnabled(t *testing.T) {
	records := sampleRecords()
	catalog := domain.DefaultFilterCatalog()

	selections := []domain.FilterSelection{
		nil,
		{},
		{domain.FilterPrimaryNeed: {"billing": false, "mcp_reporting": false}},
	}
	for _, selection := range selections {
		got := FilterFields(records, catalog, selection)
		if len(got) != len(records) {
			t.Fatalf("expected identity for %v, got %v", selection, names(got))
		}
		for i := range records {
			if got[i].Name != records[i].Name {
				t.Fatalf("expected order preserved, got %v", names(got))
			}
		}
	}
}

func TestFilterFieldsPrimaryNeedScenario(t *testing.T) {
	records := []domain.FieldRecord{
		{Name: "A", Phase: "Front", PrimaryNeed: "Billing"},
		{Name: "B", Phase: "front", PrimaryNeed: "Service Delivery"},
	}
	selection := domain.FilterSelection{}.Enable(domain.FilterPrimaryNeed, "billing")

	got := FilterFields(records, domain.DefaultFilterCatalog(), selection)
	if len(got) != 1 || got[0].Name != "A" {
		t.Fatalf("expected [A], got %v", names(got))
	}

	groups := GroupByPhase(records)
	if len(groups) != 1 || len(groups[domain.PhaseFront]) != 2 {
		t.Fatalf("expected {front:[A B]}, got %v", groups)
	}
}

func TestFilterFieldsCombinesTogglesWithinCategoryWithAnd(t *testing.T) {
	records := sampleRecords()
	selection := domain.FilterSelection{}.
		Enable(domain.FilterPrimaryNeed, "billing").
		Enable(domain.FilterPrimaryNeed, "service_delivery")

	got := FilterFields(records, domain.DefaultFilterCatalog(), selection)
	if len(got) != 1 || got[0].Name != "C" {
		t.Fatalf("expected only the record carrying both needs, got %v", names(got))
	}
}

func TestFilterFieldsCombinesCategoriesWithAnd(t *testing.T) {
	records := sampleRecords()
	selection := domain.FilterSelection{}.
		Enable(domain.FilterPrimaryNeed, "billing").
		Enable(domain.FilterLikelySource, "intake")

	got := FilterFields(records, domain.DefaultFilterCatalog(), selection)
	want := []string{"A", "E"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Fatalf("expected %v, got %v", want, names(got))
		}
	}
}

func TestMatchesFiltersEmptyAttributeFailsEnabledToggle(t *testing.T) {
	record := domain.FieldRecord{Name: "F", Phase: "back"}
	selection := domain.FilterSelection{}.Enable(domain.FilterDataFrequency, "by_patient")

	if MatchesFilters(record, domain.DefaultFilterCatalog(), selection) {
		t.Fatalf("expected record without frequency to fail an enabled frequency toggle")
	}
}

func TestMatchesFiltersIsCaseInsensitiveSubstring(t *testing.T) {
	record := domain.FieldRecord{Name: "X", DataFrequency: "Monthly - PERIOD DEPENDENT (see note)"}
	selection := domain.FilterSelection{}.Enable(domain.FilterDataFrequency, "period_dependent")

	if !MatchesFilters(record, domain.DefaultFilterCatalog(), selection) {
		t.Fatalf("expected substring match regardless of case")
	}
}

func TestFilterFieldsNarrowsMonotonically(t *testing.T) {
	records := sampleRecords()
	catalog := domain.DefaultFilterCatalog()

	selection := domain.FilterSelection{}
	previous := FilterFields(records, catalog, selection)
	for _, category := range catalog.Categories {
		for _, toggle := range category.Toggles {
			selection = selection.Enable(category.Key, toggle.Key)
			current := FilterFields(records, catalog, selection)
			if !isSubset(current, previous) {
				t.Fatalf("enabling %s.%s widened the result: %v -> %v", category.Key, toggle.Key, names(previous), names(current))
			}
			previous = current
		}
	}
}

func isSubset(sub, super []domain.FieldRecord) bool {
	set := make(map[string]struct{}, len(super))
	for _, r := range super {
		set[r.Name] = struct{}{}
	}
	for _, r := range sub {
		if _, ok := set[r.Name]; !ok {
			return false
		}
	}
	return true
}
