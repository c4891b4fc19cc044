package domain

import (
	"fmt"
	"sort"
	"strings"
)

type FilterCategory string

const (
	FilterPrimaryNeed      FilterCategory = "primary_need"
	FilterLikelySource     FilterCategory = "likely_source"
	FilterRequirementLevel FilterCategory = "requirement_level"
	FilterDataFrequency    FilterCategory = "data_frequency"
)

type FilterToggle struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Match string `json:"match" yaml:"match"`
}

type FilterCategoryDef struct {
	Key       FilterCategory `json:"key" yaml:"key"`
	Label     string         `json:"label" yaml:"label"`
	Attribute FieldAttribute `json:"attribute" yaml:"attribute"`
	Toggles   []FilterToggle `json:"toggles" yaml:"toggles"`
}

// FilterCatalog fixes the toggles a FilterSelection may enable.
type FilterCatalog struct {
	Categories []FilterCategoryDef `json:"categories" yaml:"categories"`
}

func DefaultFilterCatalog() FilterCatalog {
	return FilterCatalog{Categories: []FilterCategoryDef{
		{
			Key:       FilterPrimaryNeed,
			Label:     "Primary Need",
			Attribute: AttributePrimaryNeed,
			Toggles: []FilterToggle{
				{Key: "billing", Label: "Billing", Match: "billing"},
				{Key: "service_delivery", Label: "Service Delivery", Match: "service delivery"},
				{Key: "mcp_reporting", Label: "MCP Reporting", Match: "mcp reporting"},
			},
		},
		{
			Key:       FilterLikelySource,
			Label:     "Likely Source",
			Attribute: AttributeLikelySource,
			Toggles: []FilterToggle{
				{Key: "intake", Label: "Intake", Match: "intake"},
				{Key: "service_notes", Label: "Service Notes", Match: "service notes"},
				{Key: "admin_panel", Label: "Admin Panel", Match: "admin panel"},
				{Key: "rcm_module", Label: "RCM Module", Match: "rcm module"},
			},
		},
		{
			Key:       FilterRequirementLevel,
			Label:     "Field Requirement",
			Attribute: AttributeRequirementLevel,
			Toggles: []FilterToggle{
				{Key: "always", Label: "Always", Match: "always"},
				{Key: "dependent", Label: "Dependent", Match: "dependent"},
				{Key: "other", Label: "Other", Match: "other"},
			},
		},
		{
			Key:       FilterDataFrequency,
			Label:     "Frequency of Data Transfer",
			Attribute: AttributeDataFrequency,
			Toggles: []FilterToggle{
				{Key: "period_dependent", Label: "Period Dependent", Match: "period dependent"},
				{Key: "by_patient", Label: "By Patient", Match: "by patient"},
				{Key: "by_encounter", Label: "By Encounter", Match: "by encounter"},
			},
		},
	}}
}

// Validate rejects catalogs whose toggles could match everything or collide.
func (c FilterCatalog) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("filter catalog has no categories")
	}
	seenCategories := make(map[FilterCategory]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		if strings.TrimSpace(string(cat.Key)) == "" {
			return fmt.Errorf("filter category key is required")
		}
		if _, dup := seenCategories[cat.Key]; dup {
			return fmt.Errorf("duplicate filter category %q", cat.Key)
		}
		seenCategories[cat.Key] = struct{}{}
		if !cat.Attribute.Valid() {
			return fmt.Errorf("filter category %q: unknown attribute %q", cat.Key, cat.Attribute)
		}
		seenToggles := make(map[string]struct{}, len(cat.Toggles))
		for _, toggle := range cat.Toggles {
			if strings.TrimSpace(toggle.Key) == "" {
				return fmt.Errorf("filter category %q: toggle key is required", cat.Key)
			}
			if strings.TrimSpace(toggle.Match) == "" {
				return fmt.Errorf("filter category %q: toggle %q has empty match text", cat.Key, toggle.Key)
			}
			if _, dup := seenToggles[toggle.Key]; dup {
				return fmt.Errorf("filter category %q: duplicate toggle %q", cat.Key, toggle.Key)
			}
			seenToggles[toggle.Key] = struct{}{}
		}
	}
	return nil
}

func (c FilterCatalog) Category(key FilterCategory) (FilterCategoryDef, bool) {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return FilterCategoryDef{}, false
}

// FilterSelection holds the enabled toggles per category. A missing or empty category
// means every toggle in it is off.
type FilterSelection map[FilterCategory]map[string]bool

func (s FilterSelection) Enable(category FilterCategory, toggle string) FilterSelection {
	out := s.Clone()
	if out[category] == nil {
		out[category] = make(map[string]bool)
	}
	out[category][toggle] = true
	return out
}

func (s FilterSelection) Enabled(category FilterCategory, toggle string) bool {
	return s[category][toggle]
}

func (s FilterSelection) Active() bool {
	for _, toggles := range s {
		for _, on := range toggles {
			if on {
				return true
			}
		}
	}
	return false
}

func (s FilterSelection) Clone() FilterSelection {
	out := make(FilterSelection, len(s))
	for cat, toggles := range s {
		copied := make(map[string]bool, len(toggles))
		for key, on := range toggles {
			copied[key] = on
		}
		out[cat] = copied
	}
	return out
}

// EnabledKeys lists the enabled toggle keys of a category in sorted order.
func (s FilterSelection) EnabledKeys(category FilterCategory) []string {
	keys := make([]string, 0, len(s[category]))
	for key, on := range s[category] {
		if on {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Validate checks every enabled toggle against the catalog.
func (s FilterSelection) Validate(catalog FilterCatalog) error {
	for category, toggles := range s {
		def, ok := catalog.Category(category)
		if !ok {
			return WrapError(ErrInvalidInput, "validate filter", fmt.Errorf("unknown category %q", category))
		}
		for key, on := range toggles {
			if !on {
				continue
			}
			if !def.hasToggle(key) {
				return WrapError(ErrInvalidInput, "validate filter", fmt.Errorf("unknown toggle %q in category %q", key, category))
			}
		}
	}
	return nil
}

func (d FilterCategoryDef) hasToggle(key string) bool {
	for _, toggle := range d.Toggles {
		if toggle.Key == key {
			return true
		}
	}
	return false
}
