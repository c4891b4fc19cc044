package domain

import (
	"strings"
	"time"
)

type Phase string

const (
	PhaseFront  Phase = "front"
	PhaseMiddle Phase = "middle"
	PhaseBack   Phase = "back"
	PhaseOther  Phase = "other"
)

// DisplayPhases are the revenue-cycle columns, in display order.
func DisplayPhases() []Phase {
	return []Phase{PhaseFront, PhaseMiddle, PhaseBack}
}

// NormalizePhase maps free text onto a display phase; anything unrecognized is PhaseOther.
func NormalizePhase(raw string) Phase {
	switch Phase(strings.ToLower(strings.TrimSpace(raw))) {
	case PhaseFront:
		return PhaseFront
	case PhaseMiddle:
		return PhaseMiddle
	case PhaseBack:
		return PhaseBack
	default:
		return PhaseOther
	}
}

type FieldOrigin string

const (
	OriginCSV       FieldOrigin = "csv"
	OriginUserAdded FieldOrigin = "user_added"
)

// FieldRecord is one catalog entry. Name is the primary key across the system.
type FieldRecord struct {
	Name                 string      `json:"name"`
	HCFABox              string      `json:"hcfa_box,omitempty"`
	RequirementLevel     string      `json:"requirement_level,omitempty"`
	ShortDescription     string      `json:"short_description,omitempty"`
	LikelySource         string      `json:"likely_source,omitempty"`
	PrimaryNeed          string      `json:"primary_need,omitempty"`
	ImplementationNote   string      `json:"implementation_note,omitempty"`
	Phase                string      `json:"phase,omitempty"`
	CMExtractRequirement string      `json:"cm_extract_requirement,omitempty"`
	CaseManagementSystem string      `json:"case_management_system,omitempty"`
	Program              string      `json:"program,omitempty"`
	State                string      `json:"state,omitempty"`
	DataFrequency        string      `json:"data_frequency,omitempty"`
	Origin               FieldOrigin `json:"origin"`
	Author               string      `json:"author,omitempty"`
	CreatedAt            time.Time   `json:"created_at,omitempty"`
}

func (f FieldRecord) NormalizedPhase() Phase {
	return NormalizePhase(f.Phase)
}

// FieldAttribute names a filterable free-text attribute of a FieldRecord.
type FieldAttribute string

const (
	AttributePrimaryNeed      FieldAttribute = "primary_need"
	AttributeLikelySource     FieldAttribute = "likely_source"
	AttributeRequirementLevel FieldAttribute = "requirement_level"
	AttributeDataFrequency    FieldAttribute = "data_frequency"
)

func (a FieldAttribute) Valid() bool {
	switch a {
	case AttributePrimaryNeed, AttributeLikelySource, AttributeRequirementLevel, AttributeDataFrequency:
		return true
	default:
		return false
	}
}

// Attribute returns the raw text of attr, or "" for unknown attributes.
func (f FieldRecord) Attribute(attr FieldAttribute) string {
	switch attr {
	case AttributePrimaryNeed:
		return f.PrimaryNeed
	case AttributeLikelySource:
		return f.LikelySource
	case AttributeRequirementLevel:
		return f.RequirementLevel
	case AttributeDataFrequency:
		return f.DataFrequency
	default:
		return ""
	}
}

type RequirementCategory string

const (
	RequirementAlways    RequirementCategory = "always"
	RequirementDependent RequirementCategory = "dependent"
	RequirementOther     RequirementCategory = "other"
)

type SourceCategory string

const (
	SourceIntake       SourceCategory = "intake"
	SourceServiceNotes SourceCategory = "service_notes"
	SourceAdminPanel   SourceCategory = "admin_panel"
	SourceRCMModule    SourceCategory = "rcm_module"
	SourceUnrecognized SourceCategory = "unrecognized"
)

type FrequencyCategory string

const (
	FrequencyPeriodDependent FrequencyCategory = "period_dependent"
	FrequencyByPatient       FrequencyCategory = "by_patient"
	FrequencyByEncounter     FrequencyCategory = "by_encounter"
	FrequencyUnrecognized    FrequencyCategory = "unrecognized"
)

// Classification is the tagged view of the free-text attributes, derived once at the
// ingestion boundary for display. Filtering still works on the raw text.
type Classification struct {
	Phase       Phase               `json:"phase"`
	Requirement RequirementCategory `json:"requirement"`
	Source      SourceCategory      `json:"source"`
	Frequency   FrequencyCategory   `json:"frequency"`
}

func (f FieldRecord) Classify() Classification {
	return Classification{
		Phase:       f.NormalizedPhase(),
		Requirement: classifyRequirement(f.RequirementLevel),
		Source:      classifySource(f.LikelySource),
		Frequency:   classifyFrequency(f.DataFrequency),
	}
}

func classifyRequirement(raw string) RequirementCategory {
	text := strings.ToLower(raw)
	switch {
	case strings.Contains(text, "always"):
		return RequirementAlways
	case strings.Contains(text, "dependent"):
		return RequirementDependent
	default:
		return RequirementOther
	}
}

func classifySource(raw string) SourceCategory {
	text := strings.ToLower(raw)
	switch {
	case strings.Contains(text, "intake"):
		return SourceIntake
	case strings.Contains(text, "service notes"):
		return SourceServiceNotes
	case strings.Contains(text, "admin panel"):
		return SourceAdminPanel
	case strings.Contains(text, "rcm module"):
		return SourceRCMModule
	default:
		return SourceUnrecognized
	}
}

func classifyFrequency(raw string) FrequencyCategory {
	text := strings.ToLower(raw)
	switch {
	case strings.Contains(text, "period dependent"):
		return FrequencyPeriodDependent
	case strings.Contains(text, "by patient"):
		return FrequencyByPatient
	case strings.Contains(text, "by encounter"):
		return FrequencyByEncounter
	default:
		return FrequencyUnrecognized
	}
}

// NewFieldInput is the payload for adding a field by hand.
type NewFieldInput struct {
	Name               string           `json:"name"`
	HCFABox            string           `json:"hcfa_box"`
	RequirementLevel   string           `json:"requirement_level"`
	ShortDescription   string           `json:"short_description"`
	LikelySource       string           `json:"likely_source"`
	PrimaryNeeds       []string         `json:"primary_needs"`
	ImplementationNote string           `json:"implementation_note"`
	Phase              string           `json:"phase"`
	DataFrequency      string           `json:"data_frequency"`
	Author             string           `json:"author"`
	InitialStatus      AssessmentStatus `json:"initial_status,omitempty"`
	MappedFieldName    string           `json:"mapped_field_name,omitempty"`
	AssessmentNotes    string           `json:"assessment_notes,omitempty"`
}
