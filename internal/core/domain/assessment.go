package domain

import (
	"fmt"
	"strings"
	"time"
)

type AssessmentStatus string

const (
	StatusNotAssessed       AssessmentStatus = "not_assessed"
	StatusCurrentlyCaptured AssessmentStatus = "currently_captured"
	StatusNeedsAddition     AssessmentStatus = "needs_addition"
	StatusEditRequested     AssessmentStatus = "edit_requested"
	StatusInvestigation     AssessmentStatus = "investigation"
)

func AllStatuses() []AssessmentStatus {
	return []AssessmentStatus{
		StatusNotAssessed,
		StatusCurrentlyCaptured,
		StatusNeedsAddition,
		StatusEditRequested,
		StatusInvestigation,
	}
}

// ParseAssessmentStatus is case-insensitive; empty input is not_assessed.
func ParseAssessmentStatus(raw string) (AssessmentStatus, error) {
	switch AssessmentStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusNotAssessed, "":
		return StatusNotAssessed, nil
	case StatusCurrentlyCaptured:
		return StatusCurrentlyCaptured, nil
	case StatusNeedsAddition:
		return StatusNeedsAddition, nil
	case StatusEditRequested:
		return StatusEditRequested, nil
	case StatusInvestigation:
		return StatusInvestigation, nil
	default:
		return StatusNotAssessed, fmt.Errorf("invalid assessment status: %q", raw)
	}
}

// IsAssessed reports whether s is one of the statuses a save may store.
func (s AssessmentStatus) IsAssessed() bool {
	switch s {
	case StatusCurrentlyCaptured, StatusNeedsAddition, StatusEditRequested, StatusInvestigation:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func ParsePriority(raw string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityNone:
		return PriorityNone, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	default:
		return PriorityNone, fmt.Errorf("invalid priority: %q", raw)
	}
}

type Assessment struct {
	ID              string           `json:"id"`
	FieldName       string           `json:"field_name"`
	Status          AssessmentStatus `json:"status"`
	MappedFieldName string           `json:"mapped_field_name,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Priority        Priority         `json:"priority,omitempty"`
	AssignedTo      string           `json:"assigned_to,omitempty"`
	Author          string           `json:"author,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type NoteHistoryEntry struct {
	ID                 string           `json:"id"`
	FieldName          string           `json:"field_name"`
	Author             string           `json:"author"`
	Notes              string           `json:"notes"`
	StatusAtTimeOfNote AssessmentStatus `json:"status_at_time_of_note"`
	CreatedAt          time.Time        `json:"created_at"`
}

type SaveAssessmentInput struct {
	FieldName       string           `json:"field_name"`
	Status          AssessmentStatus `json:"status"`
	MappedFieldName string           `json:"mapped_field_name,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Priority        Priority         `json:"priority,omitempty"`
	AssignedTo      string           `json:"assigned_to,omitempty"`
	Author          string           `json:"author"`
}

type PersistenceState string

const (
	PersistencePersisted PersistenceState = "persisted"
	PersistenceLocalOnly PersistenceState = "local_only"
)

// SaveOutcome reports what a save did. A local_only outcome means the overlay reflects
// the change but the store rejected it; Error carries the store failure.
type SaveOutcome struct {
	Assessment   Assessment       `json:"assessment"`
	Persistence  PersistenceState `json:"persistence"`
	NoteRecorded bool             `json:"note_recorded"`
	Error        string           `json:"error,omitempty"`
}

func (o SaveOutcome) Persisted() bool {
	return o.Persistence == PersistencePersisted
}

// AssessmentChanged is published after an assessment is persisted or deleted.
type AssessmentChanged struct {
	FieldName string           `json:"field_name"`
	Status    AssessmentStatus `json:"status"`
	Author    string           `json:"author,omitempty"`
	Deleted   bool             `json:"deleted,omitempty"`
	At        time.Time        `json:"persisted_at"`
}
