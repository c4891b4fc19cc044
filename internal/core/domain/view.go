package domain

import "time"

// FieldCard is a record merged with its overlay status.
type FieldCard struct {
	Field          FieldRecord      `json:"field"`
	Classification Classification   `json:"classification"`
	Status         AssessmentStatus `json:"status"`
}

type PhaseColumn struct {
	Phase        Phase       `json:"phase"`
	Fields       []FieldCard `json:"fields"`
	VisibleCount int         `json:"visible_count"`
	TotalCount   int         `json:"total_count"`
}

type DashboardView struct {
	Columns       []PhaseColumn   `json:"columns"`
	FilteredCount int             `json:"filtered_count"`
	TotalCount    int             `json:"total_count"`
	HiddenCount   int             `json:"hidden_count"`
	FiltersActive bool            `json:"filters_active"`
	Selection     FilterSelection `json:"selection"`
	Stats         ProgressStats   `json:"stats"`
}

type FieldDetail struct {
	Field          FieldRecord        `json:"field"`
	Classification Classification     `json:"classification"`
	Assessment     Assessment         `json:"assessment"`
	Assessed       bool               `json:"assessed"`
	History        []NoteHistoryEntry `json:"history"`
}

type LoadState string

const (
	LoadStateLoading LoadState = "loading"
	LoadStateReady   LoadState = "ready"
	LoadStateFailed  LoadState = "failed"
)

type WorkspaceStatus struct {
	State       LoadState `json:"state"`
	Error       string    `json:"error,omitempty"`
	Records     int       `json:"records"`
	Assessments int       `json:"assessments"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
}

type AddFieldOutcome struct {
	Field           FieldRecord      `json:"field"`
	Persistence     PersistenceState `json:"persistence"`
	Error           string           `json:"error,omitempty"`
	Assessment      *SaveOutcome     `json:"assessment,omitempty"`
	AssessmentError string           `json:"assessment_error,omitempty"`
}

type ExportDocument struct {
	Filename    string
	ContentType string
	Body        []byte
}
