package domain

// PhaseStats counts records of one phase (or the whole catalog) by status.
type PhaseStats struct {
	Total             int `json:"total"`
	CurrentlyCaptured int `json:"currently_captured"`
	NeedsAddition     int `json:"needs_addition"`
	EditRequested     int `json:"edit_requested"`
	Investigation     int `json:"investigation"`
	NotAssessed       int `json:"not_assessed"`
}

func (p *PhaseStats) Add(status AssessmentStatus) {
	p.Total++
	switch status {
	case StatusCurrentlyCaptured:
		p.CurrentlyCaptured++
	case StatusNeedsAddition:
		p.NeedsAddition++
	case StatusEditRequested:
		p.EditRequested++
	case StatusInvestigation:
		p.Investigation++
	default:
		p.NotAssessed++
	}
}

// AssessedCount is the number of records with any status other than not_assessed.
func (p PhaseStats) AssessedCount() int {
	return p.Total - p.NotAssessed
}

type PhaseBreakdown struct {
	Front  PhaseStats `json:"front"`
	Middle PhaseStats `json:"middle"`
	Back   PhaseStats `json:"back"`
}

// For returns the stats bucket of a display phase, or nil for PhaseOther.
func (b *PhaseBreakdown) For(phase Phase) *PhaseStats {
	switch phase {
	case PhaseFront:
		return &b.Front
	case PhaseMiddle:
		return &b.Middle
	case PhaseBack:
		return &b.Back
	default:
		return nil
	}
}

type ProgressStats struct {
	PhaseStats
	Assessed        int            `json:"assessed"`
	PercentComplete int            `json:"percent_complete"`
	ByPhase         PhaseBreakdown `json:"by_phase"`
}
