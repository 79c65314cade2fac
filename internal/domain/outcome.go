package domain

// RunState tracks a run through its lifecycle
type RunState string

const (
	RunStateInitial       RunState = "INITIAL"
	RunStateProcessing    RunState = "PROCESSING"
	RunStateRerunRequired RunState = "RERUN_REQUIRED"
	RunStateComplete      RunState = "COMPLETE"
	RunStateAborted       RunState = "ABORTED"
)

// IsFinal reports whether results in this state may be committed
func (s RunState) IsFinal() bool {
	return s == RunStateComplete
}

// SkippedParticipant identifies a participant left out of the run and why
type SkippedParticipant struct {
	Kind   ParticipantKind `json:"kind"`
	Key    int64           `json:"key"`
	SSN    int64           `json:"-"`
	Reason string          `json:"reason"`
}

// RunOutcome is everything a caller needs to decide what to do with a run
type RunOutcome struct {
	RunID         string             `json:"run_id"`
	EffectiveYear int                `json:"effective_year"`
	State         RunState           `json:"state"`
	RerunRequired bool               `json:"rerun_required"`
	Records       []MemberFinancials `json:"records"`
	ClientBatches []Totals           `json:"client_batches"`
	GrandTotals   Totals             `json:"grand_totals"`
	Adjustments   AdjustmentsApplied `json:"adjustments"`
	PointValues   PointValues        `json:"point_values"`

	InvalidRecordCount int                  `json:"invalid_record_count"`
	Skipped            []SkippedParticipant `json:"skipped"`
	Ineligible         int                  `json:"ineligible"`
	DuplicatePayees    int                  `json:"duplicate_payees"`
	CapShortfalls      []int64              `json:"cap_shortfalls"`
}

// SkippedKeys lists the participant keys that were skipped as invalid
func (o *RunOutcome) SkippedKeys() []int64 {
	keys := make([]int64, 0, len(o.Skipped))
	for _, s := range o.Skipped {
		keys = append(keys, s.Key)
	}
	return keys
}
