package calculation

import (
	"github.com/rgehrsitz/psupdate/internal/domain"
)

// RunContext carries all mutable state of one run. Nothing about a run lives
// at package level, so runs can execute side by side.
type RunContext struct {
	cfg     domain.RunConfig
	outcome *domain.RunOutcome

	client      domain.Totals
	clientCount int

	// every member SSN read from the profile stream, processed or not
	memberSSNs map[int64]struct{}
	// member SSN -> index into outcome.Records
	memberBySSN map[int64]int
}

// NewRunContext starts a fresh run in the INITIAL state
func NewRunContext(runID string, cfg domain.RunConfig) *RunContext {
	return &RunContext{
		cfg: cfg,
		outcome: &domain.RunOutcome{
			RunID:         runID,
			EffectiveYear: cfg.EffectiveYear,
			State:         domain.RunStateInitial,
			PointValues:   cfg.PointValues,
		},
		memberSSNs:  make(map[int64]struct{}),
		memberBySSN: make(map[int64]int),
	}
}

// Outcome exposes the run's accumulated result
func (rc *RunContext) Outcome() *domain.RunOutcome {
	return rc.outcome
}

// Adjustments is where Compute records the adjustment trace
func (rc *RunContext) Adjustments() *domain.AdjustmentsApplied {
	return &rc.outcome.Adjustments
}

// SetState moves the run to s
func (rc *RunContext) SetState(s domain.RunState) {
	rc.outcome.State = s
}

// RequireRerun raises the run-level rerun flag. It never clears.
func (rc *RunContext) RequireRerun() {
	rc.outcome.RerunRequired = true
}

// Add appends a computed record and folds it into the client totals,
// flushing a batch when the configured page size is reached.
func (rc *RunContext) Add(rec domain.MemberFinancials) {
	rc.outcome.Records = append(rc.outcome.Records, rec)
	if rec.Kind == domain.KindMember {
		rc.NoteMemberSSN(rec.SSN)
		rc.memberBySSN[rec.SSN] = len(rc.outcome.Records) - 1
	}
	rc.client.Add(rec)
	rc.clientCount++
	if rc.cfg.PageSize > 0 && rc.clientCount >= rc.cfg.PageSize {
		rc.Flush()
	}
}

// Flush closes the current client batch and merges it into the grand totals
func (rc *RunContext) Flush() {
	if rc.clientCount == 0 {
		return
	}
	rc.outcome.ClientBatches = append(rc.outcome.ClientBatches, rc.client)
	rc.outcome.GrandTotals.Merge(rc.client)
	rc.client = domain.Totals{}
	rc.clientCount = 0
}

// NoteMemberSSN records that the profile stream holds a member with ssn,
// whether or not that member ends up with a record.
func (rc *RunContext) NoteMemberSSN(ssn int64) {
	rc.memberSSNs[ssn] = struct{}{}
}

// MarkMemberAsBeneficiary reports whether the profile stream held a member
// with ssn. When that member has a record it is forced to type 2.
func (rc *RunContext) MarkMemberAsBeneficiary(ssn int64) bool {
	if _, ok := rc.memberSSNs[ssn]; !ok {
		return false
	}
	if idx, ok := rc.memberBySSN[ssn]; ok {
		rc.outcome.Records[idx].EmployeeType = domain.EmployeeTypeAlsoBeneficiary
	}
	return true
}

// Skip counts an invalid participant
func (rc *RunContext) Skip(kind domain.ParticipantKind, key, ssn int64, reason string) {
	rc.outcome.InvalidRecordCount++
	rc.outcome.Skipped = append(rc.outcome.Skipped, domain.SkippedParticipant{
		Kind:   kind,
		Key:    key,
		SSN:    ssn,
		Reason: reason,
	})
}

// Finish flushes the last batch and settles the final state
func (rc *RunContext) Finish() *domain.RunOutcome {
	rc.Flush()
	if rc.outcome.RerunRequired {
		rc.outcome.State = domain.RunStateRerunRequired
	} else {
		rc.outcome.State = domain.RunStateComplete
	}
	return rc.outcome
}
