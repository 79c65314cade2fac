package calculation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/psupdate/internal/config"
	"github.com/rgehrsitz/psupdate/internal/domain"
	"github.com/rgehrsitz/psupdate/internal/ledger"
	"github.com/shopspring/decimal"
)

// Reasons recorded for skipped participants
const (
	SkipLedgerNotFound = "ledger_not_found"
	SkipOutOfOrder     = "out_of_order"
	SkipZeroBadge      = "zero_badge"
)

// Engine runs the year-end allocation over the member and beneficiary streams
type Engine struct {
	Ledger   ledger.Reader
	Logger   Logger
	Recorder Recorder

	// NewRunID is overridable so tests get stable ids
	NewRunID func() string
}

// NewEngine creates an engine reading ledgers from reader
func NewEngine(reader ledger.Reader) *Engine {
	return &Engine{
		Ledger:   reader,
		Logger:   NopLogger{},
		Recorder: NopRecorder{},
		NewRunID: uuid.NewString,
	}
}

// SetLogger sets a logger; nil resets to a no-op logger
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// SetRecorder sets a metrics recorder; nil resets to a no-op recorder
func (e *Engine) SetRecorder(r Recorder) {
	if r == nil {
		e.Recorder = NopRecorder{}
		return
	}
	e.Recorder = r
}

// Run processes every member group, then every distinct beneficiary, and
// returns the outcome. A run that needs a rerun is returned without error; the
// caller must check State before treating the results as final.
//
// Cancellation is honoured only between participants. A cancelled run returns
// the partial outcome in the ABORTED state together with ctx.Err().
func (e *Engine) Run(ctx context.Context, members MemberSource, benes BeneficiarySource, cfg domain.RunConfig) (*domain.RunOutcome, error) {
	start := time.Now()
	rc := NewRunContext(e.NewRunID(), cfg)

	if err := config.NewInputParser().ValidateConfiguration(&cfg); err != nil {
		rc.SetState(domain.RunStateAborted)
		return rc.Outcome(), err
	}

	e.Logger.Infof("run %s: effective year %d, special run %t", rc.Outcome().RunID, cfg.EffectiveYear, cfg.SpecialRun)
	rc.SetState(domain.RunStateProcessing)

	pv := EffectivePointValues(cfg)

	if err := e.processMembers(ctx, rc, members, cfg, pv); err != nil {
		return e.abort(rc, start, err)
	}
	if err := e.processBeneficiaries(ctx, rc, benes, cfg, pv); err != nil {
		return e.abort(rc, start, err)
	}

	outcome := rc.Finish()
	if outcome.RerunRequired {
		e.Logger.Warnf("run %s: A RERUN OF PAY444 IS REQUIRED (over max total %s)",
			outcome.RunID, outcome.GrandTotals.MaxOverTotal.StringFixed(2))
	}
	e.Logger.Infof("run %s: %s, %d records, %d invalid",
		outcome.RunID, outcome.State, len(outcome.Records), outcome.InvalidRecordCount)
	e.Recorder.RunFinished(outcome, time.Since(start))
	return outcome, nil
}

// EffectivePointValues returns the point values a run actually applies.
// Special runs carry no manual adjustments.
func EffectivePointValues(cfg domain.RunConfig) domain.PointValues {
	pv := cfg.PointValues
	if cfg.SpecialRun {
		pv.Adjustment = domain.Adjustment{}
		pv.SecondaryAdjustment = domain.SecondaryAdjustment{}
	}
	return pv
}

func (e *Engine) abort(rc *RunContext, start time.Time, err error) (*domain.RunOutcome, error) {
	rc.Flush()
	rc.SetState(domain.RunStateAborted)
	outcome := rc.Outcome()
	e.Logger.Errorf("run %s aborted: %v", outcome.RunID, err)
	e.Recorder.RunFinished(outcome, time.Since(start))
	return outcome, err
}

func (e *Engine) processMembers(ctx context.Context, rc *RunContext, members MemberSource, cfg domain.RunConfig, pv domain.PointValues) error {
	if members == nil {
		return nil
	}
	grouper := NewMemberGrouper(members)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p, ok, err := grouper.Next(ctx)
		if ok {
			rc.NoteMemberSSN(p.SSN)
		}
		if errors.Is(err, ErrOutOfOrder) {
			e.Logger.Warnf("badge %d: %v", p.ParticipantKey, err)
			rc.Skip(domain.KindMember, p.ParticipantKey, p.SSN, SkipOutOfOrder)
			e.Recorder.ParticipantSkipped(domain.KindMember, SkipOutOfOrder)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read member stream: %w", err)
		}
		if !ok {
			return nil
		}
		if p.ParticipantKey <= 0 {
			e.Logger.Warnf("member group %q has no badge, skipping", p.Name)
			rc.Skip(domain.KindMember, p.ParticipantKey, p.SSN, SkipZeroBadge)
			e.Recorder.ParticipantSkipped(domain.KindMember, SkipZeroBadge)
			continue
		}

		if p.EmployeeType == domain.EmployeeTypeNormal &&
			p.PriorEtva.GreaterThan(decimal.Zero) && p.BeginningBalance.IsZero() {
			p.EmployeeType = domain.EmployeeTypeAlsoBeneficiary
		}
		if !p.IsEligible() {
			rc.Outcome().Ineligible++
			e.Logger.Debugf("badge %d: not eligible this year", p.ParticipantKey)
			continue
		}

		rows, err := e.Ledger.DetailRowsForParticipant(ctx, p.SSN)
		if errors.Is(err, ledger.ErrNotFound) {
			e.Logger.Warnf("badge %d: no ledger record, skipping", p.ParticipantKey)
			rc.Skip(domain.KindMember, p.ParticipantKey, p.SSN, SkipLedgerNotFound)
			e.Recorder.ParticipantSkipped(domain.KindMember, SkipLedgerNotFound)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read ledger for badge %d: %w", p.ParticipantKey, err)
		}

		totals := ledger.Summarize(rows, cfg.EffectiveYear)
		alloc := Compute(ComputeInput{
			Kind:             domain.KindMember,
			Badge:            p.ParticipantKey,
			Points:           p.TotalPoints,
			BeginningBalance: p.BeginningBalance,
			Ledger:           totals,
			PriorEtva:        p.PriorEtva,
			YearsInPlan:      p.YearsInPlan,
		}, pv, rc.Adjustments())

		if cfg.SpecialRun {
			alloc = accumulateSpecialRun(alloc, p)
		}

		alloc, capped, diag := Cap(alloc, totals.MilitaryContribution, p.ParticipantKey, p.TotalPoints, pv)
		if capped {
			rc.RequireRerun()
			e.Recorder.ParticipantCapped(diag != nil)
			e.Logger.Infof("badge %d: over maximum by %s", p.ParticipantKey, alloc.MaxOver.StringFixed(2))
		}
		if diag != nil {
			rc.Outcome().CapShortfalls = append(rc.Outcome().CapShortfalls, p.ParticipantKey)
			e.Logger.Warnf("%s", diag.Error())
		}

		rec := memberRecord(p, totals, alloc)
		if diag != nil {
			// the reported forfeiture is zero, not netted against ledger forfeits
			rec.Forfeits = decimal.Zero
		}
		rc.Add(rec)
		e.Recorder.ParticipantProcessed(domain.KindMember)
	}
}

func (e *Engine) processBeneficiaries(ctx context.Context, rc *RunContext, benes BeneficiarySource, cfg domain.RunConfig, pv domain.PointValues) error {
	if benes == nil {
		return nil
	}
	dedup := NewBeneficiaryDeduper(benes)
	defer func() {
		rc.Outcome().DuplicatePayees = dedup.Skipped
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, ok, err := dedup.Next(ctx)
		if err != nil {
			return fmt.Errorf("failed to read beneficiary stream: %w", err)
		}
		if !ok {
			return nil
		}

		if rc.MarkMemberAsBeneficiary(row.SSN) {
			e.Logger.Debugf("psn %d: ssn belongs to a member, payee not computed", row.PSN)
			continue
		}

		rows, err := e.Ledger.DetailRowsForPayee(ctx, row.SSN)
		if errors.Is(err, ledger.ErrNotFound) {
			e.Logger.Warnf("psn %d: no ledger record, skipping", row.PSN)
			rc.Skip(domain.KindBeneficiary, row.PSN, row.SSN, SkipLedgerNotFound)
			e.Recorder.ParticipantSkipped(domain.KindBeneficiary, SkipLedgerNotFound)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read ledger for psn %d: %w", row.PSN, err)
		}

		p := domain.BeneficiaryPoints(row)
		totals := ledger.Summarize(rows, cfg.EffectiveYear)
		alloc := Compute(ComputeInput{
			Kind:             domain.KindBeneficiary,
			BeginningBalance: p.BeginningBalance,
			Ledger:           totals,
		}, pv, rc.Adjustments())

		if cfg.SpecialRun {
			alloc = accumulateSpecialRun(alloc, p)
		}

		rc.Add(beneficiaryRecord(p, totals, alloc))
		e.Recorder.ParticipantProcessed(domain.KindBeneficiary)
	}
}

// accumulateSpecialRun stacks this run's contribution and forfeiture on top of
// the prior run's values and leaves earnings uncomputed.
func accumulateSpecialRun(a domain.Allocation, p domain.ParticipantPoints) domain.Allocation {
	a.Contribution = p.PriorContribution.Add(a.Contribution)
	a.Forfeiture = p.PriorForfeiture.Add(a.Forfeiture)
	a.Earnings = decimal.Zero
	a.SecondaryEarnings = decimal.Zero
	a.EtvaEarnings = decimal.Zero
	a.EtvaSecondaryEarnings = decimal.Zero
	a.BeneficiaryEarnings = decimal.Zero
	a.BeneficiarySecondaryEarnings = decimal.Zero
	a.EarnPoints = 0
	a.PointsDollars = decimal.Zero
	return a
}

func memberRecord(p domain.ParticipantPoints, l domain.LedgerTotals, a domain.Allocation) domain.MemberFinancials {
	return domain.MemberFinancials{
		Kind:                  domain.KindMember,
		Badge:                 p.ParticipantKey,
		SSN:                   p.SSN,
		Name:                  p.Name,
		EmployeeType:          p.EmployeeType,
		BeginningBalance:      p.BeginningBalance,
		Distributions:         l.DistributionTotal,
		Military:              l.MilitaryContribution,
		Caf:                   l.ClassActionFundEarnings,
		Xfer:                  l.AllocationTotal,
		Pxfer:                 l.PriorAllocationTotal,
		Forfeits:              l.ForfeitureTotal,
		ContributionPoints:    p.TotalPoints,
		EarningPoints:         a.EarnPoints,
		Contributions:         a.Contribution,
		IncomingForfeitures:   a.Forfeiture,
		Earnings:              a.Earnings,
		EtvaEarnings:          a.EtvaEarnings,
		SecondaryEarnings:     a.SecondaryEarnings,
		SecondaryEtvaEarnings: a.EtvaSecondaryEarnings,
		MaxOver:               a.MaxOver,
		MaxPoints:             a.MaxPoints,
	}
}

func beneficiaryRecord(p domain.ParticipantPoints, l domain.LedgerTotals, a domain.Allocation) domain.MemberFinancials {
	return domain.MemberFinancials{
		Kind:              domain.KindBeneficiary,
		PSN:               p.PSN,
		SSN:               p.SSN,
		Name:              p.Name,
		BeginningBalance:  p.BeginningBalance,
		Distributions:     l.DistributionTotal,
		Military:          l.MilitaryContribution,
		Caf:               l.ClassActionFundEarnings,
		Xfer:              l.AllocationTotal,
		Pxfer:             l.PriorAllocationTotal,
		Forfeits:          l.ForfeitureTotal,
		EarningPoints:     a.EarnPoints,
		Earnings:          a.BeneficiaryEarnings,
		SecondaryEarnings: a.BeneficiarySecondaryEarnings,
	}
}
