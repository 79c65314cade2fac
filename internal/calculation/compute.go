package calculation

import (
	"github.com/rgehrsitz/psupdate/internal/domain"
	"github.com/shopspring/decimal"
)

// etvaYearsLimit is the years-in-plan threshold below which prior ETVA shares in earnings
const etvaYearsLimit = 6

// ComputeInput is everything the allocation needs to know about one participant
type ComputeInput struct {
	Kind             domain.ParticipantKind
	Badge            int64
	Points           int64
	BeginningBalance decimal.Decimal
	Ledger           domain.LedgerTotals
	PriorEtva        decimal.Decimal
	YearsInPlan      int
}

// Compute turns a participant's points and ledger totals into contribution,
// forfeiture and earnings. Members and beneficiaries share one path; the kind
// decides which steps apply and where earnings are written.
//
// When adj is non-nil and a configured adjustment badge matches, the before and
// after values are recorded in it.
func Compute(in ComputeInput, pv domain.PointValues, adj *domain.AdjustmentsApplied) domain.Allocation {
	var a domain.Allocation
	member := in.Kind == domain.KindMember
	points := decimal.NewFromInt(in.Points)

	if member {
		a.Contribution = Round2(pv.ContributionRate.Mul(points))
		a.Forfeiture = Round2(pv.ForfeitureRate.Mul(points))
		if pv.AdjustsBadge(in.Badge) {
			a.Contribution = applyAdjustment(a.Contribution, pv.Adjustment.Contribution,
				adj, func(r *domain.AdjustmentsApplied, before, after decimal.Decimal) {
					r.Matched = true
					r.ContributionUnadjusted, r.ContributionAdjusted = before, after
				})
			a.Forfeiture = applyAdjustment(a.Forfeiture, pv.Adjustment.Forfeiture,
				adj, func(r *domain.AdjustmentsApplied, before, after decimal.Decimal) {
					r.ForfeitureUnadjusted, r.ForfeitureAdjusted = before, after
				})
		}
	}

	a.PointsDollars, a.EarnPoints = earningsBase(in)

	earnPoints := decimal.NewFromInt(a.EarnPoints)
	earnings := Round2(pv.EarningsRate.Mul(earnPoints))
	if member && pv.AdjustsBadge(in.Badge) {
		earnings = applyAdjustment(earnings, pv.Adjustment.Earnings,
			adj, func(r *domain.AdjustmentsApplied, before, after decimal.Decimal) {
				r.EarningsUnadjusted, r.EarningsAdjusted = before, after
			})
	}

	var secondary decimal.Decimal
	if pv.SecondaryEnabled() {
		secondary = Round2(pv.SecondaryEarningsRate.Mul(earnPoints))
		if member && pv.AdjustsSecondaryBadge(in.Badge) {
			secondary = applyAdjustment(secondary, pv.SecondaryAdjustment.Earnings,
				adj, func(r *domain.AdjustmentsApplied, before, after decimal.Decimal) {
					r.SecondaryMatched = true
					r.SecondaryUnadjusted, r.SecondaryAdjusted = before, after
				})
		}
	}

	if !member {
		a.BeneficiaryEarnings = earnings
		a.BeneficiarySecondaryEarnings = secondary
		return a
	}

	a.EtvaBase = etvaBase(in)
	a.Earnings = earnings
	a.SecondaryEarnings = secondary
	if !a.EtvaBase.GreaterThan(decimal.Zero) || !a.PointsDollars.GreaterThan(decimal.Zero) {
		return a
	}

	// One percentage serves both splits
	etvaPercent := a.EtvaBase.Div(a.PointsDollars)
	a.EtvaEarnings = Round2(earnings.Mul(etvaPercent))
	a.Earnings = earnings.Sub(a.EtvaEarnings)
	if pv.SecondaryEnabled() {
		a.EtvaSecondaryEarnings = Round2(secondary.Mul(etvaPercent))
		a.SecondaryEarnings = secondary.Sub(a.EtvaSecondaryEarnings)
	}
	return a
}

// earningsBase returns the points-dollar balance and the earn points derived from it.
// CAF is added and then removed again: it takes part in the sign check only.
func earningsBase(in ComputeInput) (decimal.Decimal, int64) {
	l := in.Ledger
	net := in.BeginningBalance.Sub(l.ForfeitureTotal).Sub(l.PriorAllocationTotal)

	balance := l.AllocationTotal.Add(l.ClassActionFundEarnings).Add(net).Sub(l.DistributionTotal)
	balance = balance.Sub(l.ClassActionFundEarnings)
	if !balance.GreaterThan(decimal.Zero) {
		return decimal.Zero, 0
	}

	pointsDollars := Round2(l.AllocationTotal.Add(net).Sub(l.DistributionTotal))
	return pointsDollars, EarnPointsFromDollars(pointsDollars)
}

func etvaBase(in ComputeInput) decimal.Decimal {
	if !in.PriorEtva.GreaterThan(decimal.Zero) || in.YearsInPlan >= etvaYearsLimit {
		return decimal.Zero
	}
	return in.PriorEtva.Sub(in.Ledger.ClassActionFundEarnings)
}

func applyAdjustment(
	value, delta decimal.Decimal,
	adj *domain.AdjustmentsApplied,
	record func(r *domain.AdjustmentsApplied, before, after decimal.Decimal),
) decimal.Decimal {
	after := value.Add(delta)
	if adj != nil {
		record(adj, value, after)
	}
	return after
}
