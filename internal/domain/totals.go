package domain

import (
	"github.com/shopspring/decimal"
)

// Totals accumulates the financial columns of a set of participant records.
// The same shape serves client (per batch) and grand (per run) totals.
type Totals struct {
	BeginningBalance  decimal.Decimal `json:"beginning_balance"`
	Distributions     decimal.Decimal `json:"distributions"`
	Contributions     decimal.Decimal `json:"contributions"`
	Military          decimal.Decimal `json:"military"`
	Forfeitures       decimal.Decimal `json:"forfeitures"`
	Earnings          decimal.Decimal `json:"earnings"`
	SecondaryEarnings decimal.Decimal `json:"secondary_earnings"`
	ClassActionFund   decimal.Decimal `json:"class_action_fund"`
	EndingBalance     decimal.Decimal `json:"ending_balance"`

	// Allocations is inbound transfers; PaidAllocations is outbound and carried negative
	Allocations     decimal.Decimal `json:"allocations"`
	PaidAllocations decimal.Decimal `json:"paid_allocations"`

	ContributionPoints int64 `json:"contribution_points"`
	EarningPoints      int64 `json:"earning_points"`

	MaxOverTotal   decimal.Decimal `json:"max_over_total"`
	MaxPointsTotal int64           `json:"max_points_total"`

	Members       int `json:"members"`
	Beneficiaries int `json:"beneficiaries"`
}

// Add folds one participant record into the totals
func (t *Totals) Add(m MemberFinancials) {
	t.BeginningBalance = t.BeginningBalance.Add(m.BeginningBalance)
	t.Distributions = t.Distributions.Add(m.Distributions)
	t.Contributions = t.Contributions.Add(m.Contributions)
	t.Military = t.Military.Add(m.Military)
	t.Forfeitures = t.Forfeitures.Add(m.ReportedForfeiture())
	t.Earnings = t.Earnings.Add(m.AllEarnings())
	t.SecondaryEarnings = t.SecondaryEarnings.Add(m.AllSecondaryEarnings())
	t.ClassActionFund = t.ClassActionFund.Add(m.Caf)
	t.EndingBalance = t.EndingBalance.Add(m.EndingBalance())
	t.Allocations = t.Allocations.Add(m.Xfer)
	t.PaidAllocations = t.PaidAllocations.Sub(m.Pxfer)
	t.ContributionPoints += m.ContributionPoints
	t.EarningPoints += m.EarningPoints
	t.MaxOverTotal = t.MaxOverTotal.Add(m.MaxOver)
	t.MaxPointsTotal += m.MaxPoints
	if m.IsEmployee() {
		t.Members++
	} else {
		t.Beneficiaries++
	}
}

// Merge folds a flushed batch of totals into t
func (t *Totals) Merge(o Totals) {
	t.BeginningBalance = t.BeginningBalance.Add(o.BeginningBalance)
	t.Distributions = t.Distributions.Add(o.Distributions)
	t.Contributions = t.Contributions.Add(o.Contributions)
	t.Military = t.Military.Add(o.Military)
	t.Forfeitures = t.Forfeitures.Add(o.Forfeitures)
	t.Earnings = t.Earnings.Add(o.Earnings)
	t.SecondaryEarnings = t.SecondaryEarnings.Add(o.SecondaryEarnings)
	t.ClassActionFund = t.ClassActionFund.Add(o.ClassActionFund)
	t.EndingBalance = t.EndingBalance.Add(o.EndingBalance)
	t.Allocations = t.Allocations.Add(o.Allocations)
	t.PaidAllocations = t.PaidAllocations.Add(o.PaidAllocations)
	t.ContributionPoints += o.ContributionPoints
	t.EarningPoints += o.EarningPoints
	t.MaxOverTotal = t.MaxOverTotal.Add(o.MaxOverTotal)
	t.MaxPointsTotal += o.MaxPointsTotal
	t.Members += o.Members
	t.Beneficiaries += o.Beneficiaries
}

// IsZero reports whether nothing has been folded into t
func (t Totals) IsZero() bool {
	return t.Members == 0 && t.Beneficiaries == 0
}
