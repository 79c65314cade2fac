package domain

import (
	"github.com/shopspring/decimal"
)

// Allocation is the outcome of computing one participant's share
type Allocation struct {
	Contribution          decimal.Decimal `json:"contribution"`
	Forfeiture            decimal.Decimal `json:"forfeiture"`
	Earnings              decimal.Decimal `json:"earnings"`
	SecondaryEarnings     decimal.Decimal `json:"secondary_earnings"`
	EtvaEarnings          decimal.Decimal `json:"etva_earnings"`
	EtvaSecondaryEarnings decimal.Decimal `json:"etva_secondary_earnings"`

	// Beneficiary computations route earnings here instead of the member fields
	BeneficiaryEarnings          decimal.Decimal `json:"beneficiary_earnings"`
	BeneficiarySecondaryEarnings decimal.Decimal `json:"beneficiary_secondary_earnings"`

	EarnPoints    int64           `json:"earn_points"`
	PointsDollars decimal.Decimal `json:"points_dollars"`
	EtvaBase      decimal.Decimal `json:"etva_base"`
	MaxOver       decimal.Decimal `json:"max_over"`
	MaxPoints     int64           `json:"max_points"`
}

// MemberFinancials is one participant's computed ledger entry as it flows into
// totals and the reconciliation report.
type MemberFinancials struct {
	Kind         ParticipantKind `json:"kind"`
	Badge        int64           `json:"badge"`
	PSN          int64           `json:"psn"`
	SSN          int64           `json:"-"`
	Name         string          `json:"name"`
	EmployeeType EmployeeType    `json:"employee_type"`

	BeginningBalance decimal.Decimal `json:"beginning_balance"`
	Distributions    decimal.Decimal `json:"distributions"`
	Military         decimal.Decimal `json:"military"`
	Caf              decimal.Decimal `json:"caf"`
	Xfer             decimal.Decimal `json:"xfer"`
	Pxfer            decimal.Decimal `json:"pxfer"`
	Forfeits         decimal.Decimal `json:"forfeits"`

	ContributionPoints    int64           `json:"contribution_points"`
	EarningPoints         int64           `json:"earning_points"`
	Contributions         decimal.Decimal `json:"contributions"`
	IncomingForfeitures   decimal.Decimal `json:"incoming_forfeitures"`
	Earnings              decimal.Decimal `json:"earnings"`
	EtvaEarnings          decimal.Decimal `json:"etva_earnings"`
	SecondaryEarnings     decimal.Decimal `json:"secondary_earnings"`
	SecondaryEtvaEarnings decimal.Decimal `json:"secondary_etva_earnings"`
	MaxOver               decimal.Decimal `json:"max_over"`
	MaxPoints             int64           `json:"max_points"`
}

// IsEmployee reports whether the record belongs to the member section
func (m MemberFinancials) IsEmployee() bool {
	return m.Badge > 0
}

// Key is the badge for members and the PSN for beneficiaries
func (m MemberFinancials) Key() int64 {
	if m.Badge != 0 {
		return m.Badge
	}
	return m.PSN
}

// AllEarnings is primary earnings including the ETVA share
func (m MemberFinancials) AllEarnings() decimal.Decimal {
	return m.Earnings.Add(m.EtvaEarnings)
}

// AllSecondaryEarnings is secondary earnings including the ETVA share
func (m MemberFinancials) AllSecondaryEarnings() decimal.Decimal {
	return m.SecondaryEarnings.Add(m.SecondaryEtvaEarnings)
}

// ReportedContribution includes inbound transfers
func (m MemberFinancials) ReportedContribution() decimal.Decimal {
	return m.Contributions.Add(m.Xfer)
}

// ReportedMilitary nets outbound transfers out of military for members
func (m MemberFinancials) ReportedMilitary() decimal.Decimal {
	if m.IsEmployee() {
		return m.Military.Sub(m.Pxfer)
	}
	return m.Military
}

// ReportedForfeiture is the allocated forfeiture less forfeitures already taken this year
func (m MemberFinancials) ReportedForfeiture() decimal.Decimal {
	return m.IncomingForfeitures.Sub(m.Forfeits)
}

// EndingBalance applies this year's activity to the beginning balance
func (m MemberFinancials) EndingBalance() decimal.Decimal {
	return m.BeginningBalance.
		Add(m.ReportedContribution()).
		Add(m.AllEarnings()).
		Add(m.AllSecondaryEarnings()).
		Add(m.ReportedForfeiture()).
		Add(m.ReportedMilitary()).
		Add(m.Caf).
		Sub(m.Distributions)
}

// HasActivity reports whether any of the nine reported activity fields is non-zero
func (m MemberFinancials) HasActivity() bool {
	for _, v := range []decimal.Decimal{
		m.BeginningBalance,
		m.Distributions,
		m.Contributions,
		m.Xfer,
		m.Pxfer,
		m.Military,
		m.ReportedForfeiture(),
		m.AllEarnings(),
		m.AllSecondaryEarnings(),
	} {
		if !v.IsZero() {
			return true
		}
	}
	return false
}
