package domain

import (
	"github.com/shopspring/decimal"
)

// ParticipantKind selects which computation path a participant takes
type ParticipantKind int

const (
	KindMember ParticipantKind = iota
	KindBeneficiary
)

func (k ParticipantKind) String() string {
	switch k {
	case KindMember:
		return "member"
	case KindBeneficiary:
		return "beneficiary"
	default:
		return "unknown"
	}
}

// EmployeeType mirrors the new-employee flag carried on the profile record
type EmployeeType int

const (
	EmployeeTypeNormal          EmployeeType = 0
	EmployeeTypeNew             EmployeeType = 1
	EmployeeTypeAlsoBeneficiary EmployeeType = 2
)

// MemberRow is one raw profile row. Several rows may share an SSN; they are
// summed into a single ParticipantPoints before computation.
type MemberRow struct {
	Badge             int64           `yaml:"badge" json:"badge" db:"badge"`
	SSN               int64           `yaml:"ssn" json:"ssn" db:"ssn"`
	Name              string          `yaml:"name" json:"name" db:"name"`
	Points            int64           `yaml:"points" json:"points" db:"points"`
	BeginningBalance  decimal.Decimal `yaml:"beginning_balance" json:"beginning_balance" db:"beginning_balance"`
	PriorEtva         decimal.Decimal `yaml:"prior_etva" json:"prior_etva" db:"prior_etva"`
	YearsInPlan       int             `yaml:"years_in_plan" json:"years_in_plan" db:"years_in_plan"`
	EmployeeType      EmployeeType    `yaml:"employee_type" json:"employee_type" db:"employee_type"`
	Enrolled          bool            `yaml:"enrolled" json:"enrolled" db:"enrolled"`
	PriorContribution decimal.Decimal `yaml:"prior_contribution" json:"prior_contribution" db:"prior_contribution"`
	PriorForfeiture   decimal.Decimal `yaml:"prior_forfeiture" json:"prior_forfeiture" db:"prior_forfeiture"`
}

// BeneficiaryRow is one payee record from the beneficiary stream
type BeneficiaryRow struct {
	PSN              int64           `yaml:"psn" json:"psn" db:"psn"`
	SSN              int64           `yaml:"ssn" json:"ssn" db:"ssn"`
	Name             string          `yaml:"name" json:"name" db:"name"`
	BeginningBalance decimal.Decimal `yaml:"beginning_balance" json:"beginning_balance" db:"beginning_balance"`
}

// ParticipantPoints is the summed view of one participant for the effective year.
// ParticipantKey is the badge for members and 0 for beneficiaries.
type ParticipantPoints struct {
	Kind              ParticipantKind
	ParticipantKey    int64
	SSN               int64
	PSN               int64
	Name              string
	TotalPoints       int64
	BeginningBalance  decimal.Decimal
	PriorEtva         decimal.Decimal
	YearsInPlan       int
	EmployeeType      EmployeeType
	Enrolled          bool
	PriorContribution decimal.Decimal
	PriorForfeiture   decimal.Decimal
	RowCount          int
}

// Accumulate folds another profile row for the same SSN into p.
// Identity fields follow the most recent row.
func (p *ParticipantPoints) Accumulate(row MemberRow) {
	p.Kind = KindMember
	p.ParticipantKey = row.Badge
	p.SSN = row.SSN
	p.Name = row.Name
	p.TotalPoints += row.Points
	p.BeginningBalance = p.BeginningBalance.Add(row.BeginningBalance)
	p.PriorEtva = row.PriorEtva
	p.YearsInPlan = row.YearsInPlan
	p.EmployeeType = row.EmployeeType
	p.Enrolled = row.Enrolled
	p.PriorContribution = row.PriorContribution
	p.PriorForfeiture = row.PriorForfeiture
	p.RowCount++
}

// IsEligible reports whether a member participates in this year's allocation at all.
// Beneficiaries are always eligible.
func (p ParticipantPoints) IsEligible() bool {
	if p.Kind == KindBeneficiary {
		return true
	}
	return p.Enrolled ||
		p.EmployeeType > EmployeeTypeNormal ||
		p.BeginningBalance.GreaterThan(decimal.Zero) ||
		p.YearsInPlan > 0
}

// BeneficiaryPoints builds the participant view of a payee record
func BeneficiaryPoints(row BeneficiaryRow) ParticipantPoints {
	return ParticipantPoints{
		Kind:             KindBeneficiary,
		SSN:              row.SSN,
		PSN:              row.PSN,
		Name:             row.Name,
		BeginningBalance: row.BeginningBalance,
		RowCount:         1,
	}
}
