package domain

import (
	"github.com/shopspring/decimal"
)

// Profit codes carried on ledger detail rows
const (
	CodeContribution       byte = '0'
	CodePartialWithdrawal  byte = '1'
	CodeForfeiture         byte = '2'
	CodeDirectPayment      byte = '3'
	CodeOutgoingXferBene   byte = '5'
	CodeIncomingQDROBene   byte = '6'
	CodeEarnings           byte = '8'
	CodeFullyVestedPayment byte = '9'
)

// Year extensions distinguish regular, military and class-action-fund rows
const (
	ExtensionRegular  = 0
	ExtensionMilitary = 1
	ExtensionCAF      = 2
)

// ProfitDetail is one ledger detail row for a participant
type ProfitDetail struct {
	SSN           int64           `yaml:"ssn" json:"ssn" db:"ssn"`
	ProfitYear    int             `yaml:"profit_year" json:"profit_year" db:"profit_year"`
	YearExtension int             `yaml:"year_extension" json:"year_extension" db:"year_extension"`
	Code          string          `yaml:"code" json:"code" db:"code"`
	Contribution  decimal.Decimal `yaml:"contribution" json:"contribution" db:"contribution"`
	Earnings      decimal.Decimal `yaml:"earnings" json:"earnings" db:"earnings"`
	Forfeiture    decimal.Decimal `yaml:"forfeiture" json:"forfeiture" db:"forfeiture"`
	Remark        string          `yaml:"remark" json:"remark" db:"remark"`
}

// CodeByte returns the single-character transaction code, or 0 when absent
func (pd ProfitDetail) CodeByte() byte {
	if pd.Code == "" {
		return 0
	}
	return pd.Code[0]
}

// LedgerTotals are a participant's running totals for the effective year only
type LedgerTotals struct {
	DistributionTotal       decimal.Decimal `json:"distribution_total"`
	ForfeitureTotal         decimal.Decimal `json:"forfeiture_total"`
	AllocationTotal         decimal.Decimal `json:"allocation_total"`
	PriorAllocationTotal    decimal.Decimal `json:"prior_allocation_total"`
	MilitaryContribution    decimal.Decimal `json:"military_contribution"`
	ClassActionFundEarnings decimal.Decimal `json:"class_action_fund_earnings"`
}
