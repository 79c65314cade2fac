package domain

import (
	"github.com/shopspring/decimal"
)

// Adjustment is a manual correction applied to exactly one badge
type Adjustment struct {
	Badge        int64           `yaml:"badge" json:"badge"`
	Contribution decimal.Decimal `yaml:"contribution" json:"contribution"`
	Forfeiture   decimal.Decimal `yaml:"forfeiture" json:"forfeiture"`
	Earnings     decimal.Decimal `yaml:"earnings" json:"earnings"`
}

// SecondaryAdjustment corrects secondary earnings for one badge, which may
// differ from the primary adjustment badge.
type SecondaryAdjustment struct {
	Badge    int64           `yaml:"badge" json:"badge"`
	Earnings decimal.Decimal `yaml:"earnings" json:"earnings"`
}

// PointValues holds the per-run rates and adjustment targets. It is treated as
// immutable once a run starts.
type PointValues struct {
	ContributionRate      decimal.Decimal     `yaml:"contribution_rate" json:"contribution_rate"`
	ForfeitureRate        decimal.Decimal     `yaml:"forfeiture_rate" json:"forfeiture_rate"`
	EarningsRate          decimal.Decimal     `yaml:"earnings_rate" json:"earnings_rate"`
	SecondaryEarningsRate decimal.Decimal     `yaml:"secondary_earnings_rate" json:"secondary_earnings_rate"`
	MaximumContribution   decimal.Decimal     `yaml:"maximum_contribution" json:"maximum_contribution"`
	Adjustment            Adjustment          `yaml:"adjustment" json:"adjustment"`
	SecondaryAdjustment   SecondaryAdjustment `yaml:"secondary_adjustment" json:"secondary_adjustment"`
}

// SecondaryEnabled reports whether secondary earnings are processed this run
func (pv PointValues) SecondaryEnabled() bool {
	return !pv.SecondaryEarningsRate.IsZero()
}

// AdjustsBadge reports whether the primary adjustment targets badge
func (pv PointValues) AdjustsBadge(badge int64) bool {
	return pv.Adjustment.Badge > 0 && pv.Adjustment.Badge == badge
}

// AdjustsSecondaryBadge reports whether the secondary adjustment targets badge
func (pv PointValues) AdjustsSecondaryBadge(badge int64) bool {
	return pv.SecondaryAdjustment.Badge > 0 && pv.SecondaryAdjustment.Badge == badge
}

// HasAdjustment reports whether any manual adjustment was configured
func (pv PointValues) HasAdjustment() bool {
	return pv.Adjustment.Badge > 0 || pv.SecondaryAdjustment.Badge > 0
}

// RunConfig is the complete configuration of one allocation run
type RunConfig struct {
	EffectiveYear int         `yaml:"effective_year" json:"effective_year"`
	SpecialRun    bool        `yaml:"special_run" json:"special_run"`
	PageSize      int         `yaml:"page_size" json:"page_size"`
	PointValues   PointValues `yaml:"point_values" json:"point_values"`
}

// AdjustmentsApplied records before/after values for the adjustment trace
type AdjustmentsApplied struct {
	Matched                bool            `json:"matched"`
	SecondaryMatched       bool            `json:"secondary_matched"`
	ContributionUnadjusted decimal.Decimal `json:"contribution_unadjusted"`
	ContributionAdjusted   decimal.Decimal `json:"contribution_adjusted"`
	ForfeitureUnadjusted   decimal.Decimal `json:"forfeiture_unadjusted"`
	ForfeitureAdjusted     decimal.Decimal `json:"forfeiture_adjusted"`
	EarningsUnadjusted     decimal.Decimal `json:"earnings_unadjusted"`
	EarningsAdjusted       decimal.Decimal `json:"earnings_adjusted"`
	SecondaryUnadjusted    decimal.Decimal `json:"secondary_unadjusted"`
	SecondaryAdjusted      decimal.Decimal `json:"secondary_adjusted"`
}
