package output

import (
	"sort"
	"time"

	"github.com/rgehrsitz/psupdate/internal/domain"
	"github.com/shopspring/decimal"
)

// Section groups report lines
type Section string

const (
	SectionHeader      Section = "header"
	SectionMember      Section = "member"
	SectionBeneficiary Section = "beneficiary"
	SectionTotals      Section = "totals"
	SectionAdjustment  Section = "adjustment"
)

// LineKind identifies the shape of a line within its section
type LineKind string

const (
	LineTitle            LineKind = "title"
	LineRunInfo          LineKind = "run_info"
	LinePointValues      LineKind = "point_values"
	LineParticipant      LineKind = "participant"
	LineClientTotal      LineKind = "client_total"
	LineGrandTotal       LineKind = "grand_total"
	LineAllocations      LineKind = "allocations"
	LinePoints           LineKind = "points"
	LineEmployeeCount    LineKind = "employee_count"
	LineBeneficiaryCount LineKind = "beneficiary_count"
	LineRerunTotals      LineKind = "rerun_totals"
	LineRerunNotice      LineKind = "rerun_notice"
	LineInvalidRecords   LineKind = "invalid_records"
	LineAdjustInitial    LineKind = "adjustment_initial"
	LineAdjustDelta      LineKind = "adjustment_delta"
	LineAdjustFinal      LineKind = "adjustment_final"
	LineAdjustNotFound   LineKind = "adjustment_not_found"
)

// Trace row labels and fixed messages
const (
	ReportTitle        = "PROFIT SHARING UPDATE (PAY444)"
	RerunMessage       = "A RERUN OF PAY444 IS REQUIRED"
	AdjustmentNotFound = "No adjustment - employee not found."
)

// Columns are the money columns shared by participant and total lines
type Columns struct {
	BeginningBalance  decimal.Decimal `json:"beginning_balance"`
	Contributions     decimal.Decimal `json:"contributions"`
	Earnings          decimal.Decimal `json:"earnings"`
	SecondaryEarnings decimal.Decimal `json:"secondary_earnings"`
	Forfeitures       decimal.Decimal `json:"forfeitures"`
	Distributions     decimal.Decimal `json:"distributions"`
	Military          decimal.Decimal `json:"military"`
	ClassActionFund   decimal.Decimal `json:"class_action_fund"`
	EndingBalance     decimal.Decimal `json:"ending_balance"`
}

// Participant identifies whose line this is
type Participant struct {
	Key  int64  `json:"key"`
	Name string `json:"name"`
	Flag string `json:"flag,omitempty"`
}

// Line is one structured report line. Which fields are set depends on Kind.
type Line struct {
	Section     Section      `json:"section"`
	Kind        LineKind     `json:"kind"`
	Label       string       `json:"label,omitempty"`
	Participant *Participant `json:"participant,omitempty"`
	Columns     *Columns     `json:"columns,omitempty"`

	ContributionPoints int64 `json:"contribution_points,omitempty"`
	EarningPoints      int64 `json:"earning_points,omitempty"`
	Count              int   `json:"count,omitempty"`

	// rerun block
	MaxOverTotal        decimal.Decimal `json:"max_over_total"`
	MaxPointsTotal      int64           `json:"max_points_total,omitempty"`
	MaximumContribution decimal.Decimal `json:"maximum_contribution"`

	// adjustment trace
	Badge          int64 `json:"badge,omitempty"`
	SecondaryBadge int64 `json:"secondary_badge,omitempty"`

	Text string `json:"text,omitempty"`
}

// Meta carries presentation details that are not part of the run outcome
type Meta struct {
	GeneratedAt time.Time
}

// Report is the rendered reconciliation report
type Report struct {
	RunID         string    `json:"run_id"`
	EffectiveYear int       `json:"effective_year"`
	State         string    `json:"state"`
	GeneratedAt   time.Time `json:"generated_at"`
	Lines         []Line    `json:"lines"`
}

// Section returns the lines of one section in order
func (r *Report) Section(s Section) []Line {
	var out []Line
	for _, l := range r.Lines {
		if l.Section == s {
			out = append(out, l)
		}
	}
	return out
}

// Render builds the report from a run outcome. It does not modify outcome.
func Render(outcome *domain.RunOutcome, pv domain.PointValues, meta Meta) *Report {
	r := &Report{
		RunID:         outcome.RunID,
		EffectiveYear: outcome.EffectiveYear,
		State:         string(outcome.State),
		GeneratedAt:   meta.GeneratedAt,
	}

	r.Lines = append(r.Lines,
		Line{Section: SectionHeader, Kind: LineTitle, Text: ReportTitle},
		Line{Section: SectionHeader, Kind: LineRunInfo, Label: outcome.RunID, Count: outcome.EffectiveYear},
		Line{Section: SectionHeader, Kind: LinePointValues, Text: pointValuesText(pv)},
	)

	var c lineCounts
	records := sortedRecords(outcome.Records)
	for _, rec := range records {
		if !rec.IsEmployee() || !rec.HasActivity() {
			continue
		}
		r.Lines = append(r.Lines, participantLine(SectionMember, rec))
		c.members++
	}
	for _, rec := range records {
		if rec.IsEmployee() || !rec.HasActivity() {
			continue
		}
		r.Lines = append(r.Lines, participantLine(SectionBeneficiary, rec))
		c.beneficiaries++
	}

	r.Lines = append(r.Lines, totalsLines(outcome, pv, c)...)
	r.Lines = append(r.Lines, adjustmentLines(outcome.Adjustments, pv)...)
	return r
}

// lineCounts tallies the participant lines actually written; suppressed
// records are not counted.
type lineCounts struct {
	members       int
	beneficiaries int
}

// sortedRecords orders by name (byte-wise), then participant key
func sortedRecords(in []domain.MemberFinancials) []domain.MemberFinancials {
	out := make([]domain.MemberFinancials, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

func participantLine(section Section, rec domain.MemberFinancials) Line {
	return Line{
		Section: section,
		Kind:    LineParticipant,
		Participant: &Participant{
			Key:  rec.Key(),
			Name: rec.Name,
			Flag: flagFor(rec),
		},
		Columns: &Columns{
			BeginningBalance:  rec.BeginningBalance,
			Contributions:     rec.ReportedContribution(),
			Earnings:          rec.AllEarnings(),
			SecondaryEarnings: rec.AllSecondaryEarnings(),
			Forfeitures:       rec.ReportedForfeiture(),
			Distributions:     rec.Distributions,
			Military:          rec.ReportedMilitary(),
			ClassActionFund:   rec.Caf,
			EndingBalance:     rec.EndingBalance(),
		},
	}
}

func flagFor(rec domain.MemberFinancials) string {
	if !rec.IsEmployee() {
		return ""
	}
	switch {
	case rec.EmployeeType == domain.EmployeeTypeAlsoBeneficiary:
		return "BEN"
	case rec.EmployeeType == domain.EmployeeTypeNew:
		return "NEW"
	default:
		return ""
	}
}

func totalColumns(t domain.Totals) *Columns {
	return &Columns{
		BeginningBalance:  t.BeginningBalance,
		Contributions:     t.Contributions,
		Earnings:          t.Earnings,
		SecondaryEarnings: t.SecondaryEarnings,
		Forfeitures:       t.Forfeitures,
		Distributions:     t.Distributions,
		Military:          t.Military,
		ClassActionFund:   t.ClassActionFund,
		EndingBalance:     t.EndingBalance,
	}
}

func totalsLines(outcome *domain.RunOutcome, pv domain.PointValues, c lineCounts) []Line {
	var lines []Line
	batches := outcome.ClientBatches
	if len(batches) == 0 {
		batches = []domain.Totals{outcome.GrandTotals}
	}
	for i, b := range batches {
		lines = append(lines, Line{
			Section: SectionTotals,
			Kind:    LineClientTotal,
			Label:   "CLIENT TOTAL",
			Count:   i + 1,
			Columns: totalColumns(b),
		})
	}
	if len(batches) > 1 {
		lines = append(lines, Line{
			Section: SectionTotals,
			Kind:    LineGrandTotal,
			Label:   "GRAND TOTAL",
			Columns: totalColumns(outcome.GrandTotals),
		})
	}

	g := outcome.GrandTotals
	lines = append(lines,
		Line{
			Section: SectionTotals,
			Kind:    LineAllocations,
			Label:   "ALLOC",
			Columns: &Columns{
				Contributions: g.Allocations,
				Military:      g.PaidAllocations,
				EndingBalance: g.Allocations.Add(g.PaidAllocations),
			},
		},
		Line{
			Section:            SectionTotals,
			Kind:               LinePoints,
			Label:              "POINT",
			ContributionPoints: g.ContributionPoints,
			EarningPoints:      g.EarningPoints,
		},
		Line{Section: SectionTotals, Kind: LineEmployeeCount, Label: "TOTAL EMPLOYEES", Count: c.members},
		Line{Section: SectionTotals, Kind: LineBeneficiaryCount, Label: "TOTAL BENEFICIARIES", Count: c.beneficiaries},
		Line{
			Section:             SectionTotals,
			Kind:                LineRerunTotals,
			Label:               "RERUN TOTALS",
			MaxOverTotal:        g.MaxOverTotal,
			MaxPointsTotal:      g.MaxPointsTotal,
			MaximumContribution: pv.MaximumContribution,
		},
	)

	if outcome.RerunRequired {
		lines = append(lines, Line{Section: SectionTotals, Kind: LineRerunNotice, Text: RerunMessage})
	}
	if outcome.InvalidRecordCount > 0 {
		lines = append(lines, Line{
			Section: SectionTotals,
			Kind:    LineInvalidRecords,
			Label:   "INVALID RECORDS",
			Count:   outcome.InvalidRecordCount,
			Text:    keysText(outcome.SkippedKeys()),
		})
	}
	return lines
}

func adjustmentLines(adj domain.AdjustmentsApplied, pv domain.PointValues) []Line {
	if !pv.HasAdjustment() {
		return nil
	}

	var lines []Line
	if adj.Matched || adj.SecondaryMatched {
		initial := &Columns{}
		delta := &Columns{}
		final := &Columns{}
		if adj.Matched {
			initial.Contributions, delta.Contributions, final.Contributions =
				adj.ContributionUnadjusted, pv.Adjustment.Contribution, adj.ContributionAdjusted
			initial.Forfeitures, delta.Forfeitures, final.Forfeitures =
				adj.ForfeitureUnadjusted, pv.Adjustment.Forfeiture, adj.ForfeitureAdjusted
			initial.Earnings, delta.Earnings, final.Earnings =
				adj.EarningsUnadjusted, pv.Adjustment.Earnings, adj.EarningsAdjusted
		}
		if adj.SecondaryMatched {
			initial.SecondaryEarnings, delta.SecondaryEarnings, final.SecondaryEarnings =
				adj.SecondaryUnadjusted, pv.SecondaryAdjustment.Earnings, adj.SecondaryAdjusted
		}

		for _, row := range []struct {
			kind  LineKind
			label string
			cols  *Columns
		}{
			{LineAdjustInitial, "INITIAL", initial},
			{LineAdjustDelta, "ADJUSTMENT", delta},
			{LineAdjustFinal, "FINAL", final},
		} {
			lines = append(lines, Line{
				Section:        SectionAdjustment,
				Kind:           row.kind,
				Label:          row.label,
				Badge:          matchedBadge(adj.Matched, pv.Adjustment.Badge),
				SecondaryBadge: matchedBadge(adj.SecondaryMatched, pv.SecondaryAdjustment.Badge),
				Columns:        row.cols,
			})
		}
	}

	if pv.Adjustment.Badge > 0 && !adj.Matched {
		lines = append(lines, Line{
			Section: SectionAdjustment,
			Kind:    LineAdjustNotFound,
			Badge:   pv.Adjustment.Badge,
			Text:    AdjustmentNotFound,
		})
	}
	if pv.SecondaryAdjustment.Badge > 0 && !adj.SecondaryMatched {
		lines = append(lines, Line{
			Section:        SectionAdjustment,
			Kind:           LineAdjustNotFound,
			SecondaryBadge: pv.SecondaryAdjustment.Badge,
			Text:           AdjustmentNotFound,
		})
	}
	return lines
}

func matchedBadge(matched bool, badge int64) int64 {
	if matched {
		return badge
	}
	return 0
}
