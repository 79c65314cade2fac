package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultPageLines = 60
	nameWidth        = 24
	moneyWidth       = 14
)

var columnTitles = []string{
	"BEG BALANCE", "CONTRIB", "EARNINGS", "EARNINGS2", "FORFEITS",
	"DISTRIB", "MILITARY", "CAF", "END BALANCE",
}

var sectionTitles = map[Section]string{
	SectionMember:      "EMPLOYEES",
	SectionBeneficiary: "BENEFICIARIES",
	SectionTotals:      "TOTALS",
	SectionAdjustment:  "ADJUSTMENT REPORT",
}

// TextFormatter renders the fixed-width paginated listing
type TextFormatter struct {
	// PageLines is the physical page length including the page header; 0 means 60
	PageLines int
}

func (TextFormatter) Name() string { return "text" }

func (t TextFormatter) Format(report *Report) ([]byte, error) {
	pageLines := t.PageLines
	if pageLines <= 0 {
		pageLines = defaultPageLines
	}

	var title, runInfo, pointValues string
	var body []string
	var current Section
	for _, l := range report.Lines {
		switch l.Kind {
		case LineTitle:
			title = l.Text
			continue
		case LineRunInfo:
			runInfo = fmt.Sprintf("EFFECTIVE YEAR %d  RUN %s  %s", l.Count, l.Label, report.State)
			continue
		case LinePointValues:
			pointValues = l.Text
			continue
		}
		if l.Section != current {
			current = l.Section
			body = append(body, "", sectionTitles[current])
		}
		body = append(body, formatTextLine(l))
	}

	header := func(page int) []string {
		return []string{
			fmt.Sprintf("%-100s PAGE %4d", title, page),
			runInfo,
			pointValues,
			columnHeader(),
			strings.Repeat("-", len(columnHeader())),
		}
	}

	perPage := pageLines - len(header(1))
	if perPage < 1 {
		return nil, fmt.Errorf("page length %d leaves no room below the page header", pageLines)
	}

	var buf bytes.Buffer
	page := 0
	for start := 0; start == 0 || start < len(body); start += perPage {
		page++
		if page > 1 {
			buf.WriteString("\f")
		}
		for _, h := range header(page) {
			buf.WriteString(strings.TrimRight(h, " "))
			buf.WriteByte('\n')
		}
		end := start + perPage
		if end > len(body) {
			end = len(body)
		}
		for _, line := range body[start:end] {
			buf.WriteString(strings.TrimRight(line, " "))
			buf.WriteByte('\n')
		}
		if len(body) == 0 {
			break
		}
	}
	return buf.Bytes(), nil
}

func columnHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%11s %-*s %-3s", "BADGE/PSN", nameWidth, "NAME", "")
	for _, c := range columnTitles {
		fmt.Fprintf(&b, "%*s", moneyWidth, c)
	}
	return b.String()
}

func formatTextLine(l Line) string {
	switch l.Kind {
	case LineParticipant:
		return fmt.Sprintf("%11d %-*s %-3s%s", l.Participant.Key, nameWidth,
			truncate(l.Participant.Name, nameWidth), l.Participant.Flag, moneyColumns(l.Columns))
	case LineClientTotal:
		return fmt.Sprintf("%-*s%s", 40, fmt.Sprintf("%s %d", l.Label, l.Count), moneyColumns(l.Columns))
	case LineGrandTotal, LineAllocations:
		return fmt.Sprintf("%-*s%s", 40, l.Label, moneyColumns(l.Columns))
	case LinePoints:
		return fmt.Sprintf("%-*s%*s%*d%*d", 40, l.Label, moneyWidth, "",
			moneyWidth, l.ContributionPoints, moneyWidth, l.EarningPoints)
	case LineEmployeeCount, LineBeneficiaryCount:
		return fmt.Sprintf("%-*s%*d", 40, l.Label, moneyWidth, l.Count)
	case LineRerunTotals:
		return fmt.Sprintf("%-*sOVER %s  POINTS %d  MAX %s", 40, l.Label,
			l.MaxOverTotal.StringFixed(2), l.MaxPointsTotal, l.MaximumContribution.StringFixed(2))
	case LineInvalidRecords:
		return fmt.Sprintf("%-*s%*d  %s", 40, l.Label, moneyWidth, l.Count, l.Text)
	case LineAdjustInitial, LineAdjustDelta, LineAdjustFinal:
		return fmt.Sprintf("%-12s BADGE %-9d BADGE2 %-9d%s", l.Label, l.Badge, l.SecondaryBadge, moneyColumns(l.Columns))
	case LineAdjustNotFound:
		badge := l.Badge
		if badge == 0 {
			badge = l.SecondaryBadge
		}
		return fmt.Sprintf("BADGE %d: %s", badge, l.Text)
	default:
		return l.Text
	}
}

func moneyColumns(c *Columns) string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	for _, v := range []decimal.Decimal{
		c.BeginningBalance, c.Contributions, c.Earnings, c.SecondaryEarnings, c.Forfeitures,
		c.Distributions, c.Military, c.ClassActionFund, c.EndingBalance,
	} {
		fmt.Fprintf(&b, "%*s", moneyWidth, v.StringFixed(2))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
