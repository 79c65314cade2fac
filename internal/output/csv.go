package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/shopspring/decimal"
)

// CSVFormatter writes one row per report line
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"Section", "Kind", "Label", "Key", "Name", "Flag",
		"BeginningBalance", "Contributions", "Earnings", "SecondaryEarnings", "Forfeitures",
		"Distributions", "Military", "ClassActionFund", "EndingBalance",
		"ContributionPoints", "EarningPoints", "Count", "Text",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, l := range report.Lines {
		row := []string{string(l.Section), string(l.Kind), l.Label, "", "", ""}
		if l.Participant != nil {
			row[3] = strconv.FormatInt(l.Participant.Key, 10)
			row[4] = l.Participant.Name
			row[5] = l.Participant.Flag
		}
		row = append(row, csvColumns(l.Columns)...)
		row = append(row,
			strconv.FormatInt(l.ContributionPoints, 10),
			strconv.FormatInt(l.EarningPoints, 10),
			strconv.Itoa(l.Count),
			l.Text,
		)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvColumns(c *Columns) []string {
	if c == nil {
		return make([]string, 9)
	}
	out := make([]string, 0, 9)
	for _, v := range []decimal.Decimal{
		c.BeginningBalance, c.Contributions, c.Earnings, c.SecondaryEarnings, c.Forfeitures,
		c.Distributions, c.Military, c.ClassActionFund, c.EndingBalance,
	} {
		out = append(out, v.StringFixed(2))
	}
	return out
}
