package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rgehrsitz/psupdate/internal/domain"
)

// Formatter renders a report in one output format
type Formatter interface {
	Name() string
	Format(report *Report) ([]byte, error)
}

// FormatterFunc adapts a function to Formatter
type FormatterFunc struct {
	ID string
	F  func(report *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *Report) ([]byte, error) { return f.F(report) }

// GetFormatterByName returns the formatter for name, or nil if unknown
func GetFormatterByName(name string) Formatter {
	switch strings.ToLower(name) {
	case "text", "console", "txt", "":
		return TextFormatter{}
	case "json":
		return JSONFormatter{Indent: true}
	case "csv":
		return CSVFormatter{}
	default:
		return nil
	}
}

// FormatterNames lists the accepted format names
func FormatterNames() []string {
	return []string{"text", "json", "csv"}
}

// WriteFormatted formats report and writes it to path, or to stdout when
// path is empty or "-".
func WriteFormatted(f Formatter, report *Report, path string, stdout io.Writer) error {
	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	if path == "" || path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func pointValuesText(pv domain.PointValues) string {
	s := fmt.Sprintf("CONT %s  FORF %s  EARN %s", pv.ContributionRate.StringFixed(6),
		pv.ForfeitureRate.StringFixed(6), pv.EarningsRate.StringFixed(6))
	if pv.SecondaryEnabled() {
		s += "  EARN2 " + pv.SecondaryEarningsRate.StringFixed(6)
	}
	return s + "  MAX " + pv.MaximumContribution.StringFixed(2)
}

func keysText(keys []int64) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.FormatInt(k, 10)
	}
	return strings.Join(parts, ",")
}
