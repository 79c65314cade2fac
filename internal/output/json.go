package output

import (
	json "github.com/goccy/go-json"
)

// JSONFormatter emits the structured line objects for downstream consumers
type JSONFormatter struct {
	Indent bool
}

func (JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *Report) ([]byte, error) {
	if j.Indent {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}
