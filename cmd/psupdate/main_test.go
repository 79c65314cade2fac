package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/psupdate/internal/config"
	"github.com/rgehrsitz/psupdate/internal/output"
	"github.com/rgehrsitz/psupdate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDataset = `
members:
  - badge: 1001
    ssn: 111000001
    name: ALPHA, ANN
    points: 1000
    beginning_balance: "1000.00"
    years_in_plan: 3
    enrolled: true
  - badge: 1002
    ssn: 111000002
    name: BRAVO, BOB
    points: 500
    beginning_balance: "0"
    enrolled: true
beneficiaries:
  - psn: 5000001
    ssn: 222000001
    name: CHARLIE, CAT
    beginning_balance: "400.00"
ledgers:
  - ssn: 111000001
    kind: member
    rows:
      - profit_year: 2023
        code: "0"
        contribution: "40.00"
  - ssn: 111000002
    kind: member
  - ssn: 222000001
    kind: beneficiary
`

func runConfigYAML(maximum string) string {
	return fmt.Sprintf(`
effective_year: 2024
page_size: 100
point_values:
  contribution_rate: "0.05"
  forfeiture_rate: "0.02"
  earnings_rate: "0.10"
  maximum_contribution: "%s"
`, maximum)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// seededDB imports the test dataset into a fresh database
func seededDB(t *testing.T) (dir, dbPath string) {
	t.Helper()
	dir = t.TempDir()
	dbPath = filepath.Join(dir, "psupdate.db")
	dataset := writeFile(t, dir, "dataset.yaml", testDataset)

	out, _, err := execute(t, "import", dataset, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 member rows, 1 beneficiaries, 3 ledgers")
	return dir, dbPath
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "psupdate", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "validate", "init-db", "import", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "psupdate dev")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitConfigError, exitCode(fmt.Errorf("wrapped: %w", config.ErrInvalidConfig)))
	assert.Equal(t, exitRerun, exitCode(&exitError{code: exitRerun, err: errors.New("rerun")}))
	assert.Equal(t, exitRerun, exitCode(fmt.Errorf("outer: %w", &exitError{code: exitRerun, err: errors.New("rerun")})))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	good := writeFile(t, dir, "good.yaml", runConfigYAML("57000"))
	out, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (profit year 2024)")

	bad := writeFile(t, dir, "bad.yaml", runConfigYAML("0"))
	_, _, err = execute(t, "validate", bad)
	require.Error(t, err)
	assert.Equal(t, exitConfigError, exitCode(err))

	_, _, err = execute(t, "validate", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestInitDBCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "psupdate.db")
	out, _, err := execute(t, "init-db", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is ready")
	assert.FileExists(t, dbPath)
}

func TestRunCommandCompleteAndCommit(t *testing.T) {
	dir, dbPath := seededDB(t)
	cfg := writeFile(t, dir, "run.yaml", runConfigYAML("57000"))

	out, stderr, err := execute(t, "run", "--config", cfg, "--db", dbPath, "--format", "json", "--commit", "--quiet")
	require.NoError(t, err, stderr)

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "COMPLETE", report.State)
	assert.Len(t, report.Section(output.SectionMember), 2)
	assert.Len(t, report.Section(output.SectionBeneficiary), 1)
	assert.Contains(t, stderr, "committed")

	st, err := store.Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer st.Close()

	rec, err := st.Run(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2024, rec.EffectiveYear)
	assert.Equal(t, 3, rec.RecordCount)
	assert.Equal(t, 2, rec.Totals.Members)
}

func TestRunCommandRerunRequired(t *testing.T) {
	dir, dbPath := seededDB(t)
	cfg := writeFile(t, dir, "run.yaml", runConfigYAML("60"))
	metricsFile := filepath.Join(dir, "psupdate.prom")

	out, stderr, err := execute(t, "run", "--config", cfg, "--db", dbPath, "--commit", "--metrics-file", metricsFile)
	require.Error(t, err)
	assert.Equal(t, exitRerun, exitCode(err))
	assert.Contains(t, err.Error(), output.RerunMessage)

	assert.Contains(t, out, output.RerunMessage)
	assert.Contains(t, stderr, "not committed")
	assert.Contains(t, stderr, "psupdate dev")

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "psupdate_rerun_required 1")
}

func TestRunCommandWritesOutputFile(t *testing.T) {
	dir, dbPath := seededDB(t)
	cfg := writeFile(t, dir, "run.yaml", runConfigYAML("57000"))
	reportFile := filepath.Join(dir, "report.csv")

	out, _, err := execute(t, "run", "-c", cfg, "--db", dbPath, "-f", "csv", "-o", reportFile, "-q")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ALPHA, ANN")
}

func TestRunCommandRejectsBadInput(t *testing.T) {
	dir, dbPath := seededDB(t)
	cfg := writeFile(t, dir, "run.yaml", runConfigYAML("57000"))

	_, _, err := execute(t, "run", "--config", cfg, "--db", dbPath, "--format", "html")
	require.Error(t, err)
	assert.Equal(t, exitConfigError, exitCode(err))

	_, _, err = execute(t, "run", "--config", cfg, "--db", dbPath, "--log-level", "loud")
	require.Error(t, err)
	assert.Equal(t, exitConfigError, exitCode(err))

	bad := writeFile(t, dir, "bad.yaml", "effective_year: 12\n")
	_, _, err = execute(t, "run", "--config", bad, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, exitConfigError, exitCode(err))

	_, _, err = execute(t, "run", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn")
	require.NoError(t, err)

	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)
	logger.Errorf("also shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "also shown")

	_, err = newLogger(&buf, "nope")
	assert.Error(t, err)
}
