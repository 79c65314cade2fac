package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/psupdate/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Process exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 2
	exitRerun       = 3
)

// exitError carries the process exit code alongside the cause
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, config.ErrInvalidConfig) {
		return exitConfigError
	}
	return exitFailure
}

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("63")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 1)

func banner(year int, special bool) string {
	kind := "regular run"
	if special {
		kind = "special run"
	}
	return bannerStyle.Render(fmt.Sprintf("psupdate %s  profit year %d  %s", version, year, kind))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "psupdate %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

func newRootCmd() *cobra.Command {
	env := config.LoadEnv()

	root := &cobra.Command{
		Use:   "psupdate",
		Short: "Year-end profit sharing allocation",
		Long: "Allocates the year's contribution, forfeiture and earnings pools to plan members and\n" +
			"beneficiaries, caps members at the maximum contribution and prints the reconciliation report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		runCmd(env),
		validateCmd(),
		initDBCmd(env),
		importCmd(env),
		versionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
