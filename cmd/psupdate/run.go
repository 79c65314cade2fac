package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rgehrsitz/psupdate/internal/calculation"
	"github.com/rgehrsitz/psupdate/internal/config"
	"github.com/rgehrsitz/psupdate/internal/metrics"
	"github.com/rgehrsitz/psupdate/internal/output"
	"github.com/rgehrsitz/psupdate/internal/store"
	"github.com/spf13/cobra"
)

type runOptions struct {
	configFile  string
	dbPath      string
	format      string
	outputFile  string
	commit      bool
	metricsFile string
	logLevel    string
	quiet       bool
}

func runCmd(env config.Env) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the year-end allocation and print the reconciliation report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(contextOf(cmd), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Run configuration YAML file")
	cmd.Flags().StringVar(&opts.dbPath, "db", env.DBPath, "SQLite database path")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Report format: "+strings.Join(output.FormatterNames(), ", "))
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.commit, "commit", false, "Persist allocations when the run completes")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", env.MetricsFile, "Write Prometheus textfile metrics here")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", env.LogLevel, "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress the banner")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func executeRun(ctx context.Context, stdout, stderr io.Writer, opts *runOptions) error {
	formatter := output.GetFormatterByName(opts.format)
	if formatter == nil {
		return &exitError{code: exitConfigError, err: fmt.Errorf("unknown format %q", opts.format)}
	}

	logger, err := newLogger(stderr, opts.logLevel)
	if err != nil {
		return &exitError{code: exitConfigError, err: fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)}
	}

	cfg, err := config.NewInputParser().LoadFromFile(opts.configFile)
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			return &exitError{code: exitConfigError, err: err}
		}
		return err
	}

	if !opts.quiet {
		fmt.Fprintln(stderr, banner(cfg.EffectiveYear, cfg.SpecialRun))
	}

	st, err := store.Open(ctx, opts.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	memberRows, err := st.MemberRows(ctx)
	if err != nil {
		return err
	}
	beneficiaryRows, err := st.BeneficiaryRows(ctx)
	if err != nil {
		return err
	}
	logger.Debugf("loaded %d member rows and %d beneficiary rows from %s",
		len(memberRows), len(beneficiaryRows), opts.dbPath)

	reg := metrics.NewRegistry()
	engine := calculation.NewEngine(st)
	engine.SetLogger(logger)
	engine.SetRecorder(reg)

	outcome, runErr := engine.Run(ctx,
		calculation.NewSliceMemberSource(memberRows),
		calculation.NewSliceBeneficiarySource(beneficiaryRows),
		*cfg)

	if opts.metricsFile != "" {
		if err := reg.WriteTextfile(opts.metricsFile); err != nil {
			logger.Warnf("failed to write metrics: %v", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, config.ErrInvalidConfig) {
			return &exitError{code: exitConfigError, err: runErr}
		}
		return runErr
	}

	report := output.Render(outcome, calculation.EffectivePointValues(*cfg), output.Meta{GeneratedAt: time.Now()})
	if err := output.WriteFormatted(formatter, report, opts.outputFile, stdout); err != nil {
		return err
	}

	if outcome.RerunRequired {
		if opts.commit {
			logger.Warnf("run %s not committed: %s", outcome.RunID, output.RerunMessage)
		}
		return &exitError{
			code: exitRerun,
			err: fmt.Errorf("%s: %s over the maximum contribution",
				output.RerunMessage, outcome.GrandTotals.MaxOverTotal.StringFixed(2)),
		}
	}

	if opts.commit {
		if err := st.CommitRun(ctx, outcome); err != nil {
			return err
		}
		logger.Infof("run %s committed", outcome.RunID)
	}
	return nil
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a run configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				if errors.Is(err, config.ErrInvalidConfig) {
					return &exitError{code: exitConfigError, err: err}
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid (profit year %d)\n", args[0], cfg.EffectiveYear)
			return nil
		},
	}
}

func initDBCmd(env config.Env) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(contextOf(cmd), dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is ready\n", dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", env.DBPath, "SQLite database path")
	return cmd
}

func importCmd(env config.Env) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import [dataset-file]",
		Short: "Load members, beneficiaries and ledgers from a YAML dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := store.LoadDataset(args[0])
			if err != nil {
				return err
			}
			ctx := contextOf(cmd)
			st, err := store.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Import(ctx, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d member rows, %d beneficiaries, %d ledgers into %s\n",
				len(ds.Members), len(ds.Beneficiaries), len(ds.Ledgers), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", env.DBPath, "SQLite database path")
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
