package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/whispr-dev/caca/internal/apperr"
	"github.com/whispr-dev/caca/internal/bitfield"
	"github.com/whispr-dev/caca/internal/ca"
	"github.com/whispr-dev/caca/internal/config"
	"github.com/whispr-dev/caca/internal/cpufeat"
	"github.com/whispr-dev/caca/internal/nist"
	"github.com/whispr-dev/caca/internal/progress"
	"github.com/whispr-dev/caca/internal/report"
	"github.com/whispr-dev/caca/internal/runner"
)

// Exit codes per spec.md §6: 0 all selected tests passed, 1 at least one
// selected test failed, 2 configuration error, 3 run aborted
// (WorkerFailed or Cancelled).
const (
	exitOK          = 0
	exitSomeFailed  = 1
	exitConfigError = 2
	exitAborted     = 3
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caca <input_file>",
		Short: "Analyze binary data for deviations from randomness via CA transform + NIST SP 800-22",
		Long: `caca runs a cellular-automaton transform over an input file and then the
NIST SP 800-22 statistical test battery over the result, reporting a
pass/fail verdict per test against a configurable significance level.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

// Execute wires the CLI collaborator per SPEC_FULL.md §2: detector ->
// config -> BitField -> CAProcessor -> TestRunner -> report, and maps
// the outcome to an exit code.
func Execute() int {
	cmd := newRootCmd()
	var code int
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		code = runMain(cmd, args)
		return nil
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}
	return code
}

// runMain resolves the input file from spec.md §6's positional
// <input_file> argument, falling back to the --input flag only as an
// additional convenience when no positional argument is given.
func runMain(cmd *cobra.Command, args []string) int {
	if len(args) == 1 {
		if err := cmd.Flags().Set("input", args[0]); err != nil {
			fmt.Fprintln(os.Stderr, "caca:", err)
			return exitConfigError
		}
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		fmt.Fprintln(os.Stderr, "caca:", err)
		return exitConfigError
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "caca:", err)
		return exitConfigError
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("received interrupt, cancelling run")
		cancel()
	}()

	raw, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "caca:", err)
		return exitConfigError
	}

	// The CPU-feature detector is called exactly once here; the token it
	// returns is passed straight to ca.NewProcessor and is never
	// re-queried, per spec.md §9's "no hidden globals" redesign note.
	tier := cpufeat.Detector{}.Detect()
	logger.Debug("detected vector tier", zap.String("tier", tier.String()))

	field := bitfield.FromBytes(raw)
	sink := progress.NewAsync(progress.Zap{Logger: logger})
	defer sink.Close()

	processor := ca.NewProcessor(field, cfg.Rule, cfg.Neighborhood, tier,
		ca.WithThreads(cfg.Threads),
		ca.WithWidth(cfg.Width),
		ca.WithProgressSink(sink),
	)
	transformed, err := processor.Run(ctx, cfg.Iterations)
	if err != nil {
		fmt.Fprintln(os.Stderr, "caca:", err)
		if apperr.Is(err, apperr.Cancelled) {
			writeReportIfRequested(cfg, nil, logger)
			return exitAborted
		}
		return exitAborted
	}

	run, err := runner.New(cfg.Alpha, cfg.Tests, runner.WithProgressSink(sink))
	if err != nil {
		fmt.Fprintln(os.Stderr, "caca:", err)
		return exitConfigError
	}
	results, err := run.Run(ctx, transformed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "caca:", err)
		writeReportIfRequested(cfg, results, logger)
		return exitAborted
	}

	rec := report.NewRecord(results)
	report.RenderTable(os.Stdout, rec)
	writeReportIfRequested(cfg, results, logger)

	for _, r := range results {
		if r.Err != nil || !r.Passed {
			return exitSomeFailed
		}
	}
	return exitOK
}

// writeReportIfRequested writes the structured report to cfg.Report when
// the flag is set, in cfg.ReportFormat. A nil results slice (partial or
// aborted run) still produces a report with zero rows rather than being
// skipped, so --report always reflects what actually ran.
func writeReportIfRequested(cfg *config.Config, results []nist.Result, logger *zap.Logger) {
	if cfg.Report == "" {
		return
	}
	f, err := os.Create(cfg.Report)
	if err != nil {
		logger.Warn("could not open report file", zap.String("path", cfg.Report), zap.Error(err))
		return
	}
	defer f.Close()

	rec := report.NewRecord(results)
	if err := report.Write(f, rec, cfg.ReportFormat); err != nil {
		logger.Warn("could not write report", zap.String("path", cfg.Report), zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	var zlevel zapcore.Level
	if err := zlevel.Set(level); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	conf := zap.NewProductionConfig()
	conf.Level = zap.NewAtomicLevelAt(zlevel)
	conf.Encoding = "console"
	conf.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return conf.Build()
}
