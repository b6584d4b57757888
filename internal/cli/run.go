package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stressray/stressray/internal/engine"
	"github.com/stressray/stressray/internal/executor"
	"github.com/stressray/stressray/internal/output"
	"github.com/stressray/stressray/internal/scenario"
	"github.com/stressray/stressray/internal/storage"
)

// Exit code 1 is returned when the run finishes below this success rate.
const exitSuccessRateFloor = 0.9

var runCmd = newRunCommand()

// newRunCommand builds the run command. Constructed per instance so tests
// can drive runStressTest against fresh flag state.
func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a stress test against an evaluation endpoint",
		Long: `Execute a stress test: issue concurrent trials against the target's
/evaluate path, collect one outcome per trial, and print a statistical
report with recommendations.

Bounded fan-out (default):
  stressray run --url http://service:8080 --requests 100 --concurrency 10

Batched waves:
  stressray run --url http://service:8080 --strategy batch --concurrency 20`,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runStressTest(cmd))
		},
	}

	cmd.Flags().String("url", "", "Base URL of the evaluation service (required)")
	cmd.Flags().Int("requests", 100, "Total number of trials to issue")
	cmd.Flags().Int("concurrency", 10, "Maximum number of trials in flight at once")
	cmd.Flags().String("strategy", string(executor.TypeFanOut), "Execution discipline: fanout or batch")
	cmd.Flags().Duration("timeout", executor.DefaultTrialTimeout, "Hard per-trial timeout")
	cmd.Flags().String("scenarios", "", "YAML scenario pool file (defaults to the built-in pool)")
	cmd.Flags().String("output", "stress_test_report.json", "JSON report file (empty to skip writing)")
	cmd.Flags().String("db", "", "SQLite database to record run history in")
	cmd.Flags().Bool("verbose", false, "Include per-trial failure details in the report")
	cmd.Flags().Bool("quiet", false, "Suppress progress logging")
	cmd.Flags().Bool("no-color", false, "Disable colored output")

	return cmd
}

// runStressTest executes the run command and returns the process exit code.
func runStressTest(cmd *cobra.Command) int {
	url, _ := cmd.Flags().GetString("url")
	requests, _ := cmd.Flags().GetInt("requests")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	strategyName, _ := cmd.Flags().GetString("strategy")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	scenarioFile, _ := cmd.Flags().GetString("scenarios")
	outputPath, _ := cmd.Flags().GetString("output")
	dbPath, _ := cmd.Flags().GetString("db")
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")

	if url == "" {
		fmt.Fprintln(os.Stderr, "Error: --url is required")
		cmd.Help()
		return 1
	}

	strategy, err := executor.ParseType(strategyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := newLogger(verbose, quiet)

	var pool []scenario.Scenario
	if scenarioFile != "" {
		pool, err = scenario.LoadPool(scenarioFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	eng, err := engine.New(engine.Config{
		TargetURL:   url,
		Requests:    requests,
		Concurrency: concurrency,
		Strategy:    strategy,
		Timeout:     timeout,
		Scenarios:   pool,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Operator abort stops submitting trials; in-flight ones finish and
	// the partial population is still summarized.
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	result, err := eng.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !noColor && !isatty.IsTerminal(os.Stdout.Fd()) {
		noColor = true
	}
	formatter := output.NewFormatter(verbose, noColor)
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResult(result))

	if outputPath != "" {
		if err := output.WriteJSON(outputPath, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			return 1
		}
		logger.Info().Str("path", outputPath).Msg("report saved")
	}

	if dbPath != "" {
		if err := saveHistory(dbPath, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording history: %v\n", err)
			return 1
		}
	}

	if result.Report.SuccessRate < exitSuccessRateFloor {
		fmt.Fprintf(os.Stderr, "Warning: low success rate (%.1f%%) - system may be unstable\n", result.Report.SuccessRate*100)
		return 1
	}

	return 0
}

func saveHistory(dbPath string, result *engine.Result) error {
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.SaveRun(result)
}

// newLogger builds the run logger. Quiet drops everything below warnings;
// verbose enables per-trial debug lines.
func newLogger(verbose, quiet bool) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	switch {
	case quiet:
		return logger.Level(zerolog.WarnLevel)
	case verbose:
		return logger.Level(zerolog.DebugLevel)
	default:
		return logger.Level(zerolog.InfoLevel)
	}
}
