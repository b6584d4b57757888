package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/stressray/stressray/internal/storage"
)

var historyCmd = newHistoryCommand()

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past stress test runs",
		Long: `List runs recorded with 'stressray run --db'.

  stressray history --db runs.db --limit 10`,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(showHistory(cmd))
		},
	}

	cmd.Flags().String("db", "", "SQLite database recorded by 'run --db' (required)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	cmd.Flags().String("run", "", "Show the full stored report for one run ID")
	cmd.Flags().Bool("no-color", false, "Disable colored output")

	return cmd
}

func showHistory(cmd *cobra.Command) int {
	dbPath, _ := cmd.Flags().GetString("db")
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")
	noColor, _ := cmd.Flags().GetBool("no-color")

	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --db is required")
		cmd.Help()
		return 1
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if runID != "" {
		return showRun(out, store, runID)
	}

	summaries, err := store.ListRuns(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return 0
	}

	if !noColor && !isatty.IsTerminal(os.Stdout.Fd()) {
		noColor = true
	}

	header := color.New(color.FgCyan, color.Bold)
	bad := color.New(color.FgRed)
	if noColor {
		header.DisableColor()
		bad.DisableColor()
	}

	fmt.Fprintln(out, header.Sprintf("%-36s  %-19s  %-8s  %8s  %8s  %9s  %10s",
		"RUN ID", "STARTED", "STRATEGY", "REQUESTS", "SUCCESS", "P95", "REQ/S"))

	for _, s := range summaries {
		successText := fmt.Sprintf("%.1f%%", s.SuccessRate*100)
		if s.SuccessRate < 0.95 {
			successText = bad.Sprint(successText)
		}

		line := fmt.Sprintf("%-36s  %-19s  %-8s  %8d  %8s  %9s  %10.2f",
			s.RunID,
			s.StartedAt.Local().Format(time.DateTime),
			s.Strategy,
			s.TotalRequests,
			successText,
			s.P95,
			s.RequestsPerSecond,
		)
		if s.Partial {
			line += "  (partial)"
		}
		fmt.Fprintln(out, line)
	}

	return 0
}

func showRun(out io.Writer, store *storage.Store, runID string) int {
	summary, report, err := store.GetRun(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "Run:         %s\n", summary.RunID)
	fmt.Fprintf(out, "Target:      %s\n", summary.Target)
	fmt.Fprintf(out, "Strategy:    %s\n", summary.Strategy)
	fmt.Fprintf(out, "Started:     %s\n", summary.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Requests:    %d (%d failed)\n", report.TotalRequests, report.FailedRequests)
	fmt.Fprintf(out, "Success:     %.1f%%\n", report.SuccessRate*100)
	fmt.Fprintf(out, "Latency:     avg=%s p95=%s p99=%s\n", report.AvgResponseTime, report.P95ResponseTime, report.P99ResponseTime)
	fmt.Fprintf(out, "Throughput:  %.2f req/s\n", report.RequestsPerSecond)
	fmt.Fprintln(out, "Recommendations:")
	for _, rec := range report.Recommendations {
		fmt.Fprintf(out, "  - %s\n", rec)
	}

	return 0
}
