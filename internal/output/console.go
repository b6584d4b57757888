// Package output renders run results for the terminal and for persistence.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/stressray/stressray/internal/engine"
	"github.com/stressray/stressray/internal/stats"
)

// Formatter renders a run result as human-readable text.
type Formatter struct {
	Verbose bool
	NoColor bool
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
	}
}

// FormatResult renders the full report block for a completed run.
func (f *Formatter) FormatResult(result *engine.Result) string {
	var buf strings.Builder

	header := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)
	good := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)
	if f.NoColor {
		header.DisableColor()
		label.DisableColor()
		good.DisableColor()
		bad.DisableColor()
		dim.DisableColor()
	}

	report := result.Report
	divider := strings.Repeat("=", 60)

	buf.WriteString(divider + "\n")
	buf.WriteString(header.Sprint("STRESS TEST REPORT") + "\n")
	buf.WriteString(divider + "\n")

	buf.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Target:"), result.Target))
	buf.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Run ID:"), result.RunID))
	buf.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Strategy:"), result.Strategy))
	if result.Partial {
		buf.WriteString(bad.Sprint("PARTIAL RUN - fewer trials completed than requested") + "\n")
	}
	buf.WriteString("\n")

	buf.WriteString(fmt.Sprintf("%s %d\n", label.Sprint("Total Requests:"), report.TotalRequests))
	buf.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Successful:"), good.Sprintf("%d", report.SuccessfulRequests)))

	failedText := fmt.Sprintf("%d", report.FailedRequests)
	if report.FailedRequests > 0 {
		failedText = bad.Sprintf("%d", report.FailedRequests)
	}
	buf.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Failed:"), failedText))

	buf.WriteString(fmt.Sprintf("%s %.1f%%\n", label.Sprint("Success Rate:"), report.SuccessRate*100))
	buf.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Total Duration:"), formatDuration(report.TotalDuration)))
	buf.WriteString(fmt.Sprintf("%s %.2f\n", label.Sprint("Requests/Second:"), report.RequestsPerSecond))
	buf.WriteString(fmt.Sprintf("%s %d\n", label.Sprint("Max Concurrency:"), report.MaxConcurrency))
	buf.WriteString("\n")

	buf.WriteString(header.Sprint("RESPONSE TIME (successful requests)") + "\n")
	buf.WriteString(fmt.Sprintf("  Average: %s\n", formatDuration(report.AvgResponseTime)))
	buf.WriteString(fmt.Sprintf("  Min:     %s\n", formatDuration(report.MinResponseTime)))
	buf.WriteString(fmt.Sprintf("  Max:     %s\n", formatDuration(report.MaxResponseTime)))
	buf.WriteString(fmt.Sprintf("  P95:     %s\n", formatDuration(report.P95ResponseTime)))
	buf.WriteString(fmt.Sprintf("  P99:     %s\n", formatDuration(report.P99ResponseTime)))
	buf.WriteString("\n")

	buf.WriteString(header.Sprint("RESOURCE USAGE (estimated, not measured)") + "\n")
	buf.WriteString(fmt.Sprintf("  CPU:    %.1f CPU-seconds\n", report.CPUEstimateSeconds))
	buf.WriteString(fmt.Sprintf("  Memory: %.0f MB\n", report.MemoryEstimateMB))
	buf.WriteString("\n")

	buf.WriteString(header.Sprint("RECOMMENDATIONS") + "\n")
	for _, rec := range report.Recommendations {
		icon := WarningIcon(f.NoColor)
		if rec == stats.HealthyMessage {
			icon = SuccessIcon(f.NoColor)
		}
		buf.WriteString(fmt.Sprintf("  %s %s\n", icon, rec))
	}

	if f.Verbose {
		buf.WriteString("\n")
		buf.WriteString(header.Sprint("FAILED TRIALS") + "\n")
		failures := 0
		for _, o := range result.Outcomes {
			if o.Success {
				continue
			}
			failures++
			buf.WriteString(dim.Sprintf("  #%d status=%d duration=%s %s\n", o.Seq, o.StatusCode, formatDuration(o.Duration), o.Error))
		}
		if failures == 0 {
			buf.WriteString(dim.Sprint("  none\n"))
		}
	}

	buf.WriteString(divider + "\n")
	return buf.String()
}

// formatDuration renders a duration at millisecond precision.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0ms"
	}
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	if noColor {
		return "✓"
	}
	return color.New(color.FgGreen).Sprint("✓")
}

// WarningIcon returns a warning symbol with appropriate color
func WarningIcon(noColor bool) string {
	if noColor {
		return "⚠"
	}
	return color.New(color.FgYellow).Sprint("⚠")
}
