// Package stats reduces a frozen outcome population into the run report.
package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/stressray/stressray/internal/collector"
)

// Histogram bounds, in microseconds: 1us to 1 hour, 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// percentileSampleFloor is the minimum number of successful durations
// required before rank-based percentiles are meaningful. Below it both
// p95 and p99 degrade to the maximum observed duration, a conservative
// upper estimate.
const percentileSampleFloor = 20

// Per-request resource constants used for the advisory extrapolations.
const (
	cpuSecondsPerRequest = 0.15
	memoryMBPerRequest   = 50.0
)

// Report is the statistical summary of one run. It is a pure function of
// the outcome population, the wall-clock duration, and the configured
// concurrency; it is recomputed whole, never mutated incrementally.
type Report struct {
	TotalRequests      int     `json:"totalRequests"`
	SuccessfulRequests int     `json:"successfulRequests"`
	FailedRequests     int     `json:"failedRequests"`
	SuccessRate        float64 `json:"successRate"`

	// Latency fields cover successful trials only. All zero when nothing
	// succeeded.
	AvgResponseTime time.Duration `json:"avgResponseTime"`
	MinResponseTime time.Duration `json:"minResponseTime"`
	MaxResponseTime time.Duration `json:"maxResponseTime"`
	P95ResponseTime time.Duration `json:"p95ResponseTime"`
	P99ResponseTime time.Duration `json:"p99ResponseTime"`

	MaxConcurrency    int           `json:"maxConcurrency"`
	TotalDuration     time.Duration `json:"totalDuration"`
	RequestsPerSecond float64       `json:"requestsPerSecond"`

	// Resource figures are linear extrapolations, advisory estimates
	// rather than measured values.
	CPUEstimateSeconds float64 `json:"cpuEstimateSeconds"`
	MemoryEstimateMB   float64 `json:"memoryEstimateMb"`

	Recommendations []string `json:"recommendations"`
}

// Summarize computes the report for a frozen outcome population.
//
// It is deterministic: identical populations, wall-clock duration, and
// concurrency always yield an identical report, regardless of the order
// outcomes were recorded in.
func Summarize(outcomes []collector.Outcome, wallClock time.Duration, concurrency int) Report {
	report := Report{
		TotalRequests:  len(outcomes),
		TotalDuration:  wallClock,
		MaxConcurrency: concurrency,
	}

	var successDurations []time.Duration
	for _, o := range outcomes {
		if o.Success {
			report.SuccessfulRequests++
			successDurations = append(successDurations, o.Duration)
		} else {
			report.FailedRequests++
		}
	}

	if report.TotalRequests > 0 {
		report.SuccessRate = float64(report.SuccessfulRequests) / float64(report.TotalRequests)
	}
	if wallClock > 0 {
		report.RequestsPerSecond = float64(report.TotalRequests) / wallClock.Seconds()
	}

	report.AvgResponseTime, report.MinResponseTime, report.MaxResponseTime = meanMinMax(successDurations)
	report.P95ResponseTime, report.P99ResponseTime = percentiles(successDurations)

	report.CPUEstimateSeconds = float64(report.TotalRequests) * cpuSecondsPerRequest
	report.MemoryEstimateMB = float64(report.TotalRequests) * memoryMBPerRequest

	report.Recommendations = recommend(report)

	return report
}

// meanMinMax computes exact latency aggregates over the slice.
func meanMinMax(durations []time.Duration) (mean, min, max time.Duration) {
	if len(durations) == 0 {
		return 0, 0, 0
	}

	min = durations[0]
	max = durations[0]
	var total time.Duration
	for _, d := range durations {
		total += d
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}

	return total / time.Duration(len(durations)), min, max
}

// percentiles computes p95 and p99 over the successful durations using an
// HDR histogram. Populations below percentileSampleFloor degrade to the
// maximum observed duration for both quantiles, keeping p99 >= p95.
func percentiles(durations []time.Duration) (p95, p99 time.Duration) {
	if len(durations) == 0 {
		return 0, 0
	}

	if len(durations) < percentileSampleFloor {
		_, _, max := meanMinMax(durations)
		return max, max
	}

	hist := hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
	for _, d := range durations {
		micros := d.Microseconds()
		if micros < histogramMin {
			micros = histogramMin
		}
		if micros > histogramMax {
			micros = histogramMax
		}
		hist.RecordValue(micros)
	}

	p95 = time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond
	p99 = time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond
	return p95, p99
}
