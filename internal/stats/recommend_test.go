package stats_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressray/stressray/internal/collector"
	"github.com/stressray/stressray/internal/stats"
)

// healthyPopulation produces a report that trips no advisory rule: perfect
// success rate, fast responses, high throughput, small run.
func healthyPopulation() []collector.Outcome {
	durations := make([]time.Duration, 10)
	for i := range durations {
		durations[i] = 5 * time.Millisecond
	}
	return population(durations, 0)
}

func TestRecommend_Healthy(t *testing.T) {
	report := stats.Summarize(healthyPopulation(), 100*time.Millisecond, 5)

	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, stats.HealthyMessage, report.Recommendations[0])
}

func TestRecommend_LowSuccessRate(t *testing.T) {
	// 9/10 success = 90%, below the 95% floor.
	outcomes := population([]time.Duration{
		time.Millisecond, time.Millisecond, time.Millisecond,
		time.Millisecond, time.Millisecond, time.Millisecond,
		time.Millisecond, time.Millisecond, time.Millisecond,
	}, 1)

	report := stats.Summarize(outcomes, 100*time.Millisecond, 5)

	assertHasRecommendation(t, report, "stability")
}

func TestRecommend_SlowP95(t *testing.T) {
	// All successes above the 5s ceiling; small sample degrades the P95
	// to the max, which is slow either way.
	durations := []time.Duration{6 * time.Second, 7 * time.Second, 8 * time.Second}

	report := stats.Summarize(population(durations, 0), time.Second, 3)

	assertHasRecommendation(t, report, "optimize performance")
}

func TestRecommend_LowThroughput(t *testing.T) {
	// 5 requests over 10 seconds = 0.5 req/s.
	durations := []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond, time.Millisecond, time.Millisecond}

	report := stats.Summarize(population(durations, 0), 10*time.Second, 1)

	assertHasRecommendation(t, report, "Throughput below")
}

func TestRecommend_HighCPUEstimate(t *testing.T) {
	// 700 requests x 0.15 = 105 CPU-seconds, above the 100 limit.
	durations := make([]time.Duration, 700)
	for i := range durations {
		durations[i] = time.Millisecond
	}

	report := stats.Summarize(population(durations, 0), time.Second, 10)

	assertHasRecommendation(t, report, "CPU usage")
}

func TestRecommend_HighMemoryEstimate(t *testing.T) {
	// 30 requests x 50MB = 1500MB, above the 1000MB limit.
	durations := make([]time.Duration, 30)
	for i := range durations {
		durations[i] = time.Millisecond
	}

	report := stats.Summarize(population(durations, 0), 100*time.Millisecond, 10)

	assertHasRecommendation(t, report, "memory")
}

func TestRecommend_RulesAreIndependent(t *testing.T) {
	// Everything failing at once: zero successes, awful throughput, big run.
	outcomes := population(nil, 1200)

	report := stats.Summarize(outcomes, 1000*time.Second, 10)

	assertHasRecommendation(t, report, "stability")
	assertHasRecommendation(t, report, "Throughput below")
	assertHasRecommendation(t, report, "CPU usage")
	assertHasRecommendation(t, report, "memory")
	for _, rec := range report.Recommendations {
		assert.NotEqual(t, stats.HealthyMessage, rec)
	}
}

func assertHasRecommendation(t *testing.T, report stats.Report, fragment string) {
	t.Helper()
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, fragment) {
			return
		}
	}
	t.Errorf("no recommendation containing %q in %v", fragment, report.Recommendations)
}
