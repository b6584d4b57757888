// Package engine orchestrates the stress run pipeline: scenario selection,
// concurrency-bounded execution, outcome collection, and summarization.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stressray/stressray/internal/collector"
	"github.com/stressray/stressray/internal/executor"
	"github.com/stressray/stressray/internal/httpclient"
	"github.com/stressray/stressray/internal/scenario"
	"github.com/stressray/stressray/internal/stats"
)

// Config describes one stress run.
type Config struct {
	// TargetURL is the base URL of the evaluation service.
	TargetURL string

	// Requests is the total number of trials to issue.
	Requests int

	// Concurrency is the maximum number of trials in flight at once.
	Concurrency int

	// Strategy selects the execution discipline.
	Strategy executor.Type

	// Timeout is the hard per-trial ceiling. Zero uses the executor default.
	Timeout time.Duration

	// Scenarios overrides the built-in pool when non-empty.
	Scenarios []scenario.Scenario

	// Rand seeds scenario selection; nil uses a time-seeded source.
	Rand *rand.Rand
}

// Result is the output of one run: the derived report plus the raw
// outcome population it was computed from.
type Result struct {
	RunID     string        `json:"runId"`
	Target    string        `json:"target"`
	Strategy  executor.Type `json:"strategy"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Report    stats.Report  `json:"report"`

	// Partial is true when the run produced fewer outcomes than requested
	// (operator abort). Partial reports remain valid.
	Partial bool `json:"partial"`

	Outcomes []collector.Outcome `json:"outcomes"`
}

// Engine runs the pipeline for a single configuration.
type Engine struct {
	config Config
	logger zerolog.Logger
}

// New validates the configuration and creates an engine.
func New(cfg Config, logger zerolog.Logger) (*Engine, error) {
	if cfg.TargetURL == "" {
		return nil, fmt.Errorf("target URL is required")
	}
	if _, err := executor.ParseType(string(cfg.Strategy)); err != nil {
		return nil, err
	}

	execCfg := executorConfig(cfg)
	if err := execCfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{config: cfg, logger: logger}, nil
}

// Run drives the configured trials and returns the result. A run always
// completes with a report; degraded conditions surface in the report's
// rates and advisories, never as an error here. Cancelling ctx stops the
// submission of new trials and summarizes whatever outcomes exist.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	pool := e.config.Scenarios
	if len(pool) == 0 {
		pool = scenario.DefaultPool()
	}

	selector, err := scenario.NewSelector(pool, e.config.Rand)
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario selector: %w", err)
	}

	execCfg := executorConfig(e.config)
	exec, err := executor.CreateAndInit(ctx, &execCfg, e.config.Strategy)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewClient(
		httpclient.WithBaseURL(e.config.TargetURL),
		httpclient.WithTimeout(execCfg.Timeout+time.Second),
	)

	runID := uuid.NewString()
	results := collector.New()

	e.logger.Info().
		Str("runId", runID).
		Str("target", e.config.TargetURL).
		Str("strategy", string(e.config.Strategy)).
		Int("requests", e.config.Requests).
		Int("concurrency", e.config.Concurrency).
		Msg("starting stress run")

	startTime := time.Now()
	if err := exec.Run(ctx, client, selector, results); err != nil {
		return nil, fmt.Errorf("executor run failed: %w", err)
	}
	endTime := time.Now()

	outcomes := results.Snapshot()
	report := stats.Summarize(outcomes, endTime.Sub(startTime), execCfg.EffectiveConcurrency())

	result := &Result{
		RunID:     runID,
		Target:    e.config.TargetURL,
		Strategy:  e.config.Strategy,
		StartTime: startTime,
		EndTime:   endTime,
		Report:    report,
		Partial:   len(outcomes) < e.config.Requests,
		Outcomes:  outcomes,
	}

	e.logFailures(outcomes)
	e.logger.Info().
		Str("runId", runID).
		Int("total", report.TotalRequests).
		Int("failed", report.FailedRequests).
		Float64("successRate", report.SuccessRate).
		Float64("rps", report.RequestsPerSecond).
		Bool("partial", result.Partial).
		Msg("stress run complete")

	return result, nil
}

// logFailures emits one debug line per failed trial.
func (e *Engine) logFailures(outcomes []collector.Outcome) {
	if e.logger.GetLevel() > zerolog.DebugLevel {
		return
	}

	for _, o := range outcomes {
		if o.Success {
			continue
		}
		e.logger.Debug().
			Int("seq", o.Seq).
			Int("status", o.StatusCode).
			Dur("duration", o.Duration).
			Str("error", o.Error).
			Msg("trial failed")
	}
}

func executorConfig(cfg Config) executor.Config {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = executor.DefaultTrialTimeout
	}

	return executor.Config{
		Requests:    cfg.Requests,
		Concurrency: cfg.Concurrency,
		Timeout:     timeout,
	}
}
