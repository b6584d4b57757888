package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/stressray/stressray/internal/collector"
	"github.com/stressray/stressray/internal/httpclient"
	"github.com/stressray/stressray/internal/scenario"
)

// FanOut schedules all trials against a single shared concurrency gate.
//
// A trial is admitted only while the gate has capacity and releases its
// slot the moment it completes, so true concurrency stays at the gate size
// for as long as trials remain. Completion order is unconstrained.
type FanOut struct {
	config *Config
	stats  liveStats
}

// NewFanOut creates a new fan-out executor.
func NewFanOut() *FanOut {
	return &FanOut{}
}

// Type returns the executor type.
func (e *FanOut) Type() Type {
	return TypeFanOut
}

// Init initializes the executor with configuration.
func (e *FanOut) Init(ctx context.Context, config *Config) error {
	if config == nil {
		return fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	e.config = config
	return nil
}

// Run issues the configured trials, never more than the gate size in
// flight at once, and blocks until every admitted trial has recorded its
// outcome.
func (e *FanOut) Run(ctx context.Context, client *httpclient.Client, selector *scenario.Selector, results *collector.Collector) error {
	if e.config == nil {
		return fmt.Errorf("executor not initialized")
	}

	e.stats.start()
	timeout := e.config.trialTimeout()
	gate := make(chan struct{}, e.config.EffectiveConcurrency())

	var wg sync.WaitGroup

submit:
	for seq := 0; seq < e.config.Requests; seq++ {
		if ctx.Err() != nil {
			break
		}

		// Admission blocks until the gate has capacity. Caller
		// cancellation stops submission here; admitted trials finish.
		select {
		case <-ctx.Done():
			break submit
		case gate <- struct{}{}:
		}

		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			defer func() { <-gate }()

			e.stats.trialStarted()
			defer e.stats.trialFinished()

			results.Record(runTrial(ctx, seq, timeout, client, selector))
		}(seq)
	}

	wg.Wait()
	return nil
}

// GetStats returns executor statistics.
func (e *FanOut) GetStats() *Stats {
	return e.stats.snapshot()
}
