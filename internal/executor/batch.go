package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/stressray/stressray/internal/collector"
	"github.com/stressray/stressray/internal/httpclient"
	"github.com/stressray/stressray/internal/scenario"
)

// Batch issues trials in sequential waves of the configured concurrency.
//
// Within a wave all trials start together; the executor only advances to
// the next wave after every trial in the current one has completed. True
// concurrency therefore oscillates between 0 and the wave size, which is
// coarser than fan-out but simpler to reason about.
type Batch struct {
	config *Config
	stats  liveStats
}

// NewBatch creates a new batch executor.
func NewBatch() *Batch {
	return &Batch{}
}

// Type returns the executor type.
func (e *Batch) Type() Type {
	return TypeBatch
}

// Init initializes the executor with configuration.
func (e *Batch) Init(ctx context.Context, config *Config) error {
	if config == nil {
		return fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	e.config = config
	return nil
}

// Run issues the configured trials wave by wave, joining each wave before
// the next starts. Caller cancellation stops new waves from starting.
func (e *Batch) Run(ctx context.Context, client *httpclient.Client, selector *scenario.Selector, results *collector.Collector) error {
	if e.config == nil {
		return fmt.Errorf("executor not initialized")
	}

	e.stats.start()
	timeout := e.config.trialTimeout()
	waveSize := e.config.EffectiveConcurrency()

	for waveStart := 0; waveStart < e.config.Requests; waveStart += waveSize {
		if ctx.Err() != nil {
			break
		}

		waveEnd := waveStart + waveSize
		if waveEnd > e.config.Requests {
			waveEnd = e.config.Requests
		}

		var wg sync.WaitGroup
		for seq := waveStart; seq < waveEnd; seq++ {
			wg.Add(1)
			go func(seq int) {
				defer wg.Done()

				e.stats.trialStarted()
				defer e.stats.trialFinished()

				results.Record(runTrial(ctx, seq, timeout, client, selector))
			}(seq)
		}
		wg.Wait()
	}

	return nil
}

// GetStats returns executor statistics.
func (e *Batch) GetStats() *Stats {
	return e.stats.snapshot()
}
