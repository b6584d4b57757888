package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stressray/stressray/internal/collector"
	"github.com/stressray/stressray/internal/httpclient"
	"github.com/stressray/stressray/internal/scenario"
)

// runTrial executes one trial and returns its outcome. The timestamps
// bracket only the network exchange; scenario selection happens before the
// timer starts. Every failure mode is classified into the outcome, never
// returned.
//
// The trial context is detached from the run context on purpose: caller
// cancellation stops submission, it does not interrupt admitted trials.
func runTrial(ctx context.Context, seq int, timeout time.Duration, client *httpclient.Client, selector *scenario.Selector) collector.Outcome {
	sc := selector.Select()

	trialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.Evaluate(trialCtx, sc)
	end := time.Now()

	if err != nil {
		desc := err.Error()
		if httpclient.IsTimeout(err) {
			desc = "timeout after " + timeout.String()
		}
		return collector.NewOutcome(seq, start, end, collector.StatusNone, false, desc, 0)
	}

	success := httpclient.IsSuccessStatus(resp.StatusCode)
	errDesc := ""
	if !success {
		errDesc = resp.ErrorDetail
	}

	return collector.NewOutcome(seq, start, end, resp.StatusCode, success, errDesc, resp.BytesReceived)
}

// liveStats tracks in-flight trial counts shared by both disciplines.
type liveStats struct {
	startTime time.Time

	submitted atomic.Int64
	completed atomic.Int64
	active    atomic.Int32
	peak      atomic.Int32

	mu sync.RWMutex
}

func (s *liveStats) start() {
	s.mu.Lock()
	s.startTime = time.Now()
	s.mu.Unlock()
}

// trialStarted marks one trial in flight and updates the observed peak.
func (s *liveStats) trialStarted() {
	s.submitted.Add(1)
	active := s.active.Add(1)
	for {
		peak := s.peak.Load()
		if active <= peak || s.peak.CompareAndSwap(peak, active) {
			break
		}
	}
}

func (s *liveStats) trialFinished() {
	s.active.Add(-1)
	s.completed.Add(1)
}

func (s *liveStats) snapshot() *Stats {
	s.mu.RLock()
	startTime := s.startTime
	s.mu.RUnlock()

	var elapsed time.Duration
	if !startTime.IsZero() {
		elapsed = time.Since(startTime)
	}

	return &Stats{
		StartTime:    startTime,
		Elapsed:      elapsed,
		Submitted:    s.submitted.Load(),
		Completed:    s.completed.Load(),
		ActiveTrials: int(s.active.Load()),
		PeakActive:   int(s.peak.Load()),
	}
}
