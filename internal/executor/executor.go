// Package executor provides the concurrency disciplines used to drive
// trials against the target endpoint.
package executor

import (
	"context"
	"time"

	"github.com/stressray/stressray/internal/collector"
	"github.com/stressray/stressray/internal/httpclient"
	"github.com/stressray/stressray/internal/scenario"
)

// Type identifies the type of executor.
type Type string

const (
	// TypeFanOut schedules all trials against one shared concurrency gate.
	TypeFanOut Type = "fanout"

	// TypeBatch issues trials in sequential waves of the configured
	// concurrency, joining each wave before the next starts.
	TypeBatch Type = "batch"
)

// DefaultTrialTimeout is the hard per-trial ceiling applied when the
// configuration leaves Timeout unset.
const DefaultTrialTimeout = 30 * time.Second

// Executor defines the interface for trial-driving strategies.
//
// Both disciplines satisfy the same outward contract: exactly one outcome
// is recorded for every submitted trial, a failure in one trial never
// aborts its siblings, and no trial failure escapes Run.
type Executor interface {
	// Type returns the executor type.
	Type() Type

	// Init initializes the executor with configuration.
	// Called once before Run().
	Init(ctx context.Context, config *Config) error

	// Run drives the configured number of trials and blocks until every
	// admitted trial has recorded its outcome. Cancelling ctx stops the
	// submission of new trials; in-flight trials run to completion or to
	// their timeout.
	Run(ctx context.Context, client *httpclient.Client, selector *scenario.Selector, results *collector.Collector) error

	// GetStats returns executor statistics.
	GetStats() *Stats
}

// Config contains configuration for an executor.
type Config struct {
	// Requests is the total number of trials to issue.
	Requests int `json:"requests" yaml:"requests"`

	// Concurrency is the maximum number of trials in flight at once.
	// Effective concurrency is min(Requests, Concurrency).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Timeout is the hard per-trial ceiling. Zero means DefaultTrialTimeout.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Validate validates the executor configuration.
func (c *Config) Validate() error {
	if c.Requests <= 0 {
		return &ValidationError{Field: "requests", Message: "requests must be > 0"}
	}
	if c.Concurrency <= 0 {
		return &ValidationError{Field: "concurrency", Message: "concurrency must be > 0"}
	}
	if c.Timeout < 0 {
		return &ValidationError{Field: "timeout", Message: "timeout must not be negative"}
	}
	return nil
}

// EffectiveConcurrency returns min(Requests, Concurrency).
func (c *Config) EffectiveConcurrency() int {
	if c.Requests < c.Concurrency {
		return c.Requests
	}
	return c.Concurrency
}

// trialTimeout returns the configured per-trial ceiling, defaulted.
func (c *Config) trialTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTrialTimeout
}

// Stats contains executor statistics observable during and after a run.
type Stats struct {
	StartTime time.Time     `json:"startTime"`
	Elapsed   time.Duration `json:"elapsed"`

	// Submitted is the number of trials admitted so far; Completed the
	// number whose outcome has been recorded.
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`

	// ActiveTrials is the number currently in flight; PeakActive the
	// highest in-flight count observed at any instant.
	ActiveTrials int `json:"activeTrials"`
	PeakActive   int `json:"peakActive"`
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error on field '" + e.Field + "': " + e.Message
}
