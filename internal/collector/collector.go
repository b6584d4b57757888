// Package collector provides the thread-safe collection point for trial
// outcomes produced by concurrent load generation.
package collector

import (
	"sync"
	"time"
)

// StatusNone is the sentinel status code recorded when no HTTP response
// was received (transport failure or timeout).
const StatusNone = 0

// Outcome is the immutable result of a single trial.
type Outcome struct {
	// Seq is the trial sequence number, assigned at submission time so
	// outcomes remain identifiable after out-of-order completion.
	Seq int `json:"seq"`

	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`

	// StatusCode is the HTTP status, or StatusNone when the exchange
	// produced no response.
	StatusCode int  `json:"statusCode"`
	Success    bool `json:"success"`

	// Error describes a failure that occurred before a status code was
	// obtained. Empty for failures fully described by the status code.
	Error string `json:"error,omitempty"`

	// BytesReceived is the response body length, zero when no body exists.
	BytesReceived int64 `json:"bytesReceived"`
}

// NewOutcome builds an outcome from the raw trial measurements. The
// duration is derived from the timestamps and clamped so it is never
// negative.
func NewOutcome(seq int, start, end time.Time, statusCode int, success bool, errDesc string, bytes int64) Outcome {
	duration := end.Sub(start)
	if duration < 0 {
		duration = 0
	}

	return Outcome{
		Seq:           seq,
		StartTime:     start,
		EndTime:       end,
		Duration:      duration,
		StatusCode:    statusCode,
		Success:       success,
		Error:         errDesc,
		BytesReceived: bytes,
	}
}

// Collector is an append-only, race-free store for outcomes.
//
// Record may be called concurrently from any number of trial completions.
// Snapshot is intended to be called once all trials have joined; it is not
// a streaming view.
type Collector struct {
	mu       sync.Mutex
	outcomes []Outcome
}

// New creates an empty collector.
func New() *Collector {
	return &Collector{}
}

// Record appends one outcome. Safe for concurrent use.
func (c *Collector) Record(o Outcome) {
	c.mu.Lock()
	c.outcomes = append(c.outcomes, o)
	c.mu.Unlock()
}

// Len returns the number of outcomes recorded so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outcomes)
}

// Snapshot returns a copy of all recorded outcomes. The copy is stable:
// later Record calls do not affect it.
func (c *Collector) Snapshot() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Outcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}
