package executor

import (
	"context"
	"fmt"
)

// New creates a new executor of the specified type.
//
// Supported types:
//   - "fanout" - All trials share one concurrency gate
//   - "batch"  - Trials run in sequential waves of the concurrency size
//
// Returns an uninitialized executor. Call Init() before Run().
func New(executorType Type) (Executor, error) {
	switch executorType {
	case TypeFanOut:
		return NewFanOut(), nil
	case TypeBatch:
		return NewBatch(), nil
	default:
		return nil, fmt.Errorf("unknown executor type: %s", executorType)
	}
}

// ParseType converts a string strategy name into an executor Type.
func ParseType(name string) (Type, error) {
	switch Type(name) {
	case TypeFanOut, TypeBatch:
		return Type(name), nil
	default:
		return "", fmt.Errorf("unknown strategy %q (expected %q or %q)", name, TypeFanOut, TypeBatch)
	}
}

// CreateAndInit creates and initializes an executor with the given config.
func CreateAndInit(ctx context.Context, cfg *Config, executorType Type) (Executor, error) {
	exec, err := New(executorType)
	if err != nil {
		return nil, err
	}

	if err := exec.Init(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize executor: %w", err)
	}

	return exec, nil
}
