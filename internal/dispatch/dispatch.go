// Package dispatch executes units of work across isolated worker tasks
// with independent fault boundaries. Workers share no mutable state with
// the orchestrator or each other; communication is exclusively message
// passing (job in, result/progress out). A worker that errors, panics, or
// outlives its timeout contributes nothing; it never aborts the wave.
package dispatch

import (
	"context"
	"fmt"
	"time"
)

// State is the lifecycle of one work unit
type State int

const (
	// StatePending is a unit not yet started
	StatePending State = iota
	// StateRunning is a unit currently executing
	StateRunning
	// StateCompleted is a unit that delivered its results
	StateCompleted
	// StateTimedOut is a unit terminated by its timeout; its slot yields empty
	StateTimedOut
	// StateErrored is a unit that failed; its slot yields empty
	StateErrored
)

// String returns a human-readable state
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed-out"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

const (
	// DefaultSearchTimeout bounds one bucket-search unit
	DefaultSearchTimeout = 30 * time.Second
	// DefaultStatusTimeout bounds one status-batch unit
	DefaultStatusTimeout = 60 * time.Second
)

// outcome carries a unit's result back to the orchestrator
type outcome[T any] struct {
	value T
	err   error
}

// runUnit executes one unit of work under a hard timeout. Timeout and
// error are handled identically: the unit's contribution degrades to the
// zero value. Panics inside the unit are contained as errors.
func runUnit[T any](timeout time.Duration, work func(ctx context.Context) (T, error)) (T, State) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ch := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				ch <- outcome[T]{value: zero, err: fmt.Errorf("worker panic: %v", r)}
			}
		}()
		v, err := work(ctx)
		ch <- outcome[T]{value: v, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil {
			var zero T
			return zero, StateErrored
		}
		return o.value, StateCompleted
	case <-ctx.Done():
		var zero T
		return zero, StateTimedOut
	}
}
