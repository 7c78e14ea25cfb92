package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/installed"
)

const (
	// singleBatchLimit is the app count at or below which one batch is used
	singleBatchLimit = 5
	// appsPerBatch sizes batches past the single-batch case
	appsPerBatch = 10
	// batchCeiling caps the number of status workers
	batchCeiling = 8
)

// BatchCount returns how many batches a status check over n apps uses:
// 1 for small counts, scaling up to a small fixed ceiling
func BatchCount(n int) int {
	if n <= 0 {
		return 0
	}
	if n <= singleBatchLimit {
		return 1
	}
	count := (n + appsPerBatch - 1) / appsPerBatch
	if count > batchCeiling {
		count = batchCeiling
	}
	return count
}

// splitBatches divides apps into BatchCount contiguous batches
func splitBatches(apps []installed.Package) [][]installed.Package {
	count := BatchCount(len(apps))
	if count == 0 {
		return nil
	}

	batches := make([][]installed.Package, 0, count)
	size := (len(apps) + count - 1) / count
	for start := 0; start < len(apps); start += size {
		end := start + size
		if end > len(apps) {
			end = len(apps)
		}
		batches = append(batches, apps[start:end])
	}
	return batches
}

// statusMsg is one message from a status worker to the orchestrator.
// Progress is cumulative, not delta, so the orchestrator can sum each
// worker's latest count for an overall counter.
type statusMsg[T any] struct {
	unit    int
	done    int
	final   bool
	results []T
	err     error
}

// StatusWave splits apps into batches, evaluates each batch in an
// isolated worker carrying its own copy of the full bucket listing, and
// merges the results. Each worker reports cumulative progress after every
// item; onProgress (optional) receives the summed counter. A worker that
// times out or errors contributes nothing. Returned results follow worker
// order; presentation ordering is imposed by the caller's post-merge sort.
func StatusWave[T any](
	apps []installed.Package,
	buckets []bucket.Entry,
	eval func(installed.Package, []bucket.Entry) T,
	onProgress func(done, total int),
	timeout time.Duration,
) ([]T, []State) {
	if timeout <= 0 {
		timeout = DefaultStatusTimeout
	}

	batches := splitBatches(apps)
	if len(batches) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	msgs := make(chan statusMsg[T])
	for unit, batch := range batches {
		go statusWorker(ctx, unit, batch, buckets, eval, msgs)
	}

	states := make([]State, len(batches))
	for i := range states {
		states[i] = StateRunning
	}
	progress := make([]int, len(batches))

	var merged []T
	finished := 0
	for finished < len(batches) {
		select {
		case m := <-msgs:
			if !m.final {
				progress[m.unit] = m.done
				if onProgress != nil {
					onProgress(sum(progress), len(apps))
				}
				continue
			}

			finished++
			if m.err != nil {
				states[m.unit] = StateErrored
				logger.Debug("status worker %d: %v", m.unit, m.err)
				continue
			}
			states[m.unit] = StateCompleted
			progress[m.unit] = m.done
			merged = append(merged, m.results...)

		case <-ctx.Done():
			// Non-responding workers are abandoned; their slots yield empty
			for i := range states {
				if states[i] == StateRunning {
					states[i] = StateTimedOut
				}
			}
			return merged, states
		}
	}

	return merged, states
}

// statusWorker evaluates one batch, sending cumulative progress after each
// item and a final message carrying the batch's complete result array.
// The full bucket listing travels with the job so no cross-worker lookups
// are needed.
func statusWorker[T any](
	ctx context.Context,
	unit int,
	batch []installed.Package,
	buckets []bucket.Entry,
	eval func(installed.Package, []bucket.Entry) T,
	msgs chan<- statusMsg[T],
) {
	defer func() {
		if r := recover(); r != nil {
			send(ctx, msgs, statusMsg[T]{unit: unit, final: true, err: fmt.Errorf("worker panic: %v", r)})
		}
	}()

	results := make([]T, 0, len(batch))
	for i, app := range batch {
		if ctx.Err() != nil {
			return
		}
		results = append(results, eval(app, buckets))
		send(ctx, msgs, statusMsg[T]{unit: unit, done: i + 1})
	}

	send(ctx, msgs, statusMsg[T]{unit: unit, done: len(batch), final: true, results: results})
}

// send delivers a message unless the wave has been abandoned
func send[T any](ctx context.Context, msgs chan<- statusMsg[T], m statusMsg[T]) {
	select {
	case msgs <- m:
	case <-ctx.Done():
	}
}

func sum(counts []int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
