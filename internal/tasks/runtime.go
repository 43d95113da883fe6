// Package tasks runs background work off the orchestrator loop: an async
// path for I/O-bound jobs and a dedicated slot path for CPU-bound jobs, with
// panics converted to errors at the dispatch boundary.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/panics"
)

// DefaultBlockingSlots bounds concurrently running CPU-bound jobs so
// transcription and model loads cannot starve the host.
const DefaultBlockingSlots = 2

// Runtime executes background tasks. The orchestrator never blocks on it;
// task results come back as events on the bus, not as return values.
type Runtime struct {
	logger *slog.Logger

	blocking chan struct{}
	wg       sync.WaitGroup
}

// NewRuntime constructs a runtime with the given number of blocking-compute
// slots (DefaultBlockingSlots when zero or negative).
func NewRuntime(blockingSlots int, logger *slog.Logger) *Runtime {
	if blockingSlots <= 0 {
		blockingSlots = DefaultBlockingSlots
	}
	return &Runtime{
		logger:   logger,
		blocking: make(chan struct{}, blockingSlots),
	}
}

// Go runs an I/O-bound task asynchronously. A non-nil return or a recovered
// panic is delivered to fail; fail must not block.
func (r *Runtime) Go(ctx context.Context, name string, task func(context.Context) error, fail func(error)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx, name, task, fail)
	}()
}

// GoBlocking runs a CPU-bound task on a bounded blocking-compute slot,
// isolated from the async path so it cannot starve I/O tasks.
func (r *Runtime) GoBlocking(ctx context.Context, name string, task func(context.Context) error, fail func(error)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		select {
		case r.blocking <- struct{}{}:
		case <-ctx.Done():
			r.fail(name, fail, ctx.Err())
			return
		}
		defer func() { <-r.blocking }()

		r.run(ctx, name, task, fail)
	}()
}

// Wait blocks until all dispatched tasks have finished. Used at shutdown and
// in tests; the orchestrator itself never calls it mid-session.
func (r *Runtime) Wait() {
	r.wg.Wait()
}

// run executes one task body under a panic catcher.
func (r *Runtime) run(ctx context.Context, name string, task func(context.Context) error, fail func(error)) {
	var taskErr error
	recovered := panics.Try(func() {
		taskErr = task(ctx)
	})

	switch {
	case recovered != nil:
		r.fail(name, fail, fmt.Errorf("task %s panicked: %v", name, recovered.Value))
	case taskErr != nil:
		r.fail(name, fail, taskErr)
	}
}

// fail reports one task failure through the caller's handler, logging when
// no handler is wired.
func (r *Runtime) fail(name string, fail func(error), err error) {
	if fail != nil {
		fail(err)
		return
	}
	if r.logger != nil {
		r.logger.Error("background task failed", "task", name, "error", err.Error())
	}
}
