// Package trigger fans one "survey record created" event out to every
// registered handler. There is no queue and no retry: each event is handled
// once, in-process, and redelivery is the event source's concern.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/nyashahama/wellness-notifier/internal/metrics"
	"github.com/nyashahama/wellness-notifier/internal/survey"
)

// ─── INTERFACES ───────────────────────────────────────────────────────────────

// Handler reacts to a newly created survey record. The event is shared
// between handlers and must not be mutated.
type Handler interface {
	Name() string
	Handle(ctx context.Context, ev survey.Event) error
}

// Dispatcher is the narrow interface the api package uses to hand off a
// decoded event. The concrete implementation is *Runner.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev survey.Event) error
}

// PanicError reports a handler that panicked instead of returning.
type PanicError struct {
	Handler string
	Value   any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("trigger: handler %s panicked: %v", e.Handler, e.Value)
}

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// Runner invokes every handler concurrently for each event.
type Runner struct {
	handlers []Handler
	logger   *slog.Logger
}

// NewRunner constructs a Runner over the given handlers.
func NewRunner(logger *slog.Logger, handlers ...Handler) *Runner {
	return &Runner{handlers: handlers, logger: logger}
}

// Dispatch runs all handlers in their own goroutines and blocks until every
// one has finished. Errors returned by handlers are logged and dropped. The
// returned error is non-nil only if at least one handler panicked; it joins
// a *PanicError per panicking handler.
func (r *Runner) Dispatch(ctx context.Context, ev survey.Event) error {
	log := r.logger.With("document_id", ev.DocumentID)
	log.Info("trigger: dispatching event", "handlers", len(r.handlers))

	panics := make([]error, len(r.handlers))

	var wg sync.WaitGroup
	for i, h := range r.handlers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			panics[i] = r.run(ctx, h, ev, log)
		}()
	}
	wg.Wait()

	return errors.Join(panics...)
}

// run invokes one handler, converting a panic into a *PanicError.
func (r *Runner) run(ctx context.Context, h Handler, ev survey.Event, log *slog.Logger) (perr error) {
	name := h.Name()
	log = log.With("handler", name)
	start := time.Now()

	defer func() {
		if v := recover(); v != nil {
			metrics.ObserveHandler(name, "panic", start)
			log.Error("trigger: handler panicked", "panic", v, "stack", string(debug.Stack()))
			perr = &PanicError{Handler: name, Value: v}
		}
	}()

	if err := h.Handle(ctx, ev); err != nil {
		metrics.ObserveHandler(name, "error", start)
		log.Warn("trigger: handler failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	metrics.ObserveHandler(name, "ok", start)
	log.Info("trigger: handler completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
