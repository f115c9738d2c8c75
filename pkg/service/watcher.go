package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ethanrimes/campaign-management-platform/pkg/models"
)

const (
	// DefaultPollInterval is the re-assembly cadence when no push-style
	// notifier is configured.
	DefaultPollInterval = 5 * time.Second
	// DefaultFailureLimit is how many consecutive assembly failures a
	// subscription survives before it ends with a terminal error.
	DefaultFailureLimit = 5
)

// TraceSource is the slice of the Assembler the watcher depends on.
type TraceSource interface {
	Assemble(ctx context.Context, executionID string) (*models.Trace, error)
}

// Notifier is a push-style change notification hook on the ledger/entity
// store. Subscribe returns a channel that fires whenever data for the
// execution may have changed, plus a release func. Polling and push are
// interchangeable strategies behind this one interface.
type Notifier interface {
	Subscribe(executionID string) (<-chan struct{}, func(), error)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithNotifier switches the watcher from fixed-interval polling to push
// notifications for executions the notifier covers.
func WithNotifier(n Notifier) WatcherOption {
	return func(w *Watcher) { w.notifier = n }
}

// WithPollInterval overrides the polling cadence.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithFailureLimit overrides the consecutive-failure threshold.
func WithFailureLimit(n int) WatcherOption {
	return func(w *Watcher) {
		if n > 0 {
			w.failureLimit = n
		}
	}
}

// Watcher keeps assembled traces fresh for running executions. Each Watch
// call is an independent subscription; concurrent watches on the same
// execution do not interfere.
type Watcher struct {
	source       TraceSource
	notifier     Notifier
	interval     time.Duration
	failureLimit int
	logger       Logger

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func NewWatcher(source TraceSource, logger Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:       source,
		interval:     DefaultPollInterval,
		failureLimit: DefaultFailureLimit,
		logger:       logger,
		subs:         make(map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscription is one live view of an execution. Unwatch cancels it at any
// point and is idempotent; Done closes once the subscription has released all
// resources, after which Err reports a terminal store failure, if any.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

func (s *Subscription) Unwatch() {
	s.once.Do(s.cancel)
}

func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Watch assembles an initial trace, delivers it synchronously, and then keeps
// re-delivering whenever the status or any entity count changes, until the
// first terminal observation (delivered exactly once) or cancellation.
// Subsequent deliveries run on the subscription's own goroutine.
func (w *Watcher) Watch(ctx context.Context, executionID string, onChange func(*models.Trace)) (*Subscription, error) {
	if onChange == nil {
		return nil, validationErrorf("onChange callback is required")
	}

	initial, err := w.source.Assemble(ctx, executionID)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	onChange(initial)
	if initial.Summary.Status.Terminal() {
		cancel()
		close(sub.done)
		return sub, nil
	}

	w.mu.Lock()
	w.subs[sub] = struct{}{}
	w.mu.Unlock()

	go w.run(watchCtx, sub, executionID, initial, onChange)
	return sub, nil
}

// Close cancels every active subscription.
func (w *Watcher) Close() {
	w.mu.Lock()
	subs := make([]*Subscription, 0, len(w.subs))
	for sub := range w.subs {
		subs = append(subs, sub)
	}
	w.mu.Unlock()
	for _, sub := range subs {
		sub.Unwatch()
	}
}

func (w *Watcher) run(ctx context.Context, sub *Subscription, executionID string, last *models.Trace, onChange func(*models.Trace)) {
	defer func() {
		sub.cancel()
		w.mu.Lock()
		delete(w.subs, sub)
		w.mu.Unlock()
		close(sub.done)
	}()

	var notify <-chan struct{}
	if w.notifier != nil {
		ch, release, err := w.notifier.Subscribe(executionID)
		if err != nil {
			// Fall back to polling; the contract is the same either way.
			w.logger.Errorf("Notifier subscription failed for execution %s, falling back to polling: %v", executionID, err)
		} else {
			notify = ch
			defer release()
		}
	}

	var ticker *time.Ticker
	var tick <-chan time.Time
	if notify == nil {
		ticker = time.NewTicker(w.interval)
		tick = ticker.C
		defer ticker.Stop()
	}

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
		case <-notify:
		}

		trace, err := w.source.Assemble(ctx, executionID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			w.logger.Errorf("Live view re-assembly failed for execution %s (attempt %d/%d): %v",
				executionID, failures, w.failureLimit, err)
			if failures >= w.failureLimit {
				sub.setErr(errors.Wrapf(err, "live view for execution %s gave up after %d consecutive failures",
					executionID, failures))
				return
			}
			continue
		}
		failures = 0

		if traceChanged(last, trace) {
			onChange(trace)
			last = trace
		}
		if trace.Summary.Status.Terminal() {
			return
		}
	}
}

// traceChanged reports whether the observable shape of the trace moved: the
// status or any of the five entity counts.
func traceChanged(prev, next *models.Trace) bool {
	if prev.Summary.Status != next.Summary.Status {
		return true
	}
	return prev.EntityCounts() != next.EntityCounts()
}
