package playback

import (
	"sync"
	"time"

	"github.com/stepguide/backend/pkg/models"
)

// DefaultInterval is the countdown cadence.
const DefaultInterval = time.Second

// Option configures a Runner.
type Option func(*Runner)

// WithInterval overrides the one-second countdown cadence. Tests use short
// intervals; non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithOnChange registers an observer invoked with a snapshot after every
// transition that changed the state, ticks included. The callback runs with
// the runner's lock held and must not call back into the runner.
func WithOnChange(fn func(State)) Option {
	return func(r *Runner) { r.onChange = fn }
}

// Runner attaches a wall clock to a Session. Every transition, whether
// caller-driven or the internal once-per-interval tick, runs under one
// mutex, so the Session's single-writer discipline holds. Navigation and
// alignment changes re-arm the ticker, which both cancels any countdown in
// flight and guarantees the new step gets a full interval before its first
// tick.
type Runner struct {
	mu       sync.Mutex
	session  *Session
	interval time.Duration
	onChange func(State)

	ticker  *time.Ticker
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewRunner loads the steps into a fresh session. The runner works without
// Start for purely caller-driven playback; Start adds the countdown clock.
func NewRunner(steps []models.Step, opts ...Option) *Runner {
	r := &Runner{
		session:  NewSession(steps),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the countdown goroutine. No-op when already running.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.ticker = time.NewTicker(r.interval)
	r.stopCh = make(chan struct{})
	r.wg.Add(1)
	go r.loop(r.ticker, r.stopCh)
}

// Stop halts the countdown and waits for the runner's goroutine to exit.
// Idempotent; the session state stays readable afterwards and Start may be
// called again.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.ticker.Stop()
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
}

// Next advances to the following step.
func (r *Runner) Next() { r.apply(true, func() { r.session.Next() }) }

// Prev moves back to the preceding step.
func (r *Runner) Prev() { r.apply(true, func() { r.session.Prev() }) }

// ToggleAlign flips page alignment.
func (r *Runner) ToggleAlign() { r.apply(true, func() { r.session.ToggleAlign() }) }

// SelectStep points the viewer at step i's page.
func (r *Runner) SelectStep(i int) { r.apply(false, func() { r.session.SelectStep(i) }) }

// State returns a snapshot of the session.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Snapshot()
}

func (r *Runner) loop(ticker *time.Ticker, stopCh chan struct{}) {
	defer r.wg.Done()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.apply(false, func() { r.session.Tick() })
		}
	}
}

// apply runs a transition under the lock, optionally re-arming the tick
// cadence, and notifies the observer when the state actually changed.
func (r *Runner) apply(resetCadence bool, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := r.session.Snapshot()
	fn()
	after := r.session.Snapshot()

	if resetCadence && r.running {
		r.ticker.Reset(r.interval)
		// Reset does not clear a tick already buffered in the channel.
		// Drop it, or it would land on the state just entered.
		select {
		case <-r.ticker.C:
		default:
		}
	}
	if r.onChange != nil && after != before {
		r.onChange(after)
	}
}
