// Package idler drives the idle machine from a frame ticker and sends the
// resulting chat commands to the host.
package idler

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stigoleg/emote-idler/internal/host"
	"github.com/stigoleg/emote-idler/internal/idle"
	"github.com/stigoleg/emote-idler/internal/settings"

	"golang.org/x/time/rate"
)

const (
	// DefaultFrameInterval is how often the machine is ticked.
	DefaultFrameInterval = 100 * time.Millisecond

	// signalLogEvery bounds how often a persistent signal failure is logged.
	signalLogEvery = 10 * time.Second
)

// ErrAlreadyRunning is returned by Start on a running Runner.
var ErrAlreadyRunning = errors.New("idler already running")

// EventKind classifies runner events.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventFired
	EventDispatchFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state"
	case EventFired:
		return "fired"
	case EventDispatchFailed:
		return "dispatch-failed"
	default:
		return "unknown"
	}
}

// Event reports something the runner did on a tick.
type Event struct {
	Kind    EventKind
	At      time.Time
	State   idle.State
	Command idle.Command
	Err     error
}

// SettingsSource yields the latest settings snapshot.
type SettingsSource interface {
	Snapshot() settings.Settings
}

// Runner ticks the idle machine on a frame interval.
type Runner struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	tickMu  sync.Mutex
	machine *idle.Machine

	interval time.Duration
	signals  host.SignalSource
	dispatch host.Dispatcher
	settings SettingsSource
	now      func() time.Time
	onEvent  func(Event)

	fired     int64
	signalLog *rate.Sometimes
}

// Option configures a Runner.
type Option func(*Runner)

// WithInterval sets the frame interval.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// OnEvent registers an observer. It is called from the ticking goroutine
// and must not block.
func OnEvent(fn func(Event)) Option {
	return func(r *Runner) { r.onEvent = fn }
}

// NewRunner wires a runner to its collaborators.
func NewRunner(emotes idle.Lookup, signals host.SignalSource, dispatch host.Dispatcher, cfg SettingsSource, opts ...Option) *Runner {
	r := &Runner{
		machine:  idle.NewMachine(emotes),
		interval: DefaultFrameInterval,
		signals:  signals,
		dispatch: dispatch,
		settings: cfg,
		now:      time.Now,

		signalLog: &rate.Sometimes{First: 1, Interval: signalLogEvery},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsRunning returns whether the frame loop is active.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start begins ticking until ctx is done or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	r.running = true

	go r.loop(ctx, r.done)

	log.Printf("runner: started (frame=%s)", r.interval)
	return nil
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
			return
		case <-ticker.C:
			r.Step()
		}
	}
}

// Step runs a single frame: read signals and settings, advance the machine
// and dispatch any command. It never blocks on the host.
func (r *Runner) Step() {
	now := r.now()
	sig, sigErr := r.readSignals()
	if sigErr != nil {
		r.signalLog.Do(func() {
			log.Printf("runner: signals unavailable, treating character as active: %v", sigErr)
		})
	}

	r.tickMu.Lock()
	before := r.machine.State()
	cmd, ok := r.machine.Tick(idle.Input{
		Now:       now,
		Signals:   sig,
		SignalErr: sigErr,
		Settings:  r.settings.Snapshot(),
	})
	after := r.machine.State()
	r.tickMu.Unlock()

	if before.Phase != after.Phase || before.Fired != after.Fired {
		r.emit(Event{Kind: EventStateChanged, At: now, State: after})
	}
	if !ok {
		return
	}

	if err := r.dispatch.SendChat(cmd.Text); err != nil {
		log.Printf("runner: send %q failed: %v", cmd.Text, err)
		r.emit(Event{Kind: EventDispatchFailed, At: now, State: after, Command: cmd, Err: err})
		return
	}

	atomic.AddInt64(&r.fired, 1)
	log.Printf("runner: fired %q (emote %d)", cmd.Text, cmd.EmoteID)
	r.emit(Event{Kind: EventFired, At: now, State: after, Command: cmd})
}

// readSignals turns a panicking host into a signal error.
func (r *Runner) readSignals() (sig idle.Signals, err error) {
	defer func() {
		if p := recover(); p != nil {
			sig, err = idle.Signals{}, errors.New("signal source panicked")
			log.Printf("runner: signal source panicked: %v", p)
		}
	}()
	if r.signals == nil {
		return idle.Signals{}, errors.New("no signal source")
	}
	return r.signals.Signals()
}

func (r *Runner) emit(ev Event) {
	if r.onEvent != nil {
		r.onEvent(ev)
	}
}

// State returns the current idle session.
func (r *Runner) State() idle.State {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	return r.machine.State()
}

// Fired returns how many commands were sent since the runner was created.
func (r *Runner) Fired() int64 {
	return atomic.LoadInt64(&r.fired)
}

// Stop stops the frame loop.
func (r *Runner) Stop() error {
	return r.StopWithTimeout(0)
}

// StopWithTimeout stops the frame loop, waiting at most timeout for it to
// exit. The idle session is discarded.
func (r *Runner) StopWithTimeout(timeout time.Duration) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	done := r.done
	r.running = false
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-done:
		r.tickMu.Lock()
		r.machine.Reset()
		r.tickMu.Unlock()
		log.Printf("runner: stopped")
		return nil
	case <-ctx.Done():
		log.Printf("runner: stop timeout exceeded after %v", timeout)
		return ctx.Err()
	}
}
