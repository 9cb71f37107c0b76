package idler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Shutdown runs registered teardown steps once, newest first, under a
// shared deadline.
type Shutdown struct {
	mu      sync.Mutex
	steps   []shutdownStep
	timeout time.Duration
	once    sync.Once
	errs    []error
}

type shutdownStep struct {
	name string
	fn   func() error
}

// ErrShutdownTimeout is reported when steps outlive the deadline.
var ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

// NewShutdown returns a Shutdown with the given deadline.
func NewShutdown(timeout time.Duration) *Shutdown {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Shutdown{timeout: timeout}
}

// Add registers a named teardown step.
func (s *Shutdown) Add(name string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, shutdownStep{name: name, fn: fn})
}

// Run executes every step. Later calls return the first call's errors.
func (s *Shutdown) Run() []error {
	s.once.Do(func() {
		s.errs = s.run()
	})
	return s.errs
}

func (s *Shutdown) run() []error {
	s.mu.Lock()
	steps := make([]shutdownStep, len(s.steps))
	copy(steps, s.steps)
	s.mu.Unlock()

	if len(steps) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var (
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := len(steps) - 1; i >= 0; i-- {
			step := steps[i]
			func() {
				defer func() {
					if p := recover(); p != nil {
						record(fmt.Errorf("%s: panic: %v", step.name, p))
						log.Printf("shutdown: %s panicked: %v", step.name, p)
					}
				}()
				if err := step.fn(); err != nil {
					record(fmt.Errorf("%s: %w", step.name, err))
					log.Printf("shutdown: %s failed: %v", step.name, err)
					return
				}
				log.Printf("shutdown: %s done", step.name)
			}()
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("shutdown: timeout after %v, some steps may not have run", s.timeout)
		record(ErrShutdownTimeout)
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]error, len(errs))
	copy(out, errs)
	return out
}
