// Package admin is the operator console: it starts and stops the bot and
// edits the authorized user list.
package admin

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GSKISBOT/fileconvertor/pkg/logger"
)

// State is the bot's lifecycle state as seen by the supervisor
type State string

const (
	StateStopped  State = "stopped"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// RunFunc runs the bot until ctx is cancelled
type RunFunc func(ctx context.Context) error

// Status is a snapshot of the supervisor
type Status struct {
	State     State     `json:"state"`
	Running   bool      `json:"bot_running"`
	StartedAt time.Time `json:"started_at,omitzero"`
	LastError string    `json:"last_error,omitempty"`
}

// Supervisor owns the one bot instance. Start and Stop are safe to call
// concurrently; at most one run is ever active.
type Supervisor struct {
	mu        sync.Mutex
	run       RunFunc
	logger    *logger.Logger
	state     State
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
	lastErr   error
}

// NewSupervisor creates a stopped supervisor for run
func NewSupervisor(run RunFunc, log *logger.Logger) *Supervisor {
	return &Supervisor{run: run, logger: log, state: StateStopped}
}

// Start launches the bot under ctx and reports whether it was started.
// A supervisor that is already running or stopping is left alone.
func (s *Supervisor) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStopped {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.state = StateRunning
	s.cancel = cancel
	s.done = done
	s.startedAt = time.Now()
	s.lastErr = nil

	go s.watch(runCtx, cancel, done)

	s.logger.Info("Bot started")
	return true
}

func (s *Supervisor) watch(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	err := s.run(ctx)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil && !errors.Is(err, context.Canceled) {
		s.lastErr = err
		s.logger.Error("Bot exited: %v", err)
	} else {
		s.logger.Info("Bot stopped")
	}
	s.state = StateStopped
	s.cancel = nil
	s.startedAt = time.Time{}
	close(done)
}

// Stop cancels the running bot and waits for it to exit or for ctx to end.
// It reports false when nothing was running.
func (s *Supervisor) Stop(ctx context.Context) (bool, error) {
	s.mu.Lock()
	switch s.state {
	case StateStopped:
		s.mu.Unlock()
		return false, nil
	case StateRunning:
		s.state = StateStopping
		s.cancel()
	}
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		return true, nil
	case <-ctx.Done():
		return true, ctx.Err()
	}
}

// Status returns the current state
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:     s.state,
		Running:   s.state == StateRunning,
		StartedAt: s.startedAt,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
