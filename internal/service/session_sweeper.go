package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SessionSweeper is a background worker that flushes and evicts idle sessions
type SessionSweeper struct {
	store    *SessionStore
	logger   zerolog.Logger
	interval time.Duration
	idleTTL  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// SessionSweeperConfig holds configuration for the session sweeper
type SessionSweeperConfig struct {
	Interval time.Duration // How often to look for idle sessions
	IdleTTL  time.Duration // How long a session may stay unused
}

// DefaultSessionSweeperConfig returns sensible defaults
func DefaultSessionSweeperConfig() SessionSweeperConfig {
	return SessionSweeperConfig{
		Interval: 1 * time.Minute,
		IdleTTL:  30 * time.Minute,
	}
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(store *SessionStore, logger zerolog.Logger, config SessionSweeperConfig) *SessionSweeper {
	defaults := DefaultSessionSweeperConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = defaults.IdleTTL
	}

	return &SessionSweeper{
		store:    store,
		logger:   logger.With().Str("component", "session_sweeper").Logger(),
		interval: config.Interval,
		idleTTL:  config.IdleTTL,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins sweeping in the background
func (w *SessionSweeper) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Dur("idle_ttl", w.idleTTL).
		Msg("Starting session sweeper")

	go w.run(ctx)
}

// Stop gracefully stops the sweeper
func (w *SessionSweeper) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping session sweeper")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Session sweeper stopped")
}

func (w *SessionSweeper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setStopped()
			return
		case <-w.stopCh:
			w.setStopped()
			return
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

func (w *SessionSweeper) setStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// SweepOnce evicts idle sessions immediately and returns how many were evicted
func (w *SessionSweeper) SweepOnce(ctx context.Context) int {
	start := time.Now()
	evicted := w.store.Sweep(ctx, w.idleTTL)

	if evicted > 0 {
		w.logger.Info().
			Int("evicted", evicted).
			Int("remaining", w.store.Count()).
			Dur("elapsed", time.Since(start)).
			Msg("Evicted idle sessions")
	} else {
		w.logger.Debug().Int("sessions", w.store.Count()).Msg("No idle sessions")
	}
	return evicted
}

// IsRunning returns whether the sweeper is currently running
func (w *SessionSweeper) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
