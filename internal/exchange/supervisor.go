package exchange

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BackoffDelay returns the reconnect delay for the given attempt number
// (1-based). The delay grows linearly and plateaus at 5x the base.
func BackoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt > 5 {
		attempt = 5
	}
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(attempt)
}

// Supervisor runs one connector and restarts it after failures with a
// bounded backoff. After MaxAttempts consecutive failures it stops trying
// and logs a hard warning; the rest of the process keeps running on the
// remaining feeds.
type Supervisor struct {
	Connector   Connector
	BaseDelay   time.Duration
	MaxAttempts int
	Log         *slog.Logger

	// OnReconnect is an optional metrics hook, called once per reconnect
	// attempt scheduled after a failure.
	OnReconnect func()

	mu        sync.Mutex
	connected bool
	attempts  int
	gaveUp    bool
	lastError string
}

// SupervisorStatus is the health-endpoint view of one feed.
type SupervisorStatus struct {
	Exchange  string `json:"exchange"`
	Connected bool   `json:"connected"`
	Attempts  int    `json:"reconnectAttempts"`
	GaveUp    bool   `json:"gaveUp"`
	LastError string `json:"lastError,omitempty"`
}

// Status returns a snapshot of the feed's connection state.
func (s *Supervisor) Status() SupervisorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SupervisorStatus{
		Exchange:  s.Connector.Name(),
		Connected: s.connected,
		Attempts:  s.attempts,
		GaveUp:    s.gaveUp,
		LastError: s.lastError,
	}
}

// Run loops the connector until ctx is cancelled or the attempt budget is
// exhausted. A connector returning is always treated as a failure; healthy
// connectors only return on ctx cancellation.
func (s *Supervisor) Run(ctx context.Context, events chan<- Event) {
	name := s.Connector.Name()
	logger := s.Log
	if logger == nil {
		logger = slog.Default()
	}

	for attempt := 1; ; attempt++ {
		s.mu.Lock()
		s.attempts = attempt
		s.connected = true
		s.mu.Unlock()

		started := time.Now()
		err := s.Connector.Run(ctx, events)
		if time.Since(started) > time.Minute {
			// A long-lived session resets the failure streak.
			attempt = 0
		}

		s.mu.Lock()
		s.connected = false
		if err != nil {
			s.lastError = err.Error()
		}
		s.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if s.MaxAttempts > 0 && attempt >= s.MaxAttempts {
			s.mu.Lock()
			s.gaveUp = true
			s.mu.Unlock()
			logger.Warn("feed gave up after max reconnect attempts",
				"exchange", name,
				"attempts", attempt,
				"error", err)
			return
		}

		if s.OnReconnect != nil {
			s.OnReconnect()
		}
		delay := BackoffDelay(s.BaseDelay, attempt)
		logger.Warn("feed disconnected, reconnecting",
			"exchange", name,
			"attempt", attempt,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
