package httpclient

import (
	"sync"
	"time"
)

// CircuitState is the breaker's position.
type CircuitState int

const (
	// CircuitClosed passes all requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects requests until the cooldown elapses.
	CircuitOpen
	// CircuitHalfOpen lets a bounded number of trial requests through.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreaker trips after a run of consecutive failures and stays open
// for a cooldown period. After the cooldown it admits a limited number of
// trial requests: one success closes the circuit, one failure reopens it.
type CircuitBreaker struct {
	threshold int
	cooldown  time.Duration
	maxTrials int

	// now is swappable for tests.
	now func() time.Time

	mu       sync.RWMutex
	state    CircuitState
	failures int
	trials   int
	openedAt time.Time
}

// NewCircuitBreaker creates a closed breaker. threshold is the number of
// consecutive failures that trips it, timeout the cooldown before probing
// resumes, and halfOpenMax how many trials each half-open phase admits.
func NewCircuitBreaker(threshold int, timeout time.Duration, halfOpenMax int) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  timeout,
		maxTrials: halfOpenMax,
		now:       time.Now,
	}
}

// Allow reports whether a request may proceed, advancing open to half-open
// once the cooldown has elapsed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return false
		}
		cb.state = CircuitHalfOpen
		cb.trials = 1
		return true

	case CircuitHalfOpen:
		if cb.trials >= cb.maxTrials {
			return false
		}
		cb.trials++
		return true
	}

	return true
}

// RecordSuccess clears the failure run; a successful half-open trial
// closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.state = CircuitClosed
		cb.failures = 0
	}
}

// RecordFailure extends the failure run, tripping the circuit at the
// threshold. A failed half-open trial reopens immediately and restarts
// the cooldown.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++

	switch cb.state {
	case CircuitClosed:
		if cb.failures >= cb.threshold {
			cb.trip()
		}
	case CircuitHalfOpen:
		cb.trip()
	case CircuitOpen:
		// Stragglers from requests admitted before the trip restart
		// the cooldown.
		cb.openedAt = cb.now()
	}
}

// trip opens the circuit. Callers hold the lock.
func (cb *CircuitBreaker) trip() {
	cb.state = CircuitOpen
	cb.openedAt = cb.now()
	cb.trials = 0
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset closes the circuit and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = CircuitClosed
	cb.failures = 0
	cb.trials = 0
}

// Failures returns the length of the current failure run.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}
