package ai

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// BreakerState represents the state of a circuit breaker.
type BreakerState int

const (
	// BreakerClosed allows requests through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects requests until the recovery timeout passes.
	BreakerOpen
	// BreakerHalfOpen admits a probe request to test recovery.
	BreakerHalfOpen
)

// String returns a string representation of the breaker state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker guards one oracle operation. Consecutive failures open it;
// after the recovery timeout a single probe is admitted and a success
// closes it again.
type Breaker struct {
	op               string
	failureThreshold int
	recoveryTimeout  time.Duration

	mu           sync.Mutex
	state        BreakerState
	failureCount int
	lastFailure  time.Time
}

// NewBreaker creates a breaker for the named operation.
func NewBreaker(op string, failureThreshold int, recoveryTimeout time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = 30 * time.Second
	}
	return &Breaker{op: op, failureThreshold: failureThreshold, recoveryTimeout: recoveryTimeout, state: BreakerClosed}
}

// Allow reports whether a request may proceed, transitioning to half-open
// when the recovery window has elapsed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case BreakerOpen:
		if time.Since(b.lastFailure) < b.recoveryTimeout {
			return fmt.Errorf("op=%s: breaker open: %w", b.op, domain.ErrOracleFailure)
		}
		b.state = BreakerHalfOpen
		slog.Info("breaker half-open, admitting probe", slog.String("op", b.op))
		return nil
	default:
		return nil
	}
}

// RecordSuccess resets the breaker after a successful call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BreakerClosed {
		slog.Info("breaker closed after recovery", slog.String("op", b.op))
	}
	b.state = BreakerClosed
	b.failureCount = 0
}

// RecordFailure counts a failed call and opens the breaker at threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount++
	b.lastFailure = time.Now()
	if b.state == BreakerHalfOpen || b.failureCount >= b.failureThreshold {
		if b.state != BreakerOpen {
			slog.Warn("breaker opened",
				slog.String("op", b.op),
				slog.Int("failures", b.failureCount),
				slog.Duration("recovery_timeout", b.recoveryTimeout))
		}
		b.state = BreakerOpen
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// BreakerSet keeps one breaker per oracle operation.
type BreakerSet struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	// defaults applied to breakers created on demand
	failureThreshold int
	recoveryTimeout  time.Duration
}

// NewBreakerSet creates an empty set with shared defaults.
func NewBreakerSet(failureThreshold int, recoveryTimeout time.Duration) *BreakerSet {
	return &BreakerSet{
		breakers:         map[string]*Breaker{},
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
	}
}

// For returns or creates the breaker for an operation.
func (s *BreakerSet) For(op string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.breakers[op]; ok {
		return b
	}
	b := NewBreaker(op, s.failureThreshold, s.recoveryTimeout)
	s.breakers[op] = b
	return b
}
