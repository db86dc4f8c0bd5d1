// Package circuitbreaker guards calls to external services. After a run of
// failures the breaker opens and rejects calls immediately until a cooldown
// elapses, then lets a probe through before closing again.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrOpen is returned when the breaker rejects a call without running it
var ErrOpen = errors.New("circuit breaker is open")

// State represents the breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds breaker thresholds
type Config struct {
	MaxFailures      int
	Cooldown         time.Duration
	SuccessThreshold int
}

// DefaultConfig returns thresholds suitable for a third-party HTTP API
func DefaultConfig() Config {
	return Config{
		MaxFailures:      5,
		Cooldown:         30 * time.Second,
		SuccessThreshold: 2,
	}
}

// Breaker is a single circuit breaker
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time
	config      Config
	name        string
	logger      *zap.Logger
}

// New creates a closed breaker
func New(name string, config Config, logger *zap.Logger) *Breaker {
	return &Breaker{
		state:  StateClosed,
		config: config,
		name:   name,
		logger: logger,
	}
}

// Execute runs fn under breaker protection. When the breaker is open the
// call is rejected with ErrOpen without invoking fn.
func (b *Breaker) Execute(ctx context.Context, fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// State returns the current breaker state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.lastFailure) < b.config.Cooldown {
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.successes = 0
		b.logger.Info("Circuit breaker half-open", zap.String("breaker", b.name))
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		b.successes = 0
		b.lastFailure = time.Now()
		if b.state == StateHalfOpen || b.failures >= b.config.MaxFailures {
			if b.state != StateOpen {
				b.logger.Warn("Circuit breaker opened",
					zap.String("breaker", b.name),
					zap.Int("failures", b.failures))
			}
			b.state = StateOpen
		}
		return
	}

	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
			b.logger.Info("Circuit breaker closed", zap.String("breaker", b.name))
		}
	case StateClosed:
		b.failures = 0
	}
}
