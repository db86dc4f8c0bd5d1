package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

var errBoom = errors.New("boom")

func newTestBreaker(cooldown time.Duration) *Breaker {
	return New("test", Config{
		MaxFailures:      3,
		Cooldown:         cooldown,
		SuccessThreshold: 2,
	}, zap.NewNop())
}

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := newTestBreaker(time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := b.Execute(ctx, fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err = %v, want boom", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	if err := b.Execute(ctx, succeed); !errors.Is(err, ErrOpen) {
		t.Fatalf("open breaker should reject, got %v", err)
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, fail)
	}
	time.Sleep(20 * time.Millisecond)

	// Two probes close the breaker again
	if err := b.Execute(ctx, succeed); err != nil {
		t.Fatalf("probe rejected: %v", err)
	}
	if err := b.Execute(ctx, succeed); err != nil {
		t.Fatalf("second probe rejected: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, fail)
	}
	time.Sleep(20 * time.Millisecond)

	if err := b.Execute(ctx, fail); !errors.Is(err, errBoom) {
		t.Fatalf("probe err = %v, want boom", err)
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open after failed probe", b.State())
	}
}

func TestClosedBreakerResetsFailureCountOnSuccess(t *testing.T) {
	b := newTestBreaker(time.Hour)
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, succeed)
	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)

	if b.State() != StateClosed {
		t.Fatalf("interleaved successes should keep the breaker closed, state = %v", b.State())
	}
}
