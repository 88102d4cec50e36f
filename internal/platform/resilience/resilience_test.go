package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestSingleFlightDo(t *testing.T) {
	var g SingleFlight[string]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, _ := g.Do("fixtures:gw-3", func() (string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil || v != "ok" {
				t.Errorf("singleflight call failed: %q %v", v, err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestCircuitBreakerTransitions(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 8, 16, 12, 0, 0, 0, time.UTC))
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	}, clock)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}
	b.Record(errors.New("upstream 503"))
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	clock.Advance(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}
	b.Record(nil)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestCircuitBreakerDisabledAlwaysAllows(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false, FailureThreshold: 1}, nil)
	b.RecordFailure()
	b.RecordFailure()
	if err := b.Allow(); err != nil {
		t.Fatalf("disabled breaker must allow: %v", err)
	}
}

var errConflict = errors.New("conflict")

func isConflict(err error) bool { return errors.Is(err, errConflict) }

func TestRetryStopsOnSuccess(t *testing.T) {
	t.Parallel()

	var calls int
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}, isConflict, func(context.Context) error {
		calls++
		if calls < 3 {
			return errConflict
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("unexpected attempts: got=%d want=3", calls)
	}
}

func TestRetryExhausts(t *testing.T) {
	t.Parallel()

	var calls int
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 4, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}, isConflict, func(context.Context) error {
		calls++
		return errConflict
	})
	if !errors.Is(err, ErrRetriesExhausted) || !errors.Is(err, errConflict) {
		t.Fatalf("expected exhausted conflict error, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("unexpected attempts: got=%d want=4", calls)
	}
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	t.Parallel()

	business := errors.New("score taken")
	var calls int
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond}, isConflict, func(context.Context) error {
		calls++
		return business
	})
	if err != business {
		t.Fatalf("expected the business error unchanged, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("unexpected attempts: got=%d want=1", calls)
	}
}
