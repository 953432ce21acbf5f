package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joelnishanth/opsflow/internal/core"
)

func fastPolicy(maxAttempts int) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
		Multiplier:  1.0,
	}
}

func TestRetryPolicy_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryPolicy_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	notified := 0
	err := fastPolicy(3).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return core.ErrAgentFailure("probe", "flaky")
		}
		return nil
	}, func(attempt int, err error, delay time.Duration) {
		notified++
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if notified != 2 {
		t.Errorf("notifications = %d, want 2", notified)
	}
}

func TestRetryPolicy_NonRetryableFailsFast(t *testing.T) {
	calls := 0
	boom := errors.New("hard failure")
	err := fastPolicy(3).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Execute() error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if IsRetryExhausted(err) {
		t.Error("non-retryable failure should not report exhaustion")
	}
}

func TestRetryPolicy_Exhaustion(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return core.ErrAgentFailure("probe", "always down")
	}, nil)
	if !IsRetryExhausted(err) {
		t.Fatalf("Execute() error = %v, want RetryExhaustedError", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	var exhausted *RetryExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatal("error does not unwrap to RetryExhaustedError")
	}
	if !core.IsCategory(exhausted.LastErr, core.ErrCatAgent) {
		t.Errorf("last error category = %v, want agent", core.GetCategory(exhausted.LastErr))
	}
}

func TestRetryPolicy_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := fastPolicy(3).Execute(ctx, func(ctx context.Context) error {
		return core.ErrAgentFailure("probe", "down")
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestRetryPolicy_BackoffGrowth(t *testing.T) {
	p := &RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Multiplier:  2.0,
	}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second}, // capped
	}
	for _, tc := range cases {
		if got := p.CalculateDelayNoJitter(tc.attempt); got != tc.want {
			t.Errorf("CalculateDelayNoJitter(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestRetryPolicy_JitterBounds(t *testing.T) {
	p := &RetryPolicy{
		MaxAttempts:  3,
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.2,
	}
	base := float64(100 * time.Millisecond)
	for i := 0; i < 100; i++ {
		d := float64(p.CalculateDelay(1))
		if d < base*0.8 || d > base*1.2 {
			t.Fatalf("jittered delay %v outside ±20%% of base", time.Duration(d))
		}
	}
}
