package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"rate limit", NewStatusError(429, errors.New("slow down")), true},
		{"server error", NewStatusError(500, errors.New("boom")), true},
		{"bad gateway", NewStatusError(502, errors.New("boom")), true},
		{"not found", NewStatusError(404, errors.New("missing")), false},
		{"unprocessable", NewStatusError(422, errors.New("bad payload")), false},
		{"plain error", errors.New("network down"), false},
		{"wrapped status", errors.Join(errors.New("outer"), NewStatusError(503, errors.New("inner"))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RetryableStatus(tt.err); got != tt.expect {
				t.Errorf("RetryableStatus() = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestBackoffDoubles(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond}

	expects := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}
	for attempt, want := range expects {
		if got := p.Backoff(attempt); got != want {
			t.Errorf("Backoff(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: RetryableStatus}

	calls := 0
	err := Do(context.Background(), p, "test", func(ctx context.Context) error {
		calls++
		return NewStatusError(404, errors.New("missing"))
	})

	if err == nil {
		t.Fatal("Do() = nil, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (non-retryable)", calls)
	}
}

func TestDoRetriesUntilCeiling(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: RetryableStatus}

	calls := 0
	err := Do(context.Background(), p, "test", func(ctx context.Context) error {
		calls++
		return NewStatusError(503, errors.New("unavailable"))
	})

	if err == nil {
		t.Fatal("Do() = nil, want error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoRecovers(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Retryable: RetryableStatus}

	calls := 0
	err := Do(context.Background(), p, "test", func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return NewStatusError(429, errors.New("rate limited"))
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do() = %v, want nil", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoHonorsContext(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Hour, Retryable: RetryableStatus}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, p, "test", func(ctx context.Context) error {
		return NewStatusError(500, errors.New("boom"))
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}
