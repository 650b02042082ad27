package util

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCircuitBreakerOpensAfterThresholdAndRecovers(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("llm", 2, time.Minute, zap.NewNop()).WithClock(func() time.Time { return now })

	cb.RecordFailure(0)
	if !cb.CanExecute() {
		t.Fatalf("expected circuit to stay closed below threshold")
	}

	cb.RecordFailure(0)
	if cb.CanExecute() {
		t.Fatalf("expected circuit to open at threshold")
	}
	status := cb.GetStatus()
	if status.NextRetryTime == nil || !status.NextRetryTime.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected next retry time: %+v", status.NextRetryTime)
	}

	now = now.Add(time.Minute)
	if got := cb.State(); got != CircuitStateHalfOpen {
		t.Fatalf("expected HALF_OPEN after cool-down, got %s", got)
	}

	cb.RecordSuccess()
	if got := cb.State(); got != CircuitStateClosed {
		t.Fatalf("expected CLOSED after probe success, got %s", got)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("llm", 1, time.Minute, nil).WithClock(func() time.Time { return now })

	cb.RecordFailure(0)
	now = now.Add(2 * time.Minute)
	if cb.State() != CircuitStateHalfOpen {
		t.Fatalf("expected HALF_OPEN")
	}

	cb.RecordFailure(10 * time.Minute)
	if cb.CanExecute() {
		t.Fatalf("expected circuit to reopen after half-open failure")
	}
	if next := cb.GetStatus().NextRetryTime; next == nil || !next.Equal(now.Add(10*time.Minute)) {
		t.Fatalf("custom timeout not applied: %v", next)
	}
}

func TestRoundTo(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{12.346, 12.35},
		{250.0, 250},
		{0, 0},
		{100.0 / 3.0, 33.33},
	}
	for _, tc := range cases {
		if got := RoundTo(tc.in, 2); got != tc.want {
			t.Errorf("RoundTo(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestUniqueStringsKeepsOrder(t *testing.T) {
	got := UniqueStrings([]string{"b", "a", "", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestChunk(t *testing.T) {
	values := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		values = append(values, "id")
	}
	chunks := Chunk(values, 50)
	if len(chunks) != 3 || len(chunks[0]) != 50 || len(chunks[2]) != 20 {
		t.Fatalf("unexpected chunk sizes: %d", len(chunks))
	}
	if Chunk(nil, 50) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  a \n\t b   c "); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}
