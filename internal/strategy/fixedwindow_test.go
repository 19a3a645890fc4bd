package strategy

import "testing"

func TestFixed_ConservationWithinWindow(t *testing.T) {
	p := Params{Limit: 50, Window: 60}
	state := CounterState{}
	var out Outcome
	for i := 0; i < 10; i++ {
		state, out = evalFixedWindow(state, p, 5, float64(i))
		if !out.Allowed {
			t.Fatalf("request %d denied", i+1)
		}
	}
	if state.CurrCount != 50 {
		t.Fatalf("expected accounted total 50, got %d", state.CurrCount)
	}
	if out.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", out.Remaining)
	}
}

func TestFixed_HardResetAtBoundary(t *testing.T) {
	p := Params{Limit: 100, Window: 60}
	state := CounterState{}
	var out Outcome
	for i := 0; i < 100; i++ {
		state, out = evalFixedWindow(state, p, 1, 59)
		if !out.Allowed {
			t.Fatalf("first burst request %d denied", i+1)
		}
	}
	// Unlike the sliding window, the full budget reopens at the boundary.
	for i := 0; i < 100; i++ {
		state, out = evalFixedWindow(state, p, 1, 61)
		if !out.Allowed {
			t.Fatalf("second burst request %d denied", i+1)
		}
	}
}

func TestFixed_RetryAfterIsTimeToBoundary(t *testing.T) {
	p := Params{Limit: 1, Window: 60}
	state, _ := evalFixedWindow(CounterState{}, p, 1, 10)
	_, out := evalFixedWindow(state, p, 1, 15)
	if out.Allowed {
		t.Fatalf("expected deny")
	}
	if out.RetryAfter != 45 {
		t.Fatalf("expected retry_after 45s, got %v", out.RetryAfter)
	}
	if out.ResetAt != 60 {
		t.Fatalf("expected reset_at 60, got %v", out.ResetAt)
	}
}

func TestFixed_CostLargerThanRemainingDenied(t *testing.T) {
	p := Params{Limit: 10, Window: 60}
	state, out := evalFixedWindow(CounterState{}, p, 8, 0)
	if !out.Allowed {
		t.Fatalf("expected allow for cost within limit")
	}
	state, out = evalFixedWindow(state, p, 3, 1)
	if out.Allowed {
		t.Fatalf("expected deny when cost exceeds remaining")
	}
	if out.Remaining != 2 {
		t.Fatalf("expected remaining 2 untouched by denied request, got %d", out.Remaining)
	}
	_ = state
}
