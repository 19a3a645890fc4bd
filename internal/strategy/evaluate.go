package strategy

import (
	"fmt"
	"math"
)

// Epsilon guards float comparisons against flapping from rounding error.
const Epsilon = 1e-6

// Params are the effective limits one evaluation runs against.
type Params struct {
	// Limit is the admitted cost budget per Window.
	Limit int64
	// Burst is the bucket capacity for token and leaky buckets.
	Burst int64
	// Window is the window length in seconds.
	Window float64
}

// Outcome is the decision produced by one evaluation.
type Outcome struct {
	Allowed bool
	// Remaining is the budget left after the decision, clamped to [0, Limit].
	Remaining int64
	// RetryAfter is the seconds until a same-cost request could be admitted.
	// Zero when allowed.
	RetryAfter float64
	// ResetAt is the Unix time when the counter fully resets.
	ResetAt float64
}

// EvalFunc evaluates one request of the given cost against a counter
// snapshot at time now (Unix seconds) and returns the replacement state.
// A cost of zero peeks without consuming budget.
type EvalFunc func(state CounterState, p Params, cost int64, now float64) (CounterState, Outcome)

// Evaluator returns the evaluation function for a strategy. The dispatch
// happens once at quota-resolution time, not per call.
func Evaluator(s Strategy) (EvalFunc, error) {
	switch s {
	case SlidingWindow:
		return evalSlidingWindow, nil
	case TokenBucket:
		return evalTokenBucket, nil
	case FixedWindow:
		return evalFixedWindow, nil
	case LeakyBucket:
		return evalLeakyBucket, nil
	default:
		return nil, fmt.Errorf("unsupported strategy %q", s)
	}
}

// alignWindow returns the epoch-aligned start of the window containing now.
func alignWindow(now, window float64) float64 {
	return math.Floor(now/window) * window
}

// clampRemaining bounds a remaining budget to [0, limit].
func clampRemaining(remaining float64, limit int64) int64 {
	r := int64(math.Floor(remaining + Epsilon))
	if r < 0 {
		return 0
	}
	if r > limit {
		return limit
	}
	return r
}
