// Package strategy implements the admission algorithms as pure functions
// over a counter snapshot and the current time.
package strategy

import "fmt"

// Strategy names a limiting algorithm.
type Strategy string

const (
	// SlidingWindow smooths window-boundary bursts by weighting the
	// previous window's count against elapsed time.
	SlidingWindow Strategy = "sliding_window"
	// TokenBucket refills at a steady rate and absorbs bursts up to capacity.
	TokenBucket Strategy = "token_bucket"
	// FixedWindow resets a hard counter at each window boundary. It is the
	// cheapest strategy and the default for latency-sensitive callers; it
	// knowingly admits a full-limit burst at the window edge.
	FixedWindow Strategy = "fixed_window"
	// LeakyBucket drains at a constant rate regardless of arrival pattern.
	LeakyBucket Strategy = "leaky_bucket"
)

// Parse converts a configuration string to a Strategy.
func Parse(value string) (Strategy, error) {
	switch Strategy(value) {
	case SlidingWindow, TokenBucket, FixedWindow, LeakyBucket:
		return Strategy(value), nil
	case "":
		return FixedWindow, nil
	default:
		return "", fmt.Errorf("unsupported strategy %q", value)
	}
}

// Windowed reports whether the strategy counts in minute/hour/day windows
// rather than a single bucket.
func (s Strategy) Windowed() bool {
	return s == SlidingWindow || s == FixedWindow
}
