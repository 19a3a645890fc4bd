package strategy

import "math"

// evalTokenBucket refills tokens at limit/window per second up to the burst
// capacity, then spends cost tokens on admission. A never-seen key starts
// with a full bucket.
func evalTokenBucket(state CounterState, p Params, cost int64, now float64) (CounterState, Outcome) {
	capacity := float64(p.Burst)
	rate := float64(p.Limit) / p.Window

	tokens := capacity
	if state.UpdatedAt > 0 {
		elapsed := math.Max(0, now-state.UpdatedAt)
		tokens = math.Min(capacity, state.Tokens+elapsed*rate)
	}

	out := Outcome{}
	if tokens+Epsilon >= float64(cost) {
		if cost > 0 {
			tokens -= float64(cost)
		}
		out.Allowed = true
	} else {
		out.RetryAfter = (float64(cost) - tokens) / rate
	}
	out.Remaining = clampRemaining(tokens, p.Limit)
	out.ResetAt = now + (capacity-tokens)/rate

	state.Tokens = tokens
	state.UpdatedAt = now
	return state, out
}
