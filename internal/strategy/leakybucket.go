package strategy

import "math"

// evalLeakyBucket drains the level at limit/window per second and admits
// while level plus cost fits the burst capacity. Arrivals beyond the drain
// rate are rejected rather than queued, so the downstream sees a constant
// worst-case rate.
func evalLeakyBucket(state CounterState, p Params, cost int64, now float64) (CounterState, Outcome) {
	capacity := float64(p.Burst)
	rate := float64(p.Limit) / p.Window

	level := 0.0
	if state.UpdatedAt > 0 {
		elapsed := math.Max(0, now-state.UpdatedAt)
		level = math.Max(0, state.Level-elapsed*rate)
	}

	out := Outcome{}
	if level+float64(cost) <= capacity+Epsilon {
		if cost > 0 {
			level += float64(cost)
		}
		out.Allowed = true
	} else {
		out.RetryAfter = (level + float64(cost) - capacity) / rate
	}
	out.Remaining = clampRemaining(capacity-level, p.Limit)
	out.ResetAt = now + level/rate

	state.Level = level
	state.UpdatedAt = now
	return state, out
}
