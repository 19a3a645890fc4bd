package strategy

import "math"

// evalSlidingWindow weights the previous window's count by the unexpired
// fraction of the current window. Effective count decays linearly, which
// smooths the boundary burst a fixed window would admit twice.
func evalSlidingWindow(state CounterState, p Params, cost int64, now float64) (CounterState, Outcome) {
	windowStart := alignWindow(now, p.Window)
	if windowStart > state.WindowStart+Epsilon {
		// Rollover. The old current count only carries over when the
		// stored window is the one immediately preceding now's window.
		if windowStart-state.WindowStart <= p.Window+Epsilon {
			state.PrevCount = state.CurrCount
		} else {
			state.PrevCount = 0
		}
		state.CurrCount = 0
		state.WindowStart = windowStart
	}
	// A zero-value state already describes an empty current window starting
	// at the epoch-aligned boundary, so no seeding step is needed.

	elapsedFraction := (now - state.WindowStart) / p.Window
	if elapsedFraction < 0 {
		elapsedFraction = 0
	}
	weight := math.Max(0, 1-elapsedFraction)
	effective := float64(state.CurrCount) + float64(state.PrevCount)*weight

	out := Outcome{ResetAt: state.WindowStart + p.Window}
	if effective+float64(cost) <= float64(p.Limit)+Epsilon {
		state.CurrCount += cost
		out.Allowed = true
		out.Remaining = clampRemaining(float64(p.Limit)-effective-float64(cost), p.Limit)
		state.UpdatedAt = now
		return state, out
	}

	out.Remaining = clampRemaining(float64(p.Limit)-effective, p.Limit)
	out.RetryAfter = slidingRetryAfter(state, p, cost, now)
	state.UpdatedAt = now
	return state, out
}

// slidingRetryAfter solves for the earliest time the decaying previous-window
// weight leaves room for cost. When the current window alone is already over
// budget, the caller must wait for the next rollover.
func slidingRetryAfter(state CounterState, p Params, cost int64, now float64) float64 {
	headroom := float64(p.Limit) - float64(cost) - float64(state.CurrCount)
	if headroom < 0 || state.PrevCount == 0 {
		return math.Max(0, state.WindowStart+p.Window-now)
	}
	// effective(t) = curr + prev * (1 - (t - windowStart)/window) <= limit - cost
	t := state.WindowStart + p.Window*(1-headroom/float64(state.PrevCount))
	return math.Max(0, t-now)
}
