package strategy

// evalFixedWindow resets a hard counter at every epoch-aligned window
// boundary. The full-limit burst it admits across a boundary is an accepted
// trade-off for the cheapest possible evaluation.
func evalFixedWindow(state CounterState, p Params, cost int64, now float64) (CounterState, Outcome) {
	windowStart := alignWindow(now, p.Window)
	if state.WindowStart < windowStart-Epsilon {
		state.CurrCount = 0
		state.WindowStart = windowStart
	}

	out := Outcome{ResetAt: state.WindowStart + p.Window}
	if state.CurrCount+cost <= p.Limit {
		state.CurrCount += cost
		out.Allowed = true
	} else {
		out.RetryAfter = maxFloat(0, out.ResetAt-now)
	}
	out.Remaining = clampRemaining(float64(p.Limit-state.CurrCount), p.Limit)
	state.UpdatedAt = now
	return state, out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
