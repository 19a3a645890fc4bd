package strategy

// CounterState is the mutable counter snapshot stored per key. Which fields
// are populated depends on the strategy; unused fields stay zero and are
// omitted from the serialized form.
type CounterState struct {
	// PrevCount and CurrCount hold window counters (sliding window uses
	// both, fixed window only CurrCount).
	PrevCount int64 `json:"p,omitempty"`
	CurrCount int64 `json:"c,omitempty"`
	// WindowStart is the epoch-aligned start of the current window.
	WindowStart float64 `json:"w,omitempty"`
	// Tokens is the token bucket fill, Level the leaky bucket level.
	Tokens float64 `json:"t,omitempty"`
	Level  float64 `json:"l,omitempty"`
	// UpdatedAt is the last refill/leak timestamp. Zero means the key has
	// never been touched, which matters for token buckets: a fresh bucket
	// starts full.
	UpdatedAt float64 `json:"u,omitempty"`
}
