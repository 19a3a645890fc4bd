package admission

import "errors"

// ErrUnknownTenant indicates no quota record exists and no default tier is
// configured. Always surfaced to the caller, never silently defaulted.
var ErrUnknownTenant = errors.New("unknown tenant")

// ErrStoreUnavailable indicates a timeout or connection failure talking to
// the shared counter store.
var ErrStoreUnavailable = errors.New("counter store unavailable")

// ErrInvalidConfiguration indicates a malformed quota or limit definition.
// Raised at construction time, not per request.
var ErrInvalidConfiguration = errors.New("invalid configuration")
