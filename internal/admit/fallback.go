package admit

import "fmt"

// FallbackPolicy decides the outcome when the counter store is unreachable.
type FallbackPolicy string

const (
	// FailClosed rejects while the store is down, preserving quota integrity.
	FailClosed FallbackPolicy = "fail_closed"
	// FailOpen admits while the store is down, preserving availability.
	FailOpen FallbackPolicy = "fail_open"
)

// ParseFallbackPolicy validates a configured policy name. There is no
// default; operators must choose one explicitly.
func ParseFallbackPolicy(raw string) (FallbackPolicy, error) {
	switch FallbackPolicy(raw) {
	case FailClosed, FailOpen:
		return FallbackPolicy(raw), nil
	case "":
		return "", fmt.Errorf("fallback policy is required (%q or %q)", FailClosed, FailOpen)
	default:
		return "", fmt.Errorf("unknown fallback policy %q", raw)
	}
}
