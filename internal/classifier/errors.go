package classifier

import "errors"

// Failure categories for AI classification attempts. Both are recoverable
// by the moderation fallback policy; neither fabricates a score.
var (
	// ErrBackendUnavailable covers network failures, timeouts, non-2xx
	// responses, and an open circuit breaker.
	ErrBackendUnavailable = errors.New("moderation backend unavailable")
	// ErrMalformedResponse covers payloads that cannot be parsed into the
	// expected classification fragment.
	ErrMalformedResponse = errors.New("malformed moderation response")
)
