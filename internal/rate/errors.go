package rate

import "errors"

// ErrRedisUnavailable wraps Redis transport failures so callers can degrade.
var ErrRedisUnavailable = errors.New("rate backend unavailable")
