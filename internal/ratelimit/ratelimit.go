// Package ratelimit counts events per key inside fixed windows. Checkout uses
// it for per-client attempt and failure budgets.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter records one event for key and reports whether the key is still
// within limit for the current window. A limit <= 0 disables the check.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}
