package scanner

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces probe dispatch to a fixed number of probes per second.
// A nil *Limiter never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter returns a limiter allowing rps probes per second, or nil
// when rps <= 0 (unlimited).
func NewLimiter(rps float64) *Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until the next probe may be dispatched or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
