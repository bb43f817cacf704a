package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limited throttles calls to the wrapped Generator and bounds each call with a timeout.
type Limited struct {
	next    Generator
	limiter *rate.Limiter
	timeout time.Duration
}

var _ Generator = (*Limited)(nil)

// NewLimited allows rpm calls per minute with the given burst. A non-positive timeout disables it.
func NewLimited(next Generator, rpm, burst int, timeout time.Duration) *Limited {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if rpm > 0 {
		limit = rate.Limit(float64(rpm) / 60.0)
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
	}
}

// Generate implements Generator.
func (l *Limited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %w", ErrModelInvocation, err)
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return l.next.Generate(ctx, prompt)
}
