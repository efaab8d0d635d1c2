package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"docvision/internal/domain"
	"docvision/internal/port"
)

// GuardedBackend throttles calls with a token bucket and bounds each call
// with a timeout. An expired call surfaces as domain.ErrBackendTimeout.
type GuardedBackend struct {
	next    port.GenerationBackend
	limiter *rate.Limiter
	timeout time.Duration
}

// NewGuardedBackend wraps next. A non-positive rps disables throttling and a
// non-positive timeout disables the deadline.
func NewGuardedBackend(next port.GenerationBackend, rps float64, burst int, timeout time.Duration) *GuardedBackend {
	var limiter *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &GuardedBackend{next: next, limiter: limiter, timeout: timeout}
}

func (g *GuardedBackend) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			// Wait fails early when the next token lands past the deadline.
			if _, ok := ctx.Deadline(); ok && !errors.Is(ctx.Err(), context.Canceled) {
				return "", fmt.Errorf("%w waiting for rate limiter: %v", domain.ErrBackendTimeout, err)
			}
			return "", fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	out, err := g.next.Generate(ctx, input)
	if err != nil {
		return "", g.wrap(ctx, err)
	}
	if out == "" {
		return "", domain.ErrEmptyResponse
	}
	return out, nil
}

func (g *GuardedBackend) wrap(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", domain.ErrBackendTimeout, g.timeout, err)
	}
	return err
}
