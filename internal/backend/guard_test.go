package backend_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvision/internal/backend"
	"docvision/internal/domain"
	"docvision/internal/port"
	"docvision/mocks"
)

// slowBackend blocks until its context is done.
type slowBackend struct{}

func (slowBackend) Generate(ctx context.Context, _ port.GenerateInput) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGuardedBackend_PassesThrough(t *testing.T) {
	next := new(mocks.MockGenerationBackend)
	next.On("Generate", mock.Anything, fallbackInput).Return("text", nil)

	g := backend.NewGuardedBackend(next, 0, 0, time.Second)
	out, err := g.Generate(context.Background(), fallbackInput)

	require.NoError(t, err)
	assert.Equal(t, "text", out)
}

func TestGuardedBackend_Timeout(t *testing.T) {
	g := backend.NewGuardedBackend(slowBackend{}, 0, 0, 20*time.Millisecond)

	_, err := g.Generate(context.Background(), fallbackInput)

	assert.ErrorIs(t, err, domain.ErrBackendTimeout)
}

func TestGuardedBackend_EmptyOutput(t *testing.T) {
	next := new(mocks.MockGenerationBackend)
	next.On("Generate", mock.Anything, fallbackInput).Return("", nil)

	g := backend.NewGuardedBackend(next, 0, 0, 0)
	_, err := g.Generate(context.Background(), fallbackInput)

	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestGuardedBackend_RateLimiterPastDeadline(t *testing.T) {
	next := new(mocks.MockGenerationBackend)
	next.On("Generate", mock.Anything, fallbackInput).Return("ok", nil)

	// One token per minute: the second call cannot get a token before its deadline.
	g := backend.NewGuardedBackend(next, 1.0/60, 1, 30*time.Millisecond)

	_, err := g.Generate(context.Background(), fallbackInput)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), fallbackInput)
	assert.ErrorIs(t, err, domain.ErrBackendTimeout)
	next.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGuardedBackend_RateLimiterCallerCancelled(t *testing.T) {
	next := new(mocks.MockGenerationBackend)
	next.On("Generate", mock.Anything, fallbackInput).Return("ok", nil)

	g := backend.NewGuardedBackend(next, 1.0/60, 1, 0)
	_, err := g.Generate(context.Background(), fallbackInput)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, fallbackInput)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrBackendTimeout)
}
