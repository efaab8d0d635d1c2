package backend_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvision/internal/backend"
	"docvision/internal/port"
	"docvision/mocks"
)

var fallbackInput = port.GenerateInput{UserPrompt: "extract", Image: port.ImageRef{Data: []byte("x"), ContentType: "image/png"}}

func TestFallbackBackend_FirstSucceeds(t *testing.T) {
	b1 := new(mocks.MockGenerationBackend)
	b2 := new(mocks.MockGenerationBackend)
	b1.On("Generate", mock.Anything, fallbackInput).Return("from claude", nil)

	fb := backend.NewFallbackBackend([]port.GenerationBackend{b1, b2}, []string{"claude", "openai"})
	out, err := fb.Generate(context.Background(), fallbackInput)

	require.NoError(t, err)
	assert.Equal(t, "from claude", out)
	b2.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestFallbackBackend_FirstFails_SecondSucceeds(t *testing.T) {
	b1 := new(mocks.MockGenerationBackend)
	b2 := new(mocks.MockGenerationBackend)
	b1.On("Generate", mock.Anything, fallbackInput).Return("", errors.New("generic error"))
	b2.On("Generate", mock.Anything, fallbackInput).Return("from openai", nil)

	fb := backend.NewFallbackBackend([]port.GenerationBackend{b1, b2}, []string{"claude", "openai"})
	out, err := fb.Generate(context.Background(), fallbackInput)

	require.NoError(t, err)
	assert.Equal(t, "from openai", out)
}

func TestFallbackBackend_AllRateLimited(t *testing.T) {
	b1 := new(mocks.MockGenerationBackend)
	b2 := new(mocks.MockGenerationBackend)
	b1.On("Generate", mock.Anything, fallbackInput).Return("", backend.NewRateLimitError("claude", fmt.Errorf("429"), 30))
	b2.On("Generate", mock.Anything, fallbackInput).Return("", backend.NewRateLimitError("openai", fmt.Errorf("429"), 10))

	fb := backend.NewFallbackBackend([]port.GenerationBackend{b1, b2}, []string{"claude", "openai"})
	_, err := fb.Generate(context.Background(), fallbackInput)

	var rlErr *backend.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackBackend_AllFail_NonRateLimit(t *testing.T) {
	b1 := new(mocks.MockGenerationBackend)
	b2 := new(mocks.MockGenerationBackend)
	b1.On("Generate", mock.Anything, fallbackInput).Return("", backend.NewRateLimitError("claude", fmt.Errorf("429"), 30))
	b2.On("Generate", mock.Anything, fallbackInput).Return("", errors.New("server error"))

	fb := backend.NewFallbackBackend([]port.GenerationBackend{b1, b2}, []string{"claude", "openai"})
	_, err := fb.Generate(context.Background(), fallbackInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
	var rlErr *backend.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackBackend_SkipsOpenCircuit(t *testing.T) {
	b1 := new(mocks.MockGenerationBackend)
	b2 := new(mocks.MockGenerationBackend)
	b1.On("Generate", mock.Anything, fallbackInput).Return("", backend.NewRateLimitError("claude", fmt.Errorf("429"), 60)).Once()
	b2.On("Generate", mock.Anything, fallbackInput).Return("ok", nil)

	fb := backend.NewFallbackBackend([]port.GenerationBackend{b1, b2}, []string{"claude", "openai"})

	_, err := fb.Generate(context.Background(), fallbackInput)
	require.NoError(t, err)
	_, err = fb.Generate(context.Background(), fallbackInput)
	require.NoError(t, err)

	b1.AssertNumberOfCalls(t, "Generate", 1)
	b2.AssertNumberOfCalls(t, "Generate", 2)
}

func TestFallbackBackend_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b1 := new(mocks.MockGenerationBackend)
	b2 := new(mocks.MockGenerationBackend)
	b1.On("Generate", mock.Anything, fallbackInput).Return("", context.Canceled)

	fb := backend.NewFallbackBackend([]port.GenerationBackend{b1, b2}, []string{"claude", "openai"})
	_, err := fb.Generate(ctx, fallbackInput)

	assert.ErrorIs(t, err, context.Canceled)
	b2.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestFallbackBackend_ConcurrentSafety(t *testing.T) {
	b1 := new(mocks.MockGenerationBackend)
	b2 := new(mocks.MockGenerationBackend)
	b1.On("Generate", mock.Anything, fallbackInput).Return("", backend.NewRateLimitError("claude", fmt.Errorf("429"), 60))
	b2.On("Generate", mock.Anything, fallbackInput).Return("ok", nil)

	fb := backend.NewFallbackBackend([]port.GenerationBackend{b1, b2}, []string{"claude", "openai"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := fb.Generate(context.Background(), fallbackInput)
			assert.NoError(t, err)
			assert.Equal(t, "ok", out)
		}()
	}
	wg.Wait()
}
