package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvision/internal/backend"
	"docvision/internal/backend/providers"
	"docvision/internal/config"
	"docvision/internal/domain"
)

func TestNew_KnownProviders(t *testing.T) {
	for _, name := range providers.Names() {
		b, err := providers.New(&config.ProviderConfig{Provider: name, APIKey: "k"})
		require.NoError(t, err, name)
		assert.NotNil(t, b)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	b, err := providers.New(&config.ProviderConfig{Provider: "nonexistent-provider-xyz"})

	assert.Nil(t, b)
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"claude", "gemini", "openai"}, providers.Names())
}

func TestNewChain_NoProviders(t *testing.T) {
	_, err := providers.NewChain(&config.BackendConfig{})
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestNewChain_WrapsInGuard(t *testing.T) {
	chain, err := providers.NewChain(&config.BackendConfig{
		Primary:   config.ProviderConfig{Provider: "claude", APIKey: "a"},
		Secondary: config.ProviderConfig{Provider: "openai", APIKey: "b"},
	})
	require.NoError(t, err)

	_, ok := chain.(*backend.GuardedBackend)
	assert.True(t, ok)
}

func TestNewChain_PropagatesUnknownProvider(t *testing.T) {
	_, err := providers.NewChain(&config.BackendConfig{
		Primary: config.ProviderConfig{Provider: "bogus"},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}
