// Package providers maps configured provider names to generation backends
// and assembles the fallback chain used by the task handlers.
package providers

import (
	"fmt"
	"sort"
	"time"

	"docvision/internal/backend"
	"docvision/internal/backend/claude"
	"docvision/internal/backend/gemini"
	"docvision/internal/backend/openai"
	"docvision/internal/config"
	"docvision/internal/domain"
	"docvision/internal/port"
)

// Constructor builds a backend from its provider config.
type Constructor func(cfg *config.ProviderConfig) port.GenerationBackend

var constructors = map[string]Constructor{
	"claude": func(cfg *config.ProviderConfig) port.GenerationBackend { return claude.New(cfg) },
	"openai": func(cfg *config.ProviderConfig) port.GenerationBackend { return openai.New(cfg) },
	"gemini": func(cfg *config.ProviderConfig) port.GenerationBackend { return gemini.New(cfg) },
}

// Names lists the supported provider names.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the backend for a single provider config.
func New(cfg *config.ProviderConfig) (port.GenerationBackend, error) {
	ctor, ok := constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, cfg.Provider)
	}
	return ctor(cfg), nil
}

// NewChain builds every configured provider, in priority order, behind a
// FallbackBackend and wraps the result with throttling and a per-call timeout.
func NewChain(cfg *config.BackendConfig) (port.GenerationBackend, error) {
	provs := cfg.Providers()
	if len(provs) == 0 {
		return nil, fmt.Errorf("%w: no backend provider configured", domain.ErrUnknownProvider)
	}

	backends := make([]port.GenerationBackend, 0, len(provs))
	names := make([]string, 0, len(provs))
	for _, p := range provs {
		b, err := New(p)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
		names = append(names, p.Provider)
	}

	var chain port.GenerationBackend = backends[0]
	if len(backends) > 1 {
		chain = backend.NewFallbackBackend(backends, names)
	}
	timeout := time.Duration(cfg.CallTimeoutSecs) * time.Second
	return backend.NewGuardedBackend(chain, cfg.RequestsPerSecond, cfg.Burst, timeout), nil
}
