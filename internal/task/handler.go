// Package task holds one handler per document-understanding task. A handler
// builds the prompts for its task, calls the generation backend and turns the
// raw model text into a typed domain.Record.
package task

import (
	"context"
	"fmt"

	"docvision/internal/domain"
	"docvision/internal/port"
)

// Handler processes one image for one task kind.
type Handler interface {
	Kind() domain.TaskKind
	SystemPrompt() string
	// UserPrompt returns the prompt Process would send for opts. Options.Prompt
	// overrides the generated prompt.
	UserPrompt(opts domain.TaskOptions) string
	Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error)
}

// base carries the backend shared by every handler.
type base struct {
	backend port.GenerationBackend
}

func (b base) generate(ctx context.Context, h Handler, image port.ImageRef, opts domain.TaskOptions) (string, error) {
	raw, err := b.backend.Generate(ctx, port.GenerateInput{
		SystemPrompt: h.SystemPrompt(),
		UserPrompt:   h.UserPrompt(opts),
		Image:        image,
		MaxTokens:    opts.MaxTokens,
		Temperature:  opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s: generating: %w", h.Kind(), err)
	}
	return raw, nil
}

func promptOr(opts domain.TaskOptions, fallback string) string {
	if opts.Prompt != "" {
		return opts.Prompt
	}
	return fallback
}
