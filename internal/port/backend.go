package port

import "context"

// ImageRef is an input document ready to hand to a generation backend.
type ImageRef struct {
	Data        []byte
	ContentType string
	Source      string
}

// GenerateInput carries one prompt/image pair.
type GenerateInput struct {
	SystemPrompt string
	UserPrompt   string
	Image        ImageRef
	MaxTokens    int
	Temperature  *float64
}

// GenerationBackend turns a prompt and an image into raw model text.
type GenerationBackend interface {
	Generate(ctx context.Context, input GenerateInput) (string, error)
}

// ImageLoader resolves a source reference (path or URI) into an ImageRef.
type ImageLoader interface {
	Load(ctx context.Context, sourceRef string) (ImageRef, error)
}
