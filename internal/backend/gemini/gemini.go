package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"docvision/internal/backend"
	"docvision/internal/config"
	"docvision/internal/domain"
	"docvision/internal/port"
)

const defaultMaxTokens = 4096

// Backend implements port.GenerationBackend on top of the Gemini SDK.
type Backend struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration

	mu     sync.Mutex
	client *genai.Client
}

// New creates a Gemini backend. The SDK client is created on first use.
func New(cfg *config.ProviderConfig) *Backend {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Backend{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: cfg.Endpoint,
		timeout: timeout,
	}
}

func (b *Backend) sdkClient(ctx context.Context) (*genai.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		return b.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      b.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: b.timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: b.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	b.client = client
	return client, nil
}

func (b *Backend) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	parts, err := buildParts(input)
	if err != nil {
		return "", fmt.Errorf("building content parts: %w", err)
	}

	client, err := b.sdkClient(ctx)
	if err != nil {
		return "", err
	}

	maxTokens := input.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if input.SystemPrompt != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: input.SystemPrompt}},
		}
	}
	if input.Temperature != nil {
		t := float32(*input.Temperature)
		genCfg.Temperature = &t
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := client.Models.GenerateContent(ctx, b.model, contents, genCfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", backend.NewRateLimitError("gemini", fmt.Errorf("gemini API error: %w", err), 0)
		}
		return "", fmt.Errorf("calling gemini API: %w", err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("output truncated (finish_reason: MAX_TOKENS): response exceeded output token limit")
	}

	text := resp.Text()
	if text == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}

func buildParts(input port.GenerateInput) ([]*genai.Part, error) {
	var parts []*genai.Part
	if len(input.Image.Data) > 0 {
		switch input.Image.ContentType {
		case "application/pdf", "image/jpeg", "image/png", "image/webp", "image/heic":
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{MIMEType: input.Image.ContentType, Data: input.Image.Data},
			})
		default:
			return nil, fmt.Errorf("%w for gemini: %s", domain.ErrUnsupportedContentType, input.Image.ContentType)
		}
	}
	parts = append(parts, &genai.Part{Text: input.UserPrompt})
	return parts, nil
}
