package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvision/internal/backend"
	"docvision/internal/backend/claude"
	"docvision/internal/config"
	"docvision/internal/domain"
	"docvision/internal/port"
)

func newTestBackend(serverURL string) *claude.Backend {
	return claude.NewWithEndpoint(&config.ProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}, serverURL)
}

func TestBackend_Generate_ImageSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(1024), reqBody["max_tokens"])
		assert.Equal(t, "You are an OCR engine.", reqBody["system"])
		assert.Equal(t, 0.2, reqBody["temperature"])

		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		require.Len(t, content, 2)
		assert.Equal(t, "image", content[0].(map[string]interface{})["type"])
		assert.Equal(t, "text", content[1].(map[string]interface{})["type"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": "Hello "}, {"type": "text", "text": "world"}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	temp := 0.2
	out, err := newTestBackend(server.URL).Generate(context.Background(), port.GenerateInput{
		SystemPrompt: "You are an OCR engine.",
		UserPrompt:   "Read the text.",
		Image:        port.ImageRef{Data: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png"},
		MaxTokens:    1024,
		Temperature:  &temp,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestBackend_Generate_PDFUsesDocumentBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		block := msg["content"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "document", block["type"])
		assert.Equal(t, float64(4096), reqBody["max_tokens"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": "ok"}},
		})
	}))
	defer server.Close()

	out, err := newTestBackend(server.URL).Generate(context.Background(), port.GenerateInput{
		UserPrompt: "Read",
		Image:      port.ImageRef{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"},
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestBackend_Generate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Generate(context.Background(), port.GenerateInput{UserPrompt: "x"})

	var rlErr *backend.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 15*time.Second, rlErr.RetryAfter)
}

func TestBackend_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`internal`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Generate(context.Background(), port.GenerateInput{UserPrompt: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestBackend_Generate_MaxTokensTruncation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": "partial"}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Generate(context.Background(), port.GenerateInput{UserPrompt: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestBackend_Generate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Generate(context.Background(), port.GenerateInput{UserPrompt: "x"})

	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestBackend_Generate_UnsupportedContentType(t *testing.T) {
	_, err := newTestBackend("http://127.0.0.1:0").Generate(context.Background(), port.GenerateInput{
		UserPrompt: "x",
		Image:      port.ImageRef{Data: []byte("II*"), ContentType: "image/tiff"},
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedContentType)
}
