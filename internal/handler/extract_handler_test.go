package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvision/internal/backend"
	"docvision/internal/domain"
	"docvision/internal/handler"
	"docvision/internal/loader"
	"docvision/internal/port"
	"docvision/internal/service"
	"docvision/internal/task"
	"docvision/mocks"
)

func newExtractHandler(ext service.ExtractionService, maxBytes int64) *handler.ExtractHandler {
	return handler.NewExtractHandler(ext, loader.New(nil, maxBytes), maxBytes)
}

func TestExtractHandler_Extract_Success(t *testing.T) {
	ext := new(mocks.MockExtractionService)
	h := newExtractHandler(ext, 1<<20)

	ext.On("Extract", mock.Anything, domain.TaskFieldExtraction,
		mock.MatchedBy(func(img port.ImageRef) bool {
			return img.ContentType == "image/png" && img.Source == "scan.png"
		}),
		mock.MatchedBy(func(opts domain.TaskOptions) bool {
			return opts.Preset == "receipt" && opts.WithBoxes && opts.Temperature != nil && *opts.Temperature == 0.5
		}),
	).Return(&service.ExtractionResult{
		DocumentID: "doc-1",
		Record:     &domain.Record{Kind: domain.TaskFieldExtraction, Text: "ok"},
	}, nil)

	req := multipartRequest(t, "/extract/field_extraction",
		map[string]string{"preset": "receipt", "with_boxes": "true", "temperature": "0.5"},
		upload{field: "file", name: "scan.png", data: pngHeader})
	w := serve(http.MethodPost, "/extract/:task", h.Extract, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	ext.AssertExpectations(t)
}

func TestExtractHandler_Extract_UnknownTask(t *testing.T) {
	h := newExtractHandler(new(mocks.MockExtractionService), 1<<20)

	req := multipartRequest(t, "/extract/summarize", nil, upload{field: "file", name: "a.png", data: pngHeader})
	w := serve(http.MethodPost, "/extract/:task", h.Extract, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_TASK", decodeResponse(t, w).Error.Code)
}

func TestExtractHandler_Extract_MissingFile(t *testing.T) {
	h := newExtractHandler(new(mocks.MockExtractionService), 1<<20)

	req := multipartRequest(t, "/extract/ocr", map[string]string{"prompt": "x"})
	w := serve(http.MethodPost, "/extract/:task", h.Extract, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeResponse(t, w).Error.Code)
}

func TestExtractHandler_Extract_FileTooLarge(t *testing.T) {
	h := newExtractHandler(new(mocks.MockExtractionService), 8)

	req := multipartRequest(t, "/extract/ocr", nil, upload{field: "file", name: "big.png", data: pngHeader})
	w := serve(http.MethodPost, "/extract/:task", h.Extract, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestExtractHandler_Extract_UnsupportedContent(t *testing.T) {
	h := newExtractHandler(new(mocks.MockExtractionService), 1<<20)

	req := multipartRequest(t, "/extract/ocr", nil, upload{field: "file", name: "notes.txt", data: []byte("plain text notes")})
	w := serve(http.MethodPost, "/extract/:task", h.Extract, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestExtractHandler_Extract_BadOptions(t *testing.T) {
	h := newExtractHandler(new(mocks.MockExtractionService), 1<<20)

	tests := []struct {
		name   string
		fields map[string]string
		code   string
	}{
		{"unknown preset", map[string]string{"preset": "passport"}, "UNKNOWN_PRESET"},
		{"bad boolean", map[string]string{"with_boxes": "maybe"}, "INVALID_OPTIONS"},
		{"temperature out of range", map[string]string{"temperature": "3"}, "INVALID_OPTIONS"},
		{"invalid schema", map[string]string{"schema": `{"fields": []}`}, "INVALID_SCHEMA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, "/extract/field_extraction", tt.fields, upload{field: "file", name: "a.png", data: pngHeader})
			w := serve(http.MethodPost, "/extract/:task", h.Extract, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestExtractHandler_Extract_RateLimited(t *testing.T) {
	ext := new(mocks.MockExtractionService)
	h := newExtractHandler(ext, 1<<20)

	ext.On("Extract", mock.Anything, domain.TaskOCR, mock.Anything, mock.Anything).
		Return(nil, &backend.RateLimitError{Provider: "claude"})

	req := multipartRequest(t, "/extract/ocr", nil, upload{field: "file", name: "a.png", data: pngHeader})
	w := serve(http.MethodPost, "/extract/:task", h.Extract, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decodeResponse(t, w).Error.Code)
}

func TestExtractHandler_ExtractPages_Success(t *testing.T) {
	ext := new(mocks.MockExtractionService)
	h := newExtractHandler(ext, 1<<20)

	ext.On("ExtractPages", mock.Anything, domain.TaskInvoice,
		mock.MatchedBy(func(pages []port.ImageRef) bool {
			return len(pages) == 2 && pages[0].Source == "p1.png" && pages[1].Source == "p2.png"
		}),
		domain.MergeStructured, mock.Anything,
	).Return(&service.PagesResult{DocumentID: "doc-2", Document: &task.DocumentResult{MergedText: "one\n\ntwo"}}, nil)

	req := multipartRequest(t, "/extract/invoice/pages", map[string]string{"merge": "structured"},
		upload{field: "files", name: "p1.png", data: pngHeader},
		upload{field: "files", name: "p2.png", data: pngHeader})
	w := serve(http.MethodPost, "/extract/:task/pages", h.ExtractPages, req)

	assert.Equal(t, http.StatusOK, w.Code)
	ext.AssertExpectations(t)
}

func TestExtractHandler_ExtractPages_Validation(t *testing.T) {
	h := newExtractHandler(new(mocks.MockExtractionService), 1<<20)

	t.Run("unknown merge strategy", func(t *testing.T) {
		req := multipartRequest(t, "/extract/ocr/pages", map[string]string{"merge": "zip"},
			upload{field: "files", name: "p1.png", data: pngHeader})
		w := serve(http.MethodPost, "/extract/:task/pages", h.ExtractPages, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "UNKNOWN_MERGE_STRATEGY", decodeResponse(t, w).Error.Code)
	})

	t.Run("no pages", func(t *testing.T) {
		req := multipartRequest(t, "/extract/ocr/pages", map[string]string{"merge": "concatenate"})
		w := serve(http.MethodPost, "/extract/:task/pages", h.ExtractPages, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_FILE", decodeResponse(t, w).Error.Code)
	})
}
