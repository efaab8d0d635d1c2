package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvision/internal/domain"
	"docvision/internal/port"
	"docvision/internal/service"
	"docvision/mocks"
)

func pngImage(source string) port.ImageRef {
	return port.ImageRef{Data: []byte("img"), ContentType: "image/png", Source: source}
}

func TestExtractionService_Extract(t *testing.T) {
	backend := new(mocks.MockGenerationBackend)
	backend.On("Generate", mock.Anything, mock.MatchedBy(func(in port.GenerateInput) bool {
		return in.MaxTokens == 4096 && in.Temperature != nil && *in.Temperature == 0.1
	})).Return("Hello world", nil)

	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventExtractionStarted
	})).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventExtractionCompleted
	})).Once()

	archive := new(mocks.MockResultRepo)
	archive.On("Save", mock.Anything, mock.MatchedBy(func(r *domain.StoredResult) bool {
		var rec map[string]any
		return r.TaskType == domain.TaskOCR && json.Unmarshal(r.Result, &rec) == nil && rec["text"] == "Hello world"
	})).Return(nil)

	svc := service.NewExtractionService(backend, nil, publisher, archive,
		service.OptionDefaults{MaxTokens: 4096, Temperature: 0.1})

	res, err := svc.Extract(context.Background(), domain.TaskOCR, pngImage("scan.png"), domain.TaskOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.DocumentID)
	assert.Equal(t, "Hello world", res.Record.Text)
	backend.AssertExpectations(t)
	publisher.AssertExpectations(t)
	archive.AssertExpectations(t)
}

func TestExtractionService_Extract_BackendFailure(t *testing.T) {
	backend := new(mocks.MockGenerationBackend)
	backend.On("Generate", mock.Anything, mock.Anything).Return("", domain.ErrBackendTimeout)

	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything)

	svc := service.NewExtractionService(backend, nil, publisher, nil, service.OptionDefaults{})

	_, err := svc.Extract(context.Background(), domain.TaskOCR, pngImage("scan.png"), domain.TaskOptions{})
	assert.True(t, errors.Is(err, domain.ErrBackendTimeout))

	last := publisher.Calls[len(publisher.Calls)-1].Arguments.Get(1).(domain.Event)
	assert.Equal(t, domain.EventExtractionFailed, last.Type)
}

func TestExtractionService_Extract_UnknownKind(t *testing.T) {
	backend := new(mocks.MockGenerationBackend)
	svc := service.NewExtractionService(backend, nil, nil, nil, service.OptionDefaults{})

	_, err := svc.Extract(context.Background(), "summarize", pngImage("a.png"), domain.TaskOptions{})
	assert.True(t, errors.Is(err, domain.ErrUnknownTaskKind))
	backend.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtractionService_ExtractPages(t *testing.T) {
	backend := new(mocks.MockGenerationBackend)
	backend.On("Generate", mock.Anything, mock.Anything).Return("page text", nil).Twice()

	svc := service.NewExtractionService(backend, nil, nil, nil, service.OptionDefaults{})

	res, err := svc.ExtractPages(context.Background(), domain.TaskOCR,
		[]port.ImageRef{pngImage("p1.png"), pngImage("p2.png")}, domain.MergeConcatenate, domain.TaskOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Document.TotalPages())
	assert.Contains(t, res.Document.MergedText, "page text")
	backend.AssertExpectations(t)
}

func TestExtractionService_ExtractPages_BadStrategy(t *testing.T) {
	svc := service.NewExtractionService(new(mocks.MockGenerationBackend), nil, nil, nil, service.OptionDefaults{})

	_, err := svc.ExtractPages(context.Background(), domain.TaskOCR,
		[]port.ImageRef{pngImage("p1.png")}, "interleave", domain.TaskOptions{})
	assert.True(t, errors.Is(err, domain.ErrUnknownMergeStrategy))
}

func TestExtractionService_Factory(t *testing.T) {
	svc := service.NewExtractionService(new(mocks.MockGenerationBackend), nil, nil, nil, service.OptionDefaults{})

	factory, err := svc.Factory(domain.TaskTable)
	require.NoError(t, err)
	h, err := factory()
	require.NoError(t, err)
	assert.Equal(t, domain.TaskTable, h.Kind())

	_, err = svc.Factory("nope")
	assert.True(t, errors.Is(err, domain.ErrUnknownTaskKind))
}
