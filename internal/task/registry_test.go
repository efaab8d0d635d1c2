package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvision/internal/domain"
	"docvision/internal/task"
	"docvision/mocks"
)

func TestKinds_CoversEveryTask(t *testing.T) {
	assert.ElementsMatch(t, []domain.TaskKind{
		domain.TaskOCR, domain.TaskLayout, domain.TaskTable, domain.TaskFieldExtraction,
		domain.TaskNER, domain.TaskForm, domain.TaskInvoice, domain.TaskContract,
	}, task.Kinds())
}

func TestNew_ReturnsHandlerOfKind(t *testing.T) {
	backend := new(mocks.MockGenerationBackend)
	for _, kind := range task.Kinds() {
		h, err := task.New(kind, backend)
		require.NoError(t, err)
		assert.Equal(t, kind, h.Kind())
		assert.NotEmpty(t, h.SystemPrompt())
		assert.NotEmpty(t, h.UserPrompt(domain.TaskOptions{}))
	}
}

func TestNew_UnknownKind(t *testing.T) {
	h, err := task.New("translate", new(mocks.MockGenerationBackend))

	assert.Nil(t, h)
	assert.ErrorIs(t, err, domain.ErrUnknownTaskKind)
}

func TestParseKind(t *testing.T) {
	kind, err := task.ParseKind("invoice")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInvoice, kind)

	_, err = task.ParseKind("nope")
	assert.ErrorIs(t, err, domain.ErrUnknownTaskKind)
}

func TestNewFactory_FreshInstances(t *testing.T) {
	factory, err := task.NewFactory(domain.TaskOCR, new(mocks.MockGenerationBackend))
	require.NoError(t, err)

	h1, err := factory()
	require.NoError(t, err)
	h2, err := factory()
	require.NoError(t, err)

	assert.NotSame(t, h1, h2)
}

func TestNewFactory_UnknownKind(t *testing.T) {
	_, err := task.NewFactory("bogus", new(mocks.MockGenerationBackend))
	assert.ErrorIs(t, err, domain.ErrUnknownTaskKind)
}

func TestUserPrompt_OverrideWins(t *testing.T) {
	backend := new(mocks.MockGenerationBackend)
	for _, kind := range task.Kinds() {
		h, err := task.New(kind, backend)
		require.NoError(t, err)
		assert.Equal(t, "custom", h.UserPrompt(domain.TaskOptions{Prompt: "custom"}), kind)
	}
}
