package task

import (
	"fmt"
	"sort"

	"docvision/internal/domain"
	"docvision/internal/port"
)

// Constructor builds a fresh handler around a backend.
type Constructor func(backend port.GenerationBackend) Handler

var constructors = map[domain.TaskKind]Constructor{
	domain.TaskOCR:             func(b port.GenerationBackend) Handler { return NewOCRHandler(b) },
	domain.TaskLayout:          func(b port.GenerationBackend) Handler { return NewLayoutHandler(b) },
	domain.TaskTable:           func(b port.GenerationBackend) Handler { return NewTableHandler(b) },
	domain.TaskFieldExtraction: func(b port.GenerationBackend) Handler { return NewFieldHandler(b, nil) },
	domain.TaskNER:             func(b port.GenerationBackend) Handler { return NewNERHandler(b) },
	domain.TaskForm:            func(b port.GenerationBackend) Handler { return NewFormHandler(b) },
	domain.TaskInvoice:         func(b port.GenerationBackend) Handler { return NewInvoiceHandler(b) },
	domain.TaskContract:        func(b port.GenerationBackend) Handler { return NewContractHandler(b) },
}

// Factory returns a fresh handler per call. The batch orchestrator calls it once per item.
type Factory func() (Handler, error)

// ParseKind validates a task kind string.
func ParseKind(s string) (domain.TaskKind, error) {
	kind := domain.TaskKind(s)
	if _, ok := constructors[kind]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownTaskKind, s)
	}
	return kind, nil
}

// New creates the handler registered for kind.
func New(kind domain.TaskKind, backend port.GenerationBackend) (Handler, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTaskKind, kind)
	}
	return ctor(backend), nil
}

// NewFactory checks kind up front and returns a factory that never fails for it.
func NewFactory(kind domain.TaskKind, backend port.GenerationBackend) (Factory, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTaskKind, kind)
	}
	return func() (Handler, error) { return ctor(backend), nil }, nil
}

// Kinds lists the registered task kinds in sorted order.
func Kinds() []domain.TaskKind {
	kinds := make([]domain.TaskKind, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
