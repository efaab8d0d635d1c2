package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvision/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendJobSummary(ctx context.Context, to []string, summary port.JobSummary) error {
	args := m.Called(ctx, to, summary)
	return args.Error(0)
}
