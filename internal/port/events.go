package port

import (
	"context"

	"docvision/internal/domain"
)

// EventPublisher delivers events to external subscribers. Publish must not block on delivery.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}
