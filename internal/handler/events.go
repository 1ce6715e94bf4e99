package handler

import (
	"context"
	"time"

	"github.com/renovia/renovation-api/internal/queue"
)

// EventPublisher pushes catalog change events to the broker.
// service.QueuePublisher satisfies it; a nil publisher disables events.
type EventPublisher interface {
	PublishCatalogChanged(ctx context.Context, ev queue.CatalogChangedEvent) error
}

// publishCatalog fires an event best-effort in the background. Publish
// failures only affect downstream consumers, never the admin request.
func publishCatalog(p EventPublisher, entity, action string, id uint64, name string, soft bool) {
	if p == nil {
		return
	}
	ev := queue.CatalogChangedEvent{
		Entity:      entity,
		Action:      action,
		ID:          id,
		Name:        name,
		SoftDeleted: soft,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.PublishCatalogChanged(ctx, ev)
	}()
}
