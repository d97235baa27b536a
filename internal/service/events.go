package service

import (
	"context"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
)

// EventPublisher receives transaction events after the unit of work that
// produced them has committed. Implementations must not block for long.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.TransactionEvent)
}

// Publishers fans an event out to every publisher in order.
type Publishers []EventPublisher

func (p Publishers) Publish(ctx context.Context, event domain.TransactionEvent) {
	for _, pub := range p {
		if pub != nil {
			pub.Publish(ctx, event)
		}
	}
}
