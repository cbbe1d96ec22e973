package port

import (
	"context"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus. Publishing is
// best-effort; request handling never fails on a publish error.
type EventPublisher interface {
	PublishUserSignedUp(ctx context.Context, event domain.UserSignedUpEvent) error
	PublishReviewCreated(ctx context.Context, event domain.ReviewCreatedEvent) error
}
