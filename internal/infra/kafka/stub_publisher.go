package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserSignedUp logs user.signed_up events.
func (p *StubPublisher) PublishUserSignedUp(_ context.Context, event domain.UserSignedUpEvent) error {
	payload := map[string]any{
		"user_id":   event.UserID,
		"username":  event.Username,
		"email":     logger.MaskEmail(event.Email),
		"restored":  event.Restored,
		"signed_at": event.SignedAt,
		"metadata":  event.Metadata,
	}
	p.logEvent(topicUserSignedUp, event.UserID, event.SignedAt, payload)
	return nil
}

// PublishReviewCreated logs review.created events.
func (p *StubPublisher) PublishReviewCreated(_ context.Context, event domain.ReviewCreatedEvent) error {
	payload := map[string]any{
		"review_id":  event.ReviewID,
		"title_id":   event.TitleID,
		"author_id":  event.AuthorID,
		"score":      event.Score,
		"created_at": event.CreatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent(topicReviewCreated, event.AuthorID, event.CreatedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
