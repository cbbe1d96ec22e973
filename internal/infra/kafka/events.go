package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/config"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/logger"
)

const schemaVersion = "1.0"

const (
	topicUserSignedUp  = "user.signed_up"
	topicReviewCreated = "review.created"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if requestID, ok := ctx.Value(logger.RequestIDKey{}).(string); ok && requestID != "" {
		metadata["request_id"] = requestID
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserSignedUp publishes user.signed_up events.
func (p *EventPublisher) PublishUserSignedUp(ctx context.Context, event domain.UserSignedUpEvent) error {
	payload := struct {
		UserID   string         `json:"user_id"`
		Username string         `json:"username"`
		Email    string         `json:"email"`
		Restored bool           `json:"restored"`
		SignedAt time.Time      `json:"signed_at"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		UserID:   event.UserID,
		Username: event.Username,
		Email:    logger.MaskEmail(event.Email),
		Restored: event.Restored,
		SignedAt: event.SignedAt.UTC(),
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicUserSignedUp, event.UserID, event.SignedAt, payload)
}

// PublishReviewCreated publishes review.created events.
func (p *EventPublisher) PublishReviewCreated(ctx context.Context, event domain.ReviewCreatedEvent) error {
	payload := struct {
		ReviewID  string         `json:"review_id"`
		TitleID   string         `json:"title_id"`
		AuthorID  string         `json:"author_id"`
		Score     int            `json:"score"`
		CreatedAt time.Time      `json:"created_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		ReviewID:  event.ReviewID,
		TitleID:   event.TitleID,
		AuthorID:  event.AuthorID,
		Score:     event.Score,
		CreatedAt: event.CreatedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicReviewCreated, event.AuthorID, event.CreatedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
