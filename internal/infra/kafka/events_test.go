package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/config"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/logger"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "yamdb",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "yamdb-api",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishUserSignedUp(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	signedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := domain.UserSignedUpEvent{
		EventID:  "event-123",
		UserID:   "user-456",
		Username: "reader",
		Email:    "reader@example.com",
		Restored: false,
		SignedAt: signedAt,
	}

	ctx := context.WithValue(context.Background(), logger.RequestIDKey{}, "req-789")

	if err := publisher.PublishUserSignedUp(ctx, event); err != nil {
		t.Fatalf("PublishUserSignedUp returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "yamdb.user.signed_up" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "user.signed_up" {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if got := envelope["event_id"]; got != "event-123" {
			t.Fatalf("unexpected event_id: %v", got)
		}
		if got := envelope["user_id"]; got != event.UserID {
			t.Fatalf("unexpected user_id: %v", got)
		}
		if got := envelope["version"]; got != schemaVersion {
			t.Fatalf("unexpected version: %v", got)
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("metadata missing: %T", envelope["metadata"])
		}
		if metadata["request_id"] != "req-789" {
			t.Fatalf("request id not propagated: %v", metadata["request_id"])
		}
		if metadata["service"] != "yamdb-api" {
			t.Fatalf("unexpected service: %v", metadata["service"])
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload missing: %T", envelope["payload"])
		}
		email, _ := payload["email"].(string)
		if strings.Contains(email, "reader@example.com") {
			t.Fatalf("raw email leaked into payload: %s", email)
		}
		if !strings.Contains(email, "@example.com") {
			t.Fatalf("masked email lost its domain: %s", email)
		}
	case <-time.After(time.Second):
		t.Fatal("no message handed to producer")
	}
}

func TestPublishReviewCreated(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := domain.ReviewCreatedEvent{
		EventID:   "event-321",
		ReviewID:  "review-1",
		TitleID:   "title-1",
		AuthorID:  "user-456",
		Score:     9,
		CreatedAt: createdAt,
	}

	if err := publisher.PublishReviewCreated(context.Background(), event); err != nil {
		t.Fatalf("PublishReviewCreated returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "yamdb.review.created" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload missing: %T", envelope["payload"])
		}
		if payload["review_id"] != "review-1" {
			t.Fatalf("unexpected review_id: %v", payload["review_id"])
		}
		if score, _ := payload["score"].(float64); int(score) != 9 {
			t.Fatalf("unexpected score: %v", payload["score"])
		}
	case <-time.After(time.Second):
		t.Fatal("no message handed to producer")
	}
}

func TestTopicNameAppliesPrefixOnce(t *testing.T) {
	producer := &Producer{
		logger:  zaptest.NewLogger(t),
		cfg:     config.KafkaSettings{TopicPrefix: "yamdb"},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	if got := producer.TopicName("user.signed_up"); got != "yamdb.user.signed_up" {
		t.Fatalf("TopicName = %s", got)
	}
	if got := producer.TopicName("yamdb.user.signed_up"); got != "yamdb.user.signed_up" {
		t.Fatalf("TopicName double-prefixed: %s", got)
	}
}
