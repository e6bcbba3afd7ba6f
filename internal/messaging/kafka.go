package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/config"
)

const (
	EventTokenIssued       = "token.issued"
	EventDownloadCompleted = "download.completed"
)

// DownloadEvent is an opaque audit record published per issuance/download.
// Consumers downstream decide what to do with it; this service only emits.
type DownloadEvent struct {
	Type       string    `json:"type"`
	CustomerID string    `json:"customer_id"`
	ObjectKey  string    `json:"object_key,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventBus publishes download audit events to Kafka. A nil *EventBus is a
// valid no-op bus, which is what NewEventBus returns when no brokers are
// configured. Publishing is fire-and-forget: failures are logged, never
// surfaced to the request path.
type EventBus struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

func NewEventBus(cfg *config.Config, logger *logrus.Logger) *EventBus {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, download events disabled")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &EventBus{
		writer: writer,
		logger: logger,
	}
}

func (b *EventBus) TokenIssued(ctx context.Context, customerID, requestID string) {
	b.publish(ctx, DownloadEvent{
		Type:       EventTokenIssued,
		CustomerID: customerID,
		RequestID:  requestID,
		Timestamp:  time.Now().UTC(),
	})
}

func (b *EventBus) DownloadCompleted(ctx context.Context, customerID, objectKey, requestID string) {
	b.publish(ctx, DownloadEvent{
		Type:       EventDownloadCompleted,
		CustomerID: customerID,
		ObjectKey:  objectKey,
		RequestID:  requestID,
		Timestamp:  time.Now().UTC(),
	})
}

func (b *EventBus) publish(ctx context.Context, event DownloadEvent) {
	if b == nil {
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		b.logger.WithError(err).Warn("Failed to marshal download event")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err = b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.CustomerID),
		Value: value,
	})
	if err != nil {
		b.logger.WithError(err).WithField("type", event.Type).Warn("Failed to publish download event")
	}
}

func (b *EventBus) Close() error {
	if b == nil {
		return nil
	}
	return b.writer.Close()
}
