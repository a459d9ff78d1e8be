// Package kafka publishes outbox messages to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"grabbit/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// HeaderEventType carries the event type so consumers can filter without
// decoding the payload.
const HeaderEventType = "event_type"

var (
	_ ports.EventPublisher = (*Publisher)(nil)
	_ ports.EventPublisher = (*LogPublisher)(nil)
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes messages synchronously, keyed by order id so that events
// of one order stay in one partition and keep their order.
type Publisher struct {
	w messageWriter
}

// NewPublisher creates a publisher that waits for all in-sync replicas.
func NewPublisher(brokers []string, topic string) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	})
}

func newPublisher(w messageWriter) *Publisher {
	return &Publisher{w: w}
}

// Publish writes the batch in one call. An error means some messages may not
// have been delivered; the caller retries the whole batch.
func (p *Publisher) Publish(ctx context.Context, messages ...ports.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}

	batch := make([]kafka.Message, 0, len(messages))
	for _, m := range messages {
		batch = append(batch, toKafkaMessage(m))
	}

	if err := p.w.WriteMessages(ctx, batch...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

func toKafkaMessage(m ports.OutboxMessage) kafka.Message {
	return kafka.Message{
		Key:   []byte(m.AggregateID.String()),
		Value: m.Payload,
		Time:  m.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(m.EventType)},
			{Key: "event_id", Value: []byte(m.ID.String())},
		},
	}
}

// LogPublisher stands in for the broker when none is configured. It logs
// every message and always succeeds.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "LogPublisher")}
}

func (p *LogPublisher) Publish(ctx context.Context, messages ...ports.OutboxMessage) error {
	for _, m := range messages {
		p.logger.InfoContext(ctx, "event published",
			"event_id", m.ID.String(),
			"event_type", m.EventType,
			"order_id", m.AggregateID.String(),
		)
	}
	return nil
}
