// Package kafka publishes domain events to Kafka and feeds outcome reports
// consumed from Kafka into the outcome use case.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lendwise/loanrisk/internal/domain/event"
	pkgkafka "github.com/lendwise/loanrisk/pkg/kafka"
)

// MessageProducer is the subset of pkg/kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements port.EventPublisher using Kafka. Messages are
// keyed by aggregate ID.
type EventPublisher struct {
	producer MessageProducer
	logger   *slog.Logger
	topic    string
}

// NewEventPublisher creates a new Kafka event publisher.
func NewEventPublisher(producer MessageProducer, topic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends domain events to Kafka.
func (p *EventPublisher) Publish(ctx context.Context, domainEvents ...event.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(domainEvents))
	for _, evt := range domainEvents {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing event",
			slog.String("event_type", evt.EventType()),
			slog.String("event_id", evt.EventID()),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(payload)),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type":   evt.EventType(),
				"event_id":     evt.EventID(),
				"content-type": "application/json",
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

// LogPublisher implements port.EventPublisher by logging events. It stands in
// when no brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs each event at info level.
func (p *LogPublisher) Publish(ctx context.Context, domainEvents ...event.DomainEvent) error {
	for _, evt := range domainEvents {
		p.logger.InfoContext(ctx, "domain event",
			slog.String("event_type", evt.EventType()),
			slog.String("event_id", evt.EventID()),
			slog.String("aggregate_id", evt.AggregateID()),
			slog.Time("occurred_at", evt.OccurredAt()),
		)
	}
	return nil
}
