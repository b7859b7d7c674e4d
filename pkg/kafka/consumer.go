package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// ErrSkipMessage tells the consumer to commit a message the handler cannot
// ever process, so it is not redelivered.
var ErrSkipMessage = errors.New("skip message")

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads a topic as part of a consumer group and hands each message
// to a Handler.
type Consumer struct {
	reader  messageReader
	handler Handler
	logger  *slog.Logger
	topic   string
	group   string
}

// NewConsumer creates a Consumer for topic. cfg.ConsumerGroup is required.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if cfg.ConsumerGroup == "" {
		return nil, errors.New("kafka consumer: consumer group is required")
	}
	dialer, err := cfg.dialer()
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		Dialer:   dialer,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024, // 10 MB
	})
	return newConsumer(r, topic, cfg.ConsumerGroup, handler, logger), nil
}

func newConsumer(r messageReader, topic, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		handler: handler,
		logger:  logger,
		topic:   topic,
		group:   group,
	}
}

// Start consumes until ctx is canceled. Messages whose handler fails are not
// committed unless the failure wraps ErrSkipMessage.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting", "topic", c.topic, "group", c.group)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping", "topic", c.topic)
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.handler(ctx, fromKafkaMessage(m)); err != nil {
			if !errors.Is(err, ErrSkipMessage) {
				c.logger.Error("handler error",
					"topic", m.Topic,
					"partition", m.Partition,
					"offset", m.Offset,
					"error", err,
				)
				continue
			}
			c.logger.Warn("skipping unprocessable message",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
