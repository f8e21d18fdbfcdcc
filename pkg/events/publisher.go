package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"karabook/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, key string, event Event) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) (Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // hash by key keeps per-room ordering
		RequiredAcks: kafka.RequireAll,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error(fmt.Sprintf(msg, args...))
		}),
	}

	return &kafkaPublisher{writer: writer, log: log}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.log.Debug("Event published", "event_id", event.ID, "type", event.Type, "key", key)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events; used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
