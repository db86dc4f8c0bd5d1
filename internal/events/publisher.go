package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event represents a domain event
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Aggregate string                 `json:"aggregate"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
	Version   int                    `json:"version"`
}

// Event types emitted by the booking lifecycle
const (
	BookingCreated   = "booking.created"
	BookingPaid      = "booking.paid"
	BookingCancelled = "booking.cancelled"
)

// Publisher defines the interface for publishing events
type Publisher interface {
	// Publish publishes an event
	Publish(ctx context.Context, event *Event) error

	// Close closes the publisher
	Close() error
}

// NewEvent creates a new event
func NewEvent(eventType, aggregate string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Aggregate: aggregate,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		Version:   1,
	}
}

// KafkaPublisher publishes events to a Kafka topic
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

// Publish publishes an event, keyed by aggregate so per-booking ordering holds
func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Aggregate),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("Failed to publish event",
			zap.Error(err),
			zap.String("event_type", event.Type),
			zap.String("aggregate", event.Aggregate))
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}

	p.logger.Debug("Event published",
		zap.String("event_type", event.Type),
		zap.String("aggregate", event.Aggregate),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// Close closes the publisher
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events; used when Kafka is disabled
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that discards all events
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(ctx context.Context, event *Event) error {
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
