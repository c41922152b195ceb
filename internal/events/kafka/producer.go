package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CloudEvent defines the envelope for CloudEvents v1.0 messages.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data,omitempty"`
}

const (
	cloudEventSpecVersion     = "1.0"
	cloudEventDataContentType = "application/json"
)

// Publisher sends account lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, eventType, subject string, payload interface{}) error
	Close() error
}

// Producer publishes CloudEvents to a single Kafka topic, keyed by subject so
// events for one account stay ordered.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
	source string
}

// NewProducer creates a Kafka producer. source identifies this service in
// the CloudEvent envelope, e.g. "/account-service".
func NewProducer(brokers []string, topic, source string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Producer{
		writer: writer,
		logger: logger,
		source: source,
	}
}

func (p *Producer) Publish(ctx context.Context, eventType, subject string, payload interface{}) error {
	event := CloudEvent{
		SpecVersion:     cloudEventSpecVersion,
		Type:            eventType,
		Source:          p.source,
		Subject:         subject,
		ID:              uuid.NewString(),
		Time:            time.Now().UTC(),
		DataContentType: cloudEventDataContentType,
		Data:            payload,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(subject),
		Value: value,
		Headers: []kafka.Header{
			{Key: "ce_type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}

	p.logger.Debug("Published event",
		zap.String("type", eventType),
		zap.String("subject", subject))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
