package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"medtriage/internal/model"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the producer needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes urgent triage alerts to Kafka
type Producer struct {
	alertsWriter messageWriter
	topic        string
}

// NewProducer creates a new Kafka producer for the alerts topic
func NewProducer(brokers []string, alertsTopic string) *Producer {
	return &Producer{
		alertsWriter: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  alertsTopic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		topic: alertsTopic,
	}
}

// PublishUrgent sends an alert keyed by submission ID, so alerts for one
// submission stay on one partition
func (p *Producer) PublishUrgent(ctx context.Context, alert *model.UrgentAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	key := strconv.FormatInt(alert.SubmissionID, 10)
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "severity", Value: []byte(alert.Severity)},
		},
	}

	if err := p.alertsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write alert to %s: %w", p.topic, err)
	}

	log.Printf("Sent urgent alert to Kafka: %s", key)
	return nil
}

// Close closes the Kafka writer
func (p *Producer) Close() error {
	return p.alertsWriter.Close()
}
