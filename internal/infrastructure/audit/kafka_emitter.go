package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/delang-zeta/ai-gateway/internal/domain/models"
)

// messageWriter is the slice of kafka.Writer the emitter depends on.
// Tests substitute an in-memory fake.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEmitter ships audit entries to a Kafka topic, keyed by user so one
// user's trail stays ordered within a partition.
type KafkaEmitter struct {
	writer messageWriter
}

// NewKafkaEmitter creates an emitter writing to the given brokers and topic.
func NewKafkaEmitter(brokers []string, topic string) *KafkaEmitter {
	return &KafkaEmitter{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 100 * time.Millisecond,
			Async:        false,
		},
	}
}

// Emit publishes one audit entry as JSON.
func (e *KafkaEmitter) Emit(ctx context.Context, entry *models.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return e.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entry.UserID),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (e *KafkaEmitter) Close() error {
	return e.writer.Close()
}
