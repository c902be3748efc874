package kafkax

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter returns a synchronous writer that waits for all in-sync replicas,
// since a lost message means a lost booking request.
func NewWriter(brokers string) (*kafka.Writer, error) {
	list := SplitBrokers(brokers)
	if len(list) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(list...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
		BatchTimeout:           10 * time.Millisecond,
	}, nil
}

// Publish writes one message to topic with event metadata and trace headers.
func Publish(ctx context.Context, w MessageWriter, topic string, key []byte, value []byte, meta EventMeta) error {
	ctx, span := StartSpan(ctx, "publish", topic)
	defer span.End()

	msg := kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: InjectTraceHeaders(ctx, meta.Headers()),
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
