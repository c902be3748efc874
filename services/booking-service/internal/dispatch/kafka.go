package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/manyminds/slotbooking/libs/kafkax"
	"github.com/manyminds/slotbooking/libs/notice"
)

// KafkaDispatcher hands booking requests to the notification-service through
// Kafka. Messages are keyed by slot so requests for one slot stay ordered.
type KafkaDispatcher struct {
	writer kafkax.MessageWriter
	topic  string
}

func NewKafkaDispatcher(writer kafkax.MessageWriter, topic string) *KafkaDispatcher {
	if topic == "" {
		topic = notice.EventType
	}
	return &KafkaDispatcher{writer: writer, topic: topic}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, evt notice.BookingRequested) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode booking event: %w", err)
	}
	meta := kafkax.EventMeta{EventID: evt.RequestID, EventType: notice.EventType}
	if err := kafkax.Publish(ctx, d.writer, d.topic, []byte(evt.Slot), payload, meta); err != nil {
		return fmt.Errorf("publish booking event: %w", err)
	}
	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
