package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/manyminds/slotbooking/libs/kafkax"
	"github.com/segmentio/kafka-go"
)

type Handler func(ctx context.Context, msg kafka.Message) error

// Inbox deduplicates events by id.
type Inbox interface {
	Record(ctx context.Context, eventID, eventType string) (bool, error)
	Forget(ctx context.Context, eventID, eventType string) error
}

// MessageReader is the part of *kafka.Reader the consumer needs. Offsets are
// committed explicitly once a message is settled.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers string
	GroupID string
	Topic   string
	// Attempts is how often a failing handler is tried per message.
	Attempts int
	Backoff  time.Duration
}

type Consumer struct {
	reader  MessageReader
	logger  *slog.Logger
	inbox   Inbox
	handler Handler
	cfg     Config

	dlq      kafkax.MessageWriter
	dlqTopic string
}

func NewReader(cfg Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

func New(logger *slog.Logger, reader MessageReader, inbox Inbox, cfg Config, handler Handler) *Consumer {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &Consumer{
		reader:  reader,
		logger:  logger,
		inbox:   inbox,
		handler: handler,
		cfg:     cfg,
	}
}

// WithDeadLetter parks messages that exhausted their attempts on topic.
func (c *Consumer) WithDeadLetter(w kafkax.MessageWriter, topic string) *Consumer {
	c.dlq = w
	c.dlqTopic = topic
	return c
}

// Run reads until ctx is cancelled. A message that could not be settled is
// retried in place, so the partition does not move past it.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			if !sleep(ctx, c.cfg.Backoff) {
				return
			}
			continue
		}
		for !c.process(ctx, msg) {
			if !sleep(ctx, c.cfg.Backoff) {
				return
			}
		}
	}
}

// process handles msg and commits its offset when it is settled.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	if !c.handle(ctx, msg) {
		return false
	}
	if err := c.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
		// The inbox absorbs the redelivery.
		c.logger.Error("kafka commit failed", "err", err, "partition", msg.Partition, "offset", msg.Offset)
	}
	return true
}

// handle reports whether msg is settled: delivered, a duplicate, or parked on
// the dead letter topic.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := kafkax.StartSpan(ctxMsg, "consume", msg.Topic)
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)

	ok, err := c.inbox.Record(ctxSpan, meta.EventID, meta.EventType)
	if err != nil {
		c.logger.Error("inbox record failed", "err", err, "event_id", meta.EventID)
		span.RecordError(err)
		return false
	}
	if !ok {
		c.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
		return true
	}

	for attempt := 1; ; attempt++ {
		err = c.handler(ctxSpan, msg)
		if err == nil {
			return true
		}
		span.RecordError(err)
		c.logger.Error("handler error", "err", err, "event_id", meta.EventID, "attempt", attempt)
		if attempt >= c.cfg.Attempts || !sleep(ctx, c.cfg.Backoff*time.Duration(attempt)) {
			break
		}
	}

	detached := context.WithoutCancel(ctxSpan)
	if c.dlq != nil {
		dlqErr := c.deadLetter(detached, msg, meta, err)
		if dlqErr == nil {
			c.logger.Warn("event moved to dead letter topic", "event_id", meta.EventID, "topic", c.dlqTopic)
			return true
		}
		c.logger.Error("dead letter publish failed", "err", dlqErr, "event_id", meta.EventID)
	}

	// Release the record so the next attempt is not taken for a duplicate.
	if err := c.inbox.Forget(detached, meta.EventID, meta.EventType); err != nil {
		c.logger.Error("inbox forget failed", "err", err, "event_id", meta.EventID)
	}
	return false
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, meta kafkax.EventMeta, reason error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out := kafka.Message{
		Topic: c.dlqTopic,
		Key:   msg.Key,
		Value: msg.Value,
		Headers: kafkax.InjectTraceHeaders(ctx, append(meta.Headers(),
			kafka.Header{Key: "error_reason", Value: []byte(reason.Error())},
			kafka.Header{Key: "failed_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		)),
	}
	return c.dlq.WriteMessages(ctx, out)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
