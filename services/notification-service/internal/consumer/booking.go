package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/manyminds/slotbooking/libs/notice"
	"github.com/segmentio/kafka-go"
)

// Dispatcher delivers one booking notice.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt notice.BookingRequested) error
}

// BookingHandler decodes submitted booking requests and sends the operator
// email. Malformed payloads are logged and dropped since retrying cannot fix them.
func BookingHandler(dispatcher Dispatcher, logger *slog.Logger) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt notice.BookingRequested
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.ErrorContext(ctx, "invalid booking payload", "err", err, "offset", msg.Offset)
			return nil
		}
		if err := evt.Validate(); err != nil {
			logger.ErrorContext(ctx, "incomplete booking payload", "err", err, "offset", msg.Offset)
			return nil
		}
		if _, err := notice.SlotStart(evt.Slot, nil); err != nil {
			logger.ErrorContext(ctx, "invalid booking slot", "err", err, "request_id", evt.RequestID)
			return nil
		}
		if err := dispatcher.Dispatch(ctx, evt); err != nil {
			return err
		}
		logger.InfoContext(ctx, "booking request processed", "request_id", evt.RequestID, "slot", evt.Slot)
		return nil
	}
}
