package notice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/manyminds/slotbooking/libs/mail"
)

// Notifier composes and sends the operator email for each booking request.
type Notifier struct {
	sender   mail.Sender
	settings Settings
	logger   *slog.Logger
}

func NewNotifier(sender mail.Sender, settings Settings, logger *slog.Logger) (*Notifier, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("notice settings: %w", err)
	}
	return &Notifier{sender: sender, settings: settings, logger: logger}, nil
}

// Dispatch sends synchronously; the caller sees delivery failures directly.
func (n *Notifier) Dispatch(ctx context.Context, evt BookingRequested) error {
	msg, err := Compose(evt, n.settings)
	if err != nil {
		return fmt.Errorf("compose booking notice: %w", err)
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send booking notice via %s: %w", n.sender.ProviderID(), err)
	}
	n.logger.InfoContext(ctx, "booking notice sent",
		"request_id", evt.RequestID,
		"slot", evt.Slot,
		"provider", n.sender.ProviderID(),
	)
	return nil
}
