package mail

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/manyminds/slotbooking/libs/config"
)

// SenderFromEnv picks the transport named by EMAIL_PROVIDER (smtp, resend or noop).
func SenderFromEnv(logger *slog.Logger) (Sender, error) {
	provider := strings.ToLower(config.String("EMAIL_PROVIDER", "smtp"))
	switch provider {
	case "smtp":
		return NewSMTPSender(SMTPConfig{
			Host:     config.String("SMTP_HOST", "localhost"),
			Port:     config.String("SMTP_PORT", "1025"),
			Username: config.String("SMTP_USERNAME", ""),
			Password: os.Getenv("SMTP_PASSWORD"),
		}), nil
	case "resend":
		key, err := config.RequiredString("RESEND_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewResendSender(key)
	case "noop":
		return NewNoopSender(logger), nil
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be smtp, resend or noop (got %q)", provider)
	}
}
