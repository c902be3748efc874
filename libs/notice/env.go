package notice

import (
	"time"

	"github.com/manyminds/slotbooking/libs/config"
)

func SettingsFromEnv(location *time.Location) (Settings, error) {
	operator, err := config.RequiredString("OPERATOR_EMAIL")
	if err != nil {
		return Settings{}, err
	}
	duration, err := config.Minutes("MEETING_DURATION_MINUTES", 30*time.Minute)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		From:          config.String("MAIL_FROM", "Buchung <no-reply@slotbooking.local>"),
		OperatorEmail: operator,
		SiteName:      config.String("SITE_NAME", "slotbooking"),
		Location:      location,
		Duration:      duration,
	}, nil
}
