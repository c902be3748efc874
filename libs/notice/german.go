package notice

import (
	"fmt"
	"time"
)

var germanWeekdays = [...]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag",
}

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// FormatGerman renders t as "Freitag, 13. März 2026 um 09:00".
func FormatGerman(t time.Time) string {
	return fmt.Sprintf("%s, %d. %s %d um %02d:%02d",
		germanWeekdays[t.Weekday()],
		t.Day(),
		germanMonths[t.Month()-1],
		t.Year(),
		t.Hour(),
		t.Minute(),
	)
}
