package availability

import (
	"strings"
	"time"
)

// SlotSeparator joins date and time in a slot identifier: 2026-03-13T09:00.
const SlotSeparator = "T"

// Cutoff is the first day of the month two months after now's month, in now's
// location. The current and the next month are never listed.
func Cutoff(now time.Time) time.Time {
	// time.Date normalizes month 13 and 14 into the following year.
	return time.Date(now.Year(), now.Month()+2, 1, 0, 0, 0, 0, now.Location())
}

// VisibleSlots returns every catalog date on or after Cutoff(now) with all of
// its times. Dates before the cutoff are left out entirely; times on the
// cutoff date are not compared with now.
func (c *Catalog) VisibleSlots(now time.Time) map[string][]string {
	visible := make(map[string][]string)
	if c == nil {
		return visible
	}
	cutoff := Cutoff(now).Format(DateLayout)
	for _, date := range c.dates {
		if date < cutoff {
			continue
		}
		visible[date] = append([]string(nil), c.times[date]...)
	}
	return visible
}

// SplitSlotID splits id on the first separator. ok is false when the
// separator is missing or either side is empty.
func SplitSlotID(id string) (date, tod string, ok bool) {
	date, tod, found := strings.Cut(id, SlotSeparator)
	if !found || date == "" || tod == "" {
		return "", "", false
	}
	return date, tod, true
}

// IsValidSlot reports whether id names a slot in the full catalog. It does not
// apply the listing cutoff, so a slot hidden from today's listing is still
// accepted. Validation never consumes a slot.
func (c *Catalog) IsValidSlot(id string) bool {
	date, tod, ok := SplitSlotID(id)
	if !ok {
		return false
	}
	return c.offers(date, tod)
}

func SlotID(date, tod string) string {
	return date + SlotSeparator + tod
}
