// Package notice turns a submitted booking request into the operator email
// with its calendar invite.
package notice

import (
	"errors"
	"fmt"
	"time"
)

// EventType is the event name and default Kafka topic for submitted requests.
const EventType = "booking.request.submitted.v1"

// SlotLayout is the wall-clock layout of a slot identifier.
const SlotLayout = "2006-01-02T15:04"

// BookingRequested is a visitor's accepted request for one slot.
type BookingRequested struct {
	RequestID   string    `json:"request_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Company     string    `json:"company,omitempty"`
	Slot        string    `json:"slot"`
	RequestedAt time.Time `json:"requested_at"`
}

func (e BookingRequested) Validate() error {
	var errs []error
	if e.RequestID == "" {
		errs = append(errs, errors.New("request_id is required"))
	}
	if e.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if e.Email == "" {
		errs = append(errs, errors.New("email is required"))
	}
	if e.Slot == "" {
		errs = append(errs, errors.New("slot is required"))
	}
	return errors.Join(errs...)
}

// SlotStart interprets slot as wall-clock time in loc.
func SlotStart(slot string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(SlotLayout, slot, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse slot %q: %w", slot, err)
	}
	return t, nil
}
