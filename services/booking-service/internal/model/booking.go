package model

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// BookingRequest is the payload of the public booking form.
type BookingRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Slot    string `json:"slot"`
}

const maxFieldRunes = 200

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Normalize trims the contact fields. Slot is left untouched: it must match a
// catalog entry exactly.
func (r *BookingRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Company = strings.TrimSpace(r.Company)
}

func (r BookingRequest) HasRequired() bool {
	return r.Name != "" && r.Email != "" && r.Slot != ""
}

func (r BookingRequest) FieldsTooLong() bool {
	return utf8.RuneCountInString(r.Name) > maxFieldRunes ||
		utf8.RuneCountInString(r.Email) > maxFieldRunes ||
		utf8.RuneCountInString(r.Company) > maxFieldRunes
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
