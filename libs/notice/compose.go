package notice

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/manyminds/slotbooking/libs/mail"
)

// Settings describe the operator side of the notification.
type Settings struct {
	From          string
	OperatorEmail string
	SiteName      string
	Location      *time.Location
	Duration      time.Duration
}

func (s Settings) Validate() error {
	var errs []error
	if s.From == "" {
		errs = append(errs, errors.New("sender address is required"))
	}
	if s.OperatorEmail == "" {
		errs = append(errs, errors.New("operator email is required"))
	}
	if s.Duration <= 0 {
		errs = append(errs, errors.New("meeting duration must be positive"))
	}
	return errors.Join(errs...)
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

var operatorHTML = template.Must(template.New("operator").Parse(`<h2>Neue Terminanfrage über {{.Site}}</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr>
    <td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Name</td>
    <td style="padding: 8px; border: 1px solid #ddd;">{{.Name}}</td>
  </tr>
  <tr>
    <td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Email</td>
    <td style="padding: 8px; border: 1px solid #ddd;"><a href="mailto:{{.Email}}">{{.Email}}</a></td>
  </tr>
{{- if .Company}}
  <tr>
    <td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Firma</td>
    <td style="padding: 8px; border: 1px solid #ddd;">{{.Company}}</td>
  </tr>
{{- end}}
  <tr>
    <td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">Wunschtermin</td>
    <td style="padding: 8px; border: 1px solid #ddd;">{{.When}}</td>
  </tr>
</table>
<p style="color: #666; font-size: 12px;">Gesendet über das Buchungsformular von {{.Site}} (Anfrage {{.RequestID}})</p>
`))

type operatorView struct {
	Site      string
	Name      string
	Email     string
	Company   string
	When      string
	RequestID string
}

// Compose builds the operator email for evt, with an iCalendar invite for the
// requested slot attached. Replies go to the visitor.
func Compose(evt BookingRequested, s Settings) (mail.Message, error) {
	if err := evt.Validate(); err != nil {
		return mail.Message{}, err
	}
	if err := s.Validate(); err != nil {
		return mail.Message{}, err
	}
	start, err := SlotStart(evt.Slot, s.location())
	if err != nil {
		return mail.Message{}, err
	}

	view := operatorView{
		Site:      s.SiteName,
		Name:      evt.Name,
		Email:     evt.Email,
		Company:   evt.Company,
		When:      FormatGerman(start),
		RequestID: evt.RequestID,
	}
	var html bytes.Buffer
	if err := operatorHTML.Execute(&html, view); err != nil {
		return mail.Message{}, fmt.Errorf("render operator email: %w", err)
	}

	invite, err := Invite(evt, start, s)
	if err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		From:    s.From,
		To:      []string{s.OperatorEmail},
		ReplyTo: evt.Email,
		Subject: Subject(evt),
		HTML:    html.String(),
		Text:    plainText(view),
		Attachments: []mail.Attachment{{
			Filename:    "termin-" + strings.ReplaceAll(evt.Slot, ":", "") + ".ics",
			ContentType: "text/calendar; charset=utf-8; method=REQUEST",
			Content:     []byte(invite),
		}},
	}, nil
}

func Subject(evt BookingRequested) string {
	if evt.Company != "" {
		return fmt.Sprintf("Neue Terminanfrage: %s (%s)", evt.Name, evt.Company)
	}
	return "Neue Terminanfrage: " + evt.Name
}

func plainText(v operatorView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Neue Terminanfrage über %s\n\n", v.Site)
	fmt.Fprintf(&b, "Name: %s\n", v.Name)
	fmt.Fprintf(&b, "Email: %s\n", v.Email)
	if v.Company != "" {
		fmt.Fprintf(&b, "Firma: %s\n", v.Company)
	}
	fmt.Fprintf(&b, "Wunschtermin: %s\n", v.When)
	return b.String()
}

// Invite renders a METHOD:REQUEST calendar with a single event for the slot.
// The request id doubles as the event UID so a redelivered event updates the
// same calendar entry instead of adding a second one.
func Invite(evt BookingRequested, start time.Time, s Settings) (string, error) {
	if evt.RequestID == "" {
		return "", errors.New("request_id is required")
	}
	stamp := evt.RequestedAt
	if stamp.IsZero() {
		stamp = start
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId("-//" + productName(s.SiteName) + "//Terminbuchung//DE")

	ev := cal.AddEvent(evt.RequestID + "@" + domainOf(s.OperatorEmail))
	ev.SetCreatedTime(stamp)
	ev.SetDtStampTime(stamp)
	ev.SetStartAt(start)
	ev.SetEndAt(start.Add(s.Duration))
	ev.SetSummary(eventSummary(evt))
	ev.SetDescription(fmt.Sprintf("Terminanfrage von %s <%s>", evt.Name, evt.Email))
	ev.SetOrganizer("mailto:"+s.OperatorEmail, ics.WithCN(productName(s.SiteName)))
	ev.AddAttendee(evt.Email,
		ics.CalendarUserTypeIndividual,
		ics.ParticipationStatusNeedsAction,
		ics.ParticipationRoleReqParticipant,
		ics.WithCN(evt.Name),
		ics.WithRSVP(true),
	)
	return cal.Serialize(), nil
}

func eventSummary(evt BookingRequested) string {
	if evt.Company != "" {
		return fmt.Sprintf("Termin mit %s (%s)", evt.Name, evt.Company)
	}
	return "Termin mit " + evt.Name
}

func productName(site string) string {
	if site == "" {
		return "slotbooking"
	}
	return site
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return strings.TrimSuffix(addr[i+1:], ">")
	}
	return "localhost"
}
