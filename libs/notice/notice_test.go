package notice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/manyminds/slotbooking/libs/mail"
)

var cet = time.FixedZone("CET", 60*60)

func testSettings() Settings {
	return Settings{
		From:          "Buchung <info@example.de>",
		OperatorEmail: "operator@example.de",
		SiteName:      "example.de",
		Location:      cet,
		Duration:      30 * time.Minute,
	}
}

func testEvent() BookingRequested {
	return BookingRequested{
		RequestID:   "req-1",
		Name:        "Ada <Lovelace>",
		Email:       "ada@example.com",
		Company:     "Engines & Co",
		Slot:        "2026-03-13T09:00",
		RequestedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestFormatGerman(t *testing.T) {
	got := FormatGerman(time.Date(2026, 3, 13, 9, 0, 0, 0, cet))
	if got != "Freitag, 13. März 2026 um 09:00" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestCompose(t *testing.T) {
	msg, err := Compose(testEvent(), testSettings())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if msg.Subject != "Neue Terminanfrage: Ada <Lovelace> (Engines & Co)" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0] != "operator@example.de" || msg.ReplyTo != "ada@example.com" {
		t.Fatalf("unexpected addressing %+v", msg)
	}
	if strings.Contains(msg.HTML, "<Lovelace>") || !strings.Contains(msg.HTML, "&lt;Lovelace&gt;") {
		t.Fatalf("expected escaped name in html: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "Freitag, 13. März 2026 um 09:00") {
		t.Fatalf("expected formatted slot in html: %s", msg.HTML)
	}
	if !strings.Contains(msg.Text, "Firma: Engines & Co") {
		t.Fatalf("expected company in text body: %s", msg.Text)
	}

	if len(msg.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.Filename != "termin-2026-03-13T0900.ics" {
		t.Fatalf("unexpected filename %q", att.Filename)
	}
	invite := string(att.Content)
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		"UID:req-1@example.de",
		"DTSTART:20260313T080000Z",
		"DTEND:20260313T083000Z",
	} {
		if !strings.Contains(invite, want) {
			t.Fatalf("expected %q in invite:\n%s", want, invite)
		}
	}
}

func TestComposeWithoutCompany(t *testing.T) {
	evt := testEvent()
	evt.Company = ""
	msg, err := Compose(evt, testSettings())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if msg.Subject != "Neue Terminanfrage: Ada <Lovelace>" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if strings.Contains(msg.HTML, "Firma") {
		t.Fatal("expected no company row")
	}
}

func TestComposeRejectsBadInput(t *testing.T) {
	evt := testEvent()
	evt.Slot = "2026-03-13"
	if _, err := Compose(evt, testSettings()); err == nil {
		t.Fatal("expected error for slot without time")
	}

	s := testSettings()
	s.OperatorEmail = ""
	if _, err := Compose(testEvent(), s); err == nil {
		t.Fatal("expected error without operator email")
	}
}

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) ProviderID() string { return "fake" }

func TestNotifierDispatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := &fakeSender{}
	n, err := NewNotifier(sender, testSettings(), logger)
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	if err := n.Dispatch(context.Background(), testEvent()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.sent))
	}

	sender.err = errors.New("relay down")
	if err := n.Dispatch(context.Background(), testEvent()); !errors.Is(err, sender.err) {
		t.Fatalf("expected wrapped sender error, got %v", err)
	}
}

func TestNewNotifierValidatesSettings(t *testing.T) {
	s := testSettings()
	s.Duration = 0
	if _, err := NewNotifier(&fakeSender{}, s, nil); err == nil {
		t.Fatal("expected error for zero duration")
	}
}
