package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/manyminds/slotbooking/libs/notice"
	"github.com/manyminds/slotbooking/services/booking-service/internal/availability"
)

type fakeDispatcher struct {
	events []notice.BookingRequested
	err    error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, evt notice.BookingRequested) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, evt)
	return nil
}

func newTestHandler(t *testing.T, now time.Time) (*BookingHandler, *fakeDispatcher) {
	t.Helper()
	catalog, err := availability.NewCatalog(map[string][]string{
		"2026-03-13": {"09:00", "15:00"},
		"2026-04-15": {"09:00"},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	d := &fakeDispatcher{}
	h := NewBookingHandler(catalog, d, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)
	h.now = func() time.Time { return now }
	h.newID = func() string { return "booking-1" }
	return h, d
}

func postBook(h *BookingHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	h.Book(rw, req)
	return rw
}

func decodeError(t *testing.T, rw *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rw.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestSlots(t *testing.T) {
	h, _ := newTestHandler(t, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	rw := httptest.NewRecorder()
	h.Slots(rw, httptest.NewRequest(http.MethodGet, "/api/slots", nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var resp slotsResponse
	if err := json.NewDecoder(rw.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resp.Slots["2026-03-13"]; len(got) != 2 {
		t.Fatalf("expected 2026-03-13 with two times, got %v", resp.Slots)
	}

	h.now = func() time.Time { return time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC) }
	rw = httptest.NewRecorder()
	h.Slots(rw, httptest.NewRequest(http.MethodGet, "/api/slots", nil))
	resp = slotsResponse{}
	if err := json.NewDecoder(rw.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp.Slots["2026-03-13"]; ok {
		t.Fatal("expected 2026-03-13 to be hidden in February")
	}
	if _, ok := resp.Slots["2026-04-15"]; !ok {
		t.Fatal("expected 2026-04-15 to be listed in February")
	}
}

func TestSlotsEmptyListingIsObject(t *testing.T) {
	h, _ := newTestHandler(t, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	rw := httptest.NewRecorder()
	h.Slots(rw, httptest.NewRequest(http.MethodGet, "/api/slots", nil))
	if strings.TrimSpace(rw.Body.String()) != `{"slots":{}}` {
		t.Fatalf("unexpected body %q", rw.Body.String())
	}
}

func TestSlotsMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, time.Now())
	rw := httptest.NewRecorder()
	h.Slots(rw, httptest.NewRequest(http.MethodPost, "/api/slots", nil))
	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rw.Code)
	}
}

func TestBookAccepted(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	h, d := newTestHandler(t, now)
	rw := postBook(h, `{"name":" Ada ","email":"ada@example.com","company":"Engines","slot":"2026-03-13T09:00"}`)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var resp bookResponse
	if err := json.NewDecoder(rw.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}
	if len(d.events) != 1 {
		t.Fatalf("expected one dispatched event, got %d", len(d.events))
	}
	evt := d.events[0]
	if evt.Name != "Ada" || evt.RequestID != "booking-1" || evt.Slot != "2026-03-13T09:00" || !evt.RequestedAt.Equal(now) {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestBookHiddenSlotStillAccepted(t *testing.T) {
	// March is hidden from the listing in March but stays bookable.
	h, d := newTestHandler(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rw := postBook(h, `{"name":"Ada","email":"ada@example.com","slot":"2026-03-13T15:00"}`)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	rw = postBook(h, `{"name":"Ada","email":"ada@example.com","slot":"2026-03-13T15:00"}`)
	if rw.Code != http.StatusOK || len(d.events) != 2 {
		t.Fatalf("expected repeated booking to be accepted, got %d with %d events", rw.Code, len(d.events))
	}
}

func TestBookRejections(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"name":`, "invalid json body"},
		{"missing slot", `{"name":"Ada","email":"ada@example.com"}`, "name, email and slot are required"},
		{"blank name", `{"name":"  ","email":"ada@example.com","slot":"2026-03-13T09:00"}`, "name, email and slot are required"},
		{"bad email", `{"name":"Ada","email":"ada@example","slot":"2026-03-13T09:00"}`, "invalid email address"},
		{"unknown time", `{"name":"Ada","email":"ada@example.com","slot":"2026-03-13T12:00"}`, "this slot is not available"},
		{"unknown date", `{"name":"Ada","email":"ada@example.com","slot":"2026-03-14T09:00"}`, "this slot is not available"},
		{"no separator", `{"name":"Ada","email":"ada@example.com","slot":"2026-03-13 09:00"}`, "this slot is not available"},
		{"padded slot", `{"name":"Ada","email":"ada@example.com","slot":" 2026-03-13T09:00\n"}`, "this slot is not available"},
		{"trailing space slot", `{"name":"Ada","email":"ada@example.com","slot":"2026-03-13T09:00 "}`, "this slot is not available"},
		{"too long", `{"name":"` + strings.Repeat("a", 201) + `","email":"ada@example.com","slot":"2026-03-13T09:00"}`, "fields are too long"},
	}
	for _, tc := range cases {
		h, d := newTestHandler(t, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
		rw := postBook(h, tc.body)
		if rw.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, rw.Code)
		}
		if got := decodeError(t, rw); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
		if len(d.events) != 0 {
			t.Fatalf("%s: expected nothing dispatched", tc.name)
		}
	}
}

func TestBookDispatchFailure(t *testing.T) {
	h, d := newTestHandler(t, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	d.err = errors.New("smtp down")
	rw := postBook(h, `{"name":"Ada","email":"ada@example.com","slot":"2026-03-13T09:00"}`)
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rw.Code)
	}
	if got := decodeError(t, rw); got != "notification could not be sent" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestBookMethods(t *testing.T) {
	h, _ := newTestHandler(t, time.Now())

	rw := httptest.NewRecorder()
	h.Book(rw, httptest.NewRequest(http.MethodOptions, "/api/book", nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200 for OPTIONS, got %d", rw.Code)
	}

	rw = httptest.NewRecorder()
	h.Book(rw, httptest.NewRequest(http.MethodGet, "/api/book", nil))
	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", rw.Code)
	}
}
