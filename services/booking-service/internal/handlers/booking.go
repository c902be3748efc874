package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/manyminds/slotbooking/libs/httpx"
	"github.com/manyminds/slotbooking/libs/notice"
	"github.com/manyminds/slotbooking/services/booking-service/internal/availability"
	"github.com/manyminds/slotbooking/services/booking-service/internal/model"
)

// Dispatcher forwards an accepted booking request to the operator.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt notice.BookingRequested) error
}

type BookingHandler struct {
	catalog    *availability.Catalog
	dispatcher Dispatcher
	logger     *slog.Logger
	location   *time.Location
	now        func() time.Time
	newID      func() string
}

// NewBookingHandler serves the catalog in location: the listing cutoff is
// taken from the wall clock there.
func NewBookingHandler(catalog *availability.Catalog, dispatcher Dispatcher, logger *slog.Logger, location *time.Location) *BookingHandler {
	if location == nil {
		location = time.UTC
	}
	return &BookingHandler{
		catalog:    catalog,
		dispatcher: dispatcher,
		logger:     logger,
		location:   location,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

type slotsResponse struct {
	Slots map[string][]string `json:"slots"`
}

type bookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	now := h.now().In(h.location)
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, slotsResponse{Slots: h.catalog.VisibleSlots(now)})
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Normalize()

	if !req.HasRequired() {
		httpx.WriteError(w, http.StatusBadRequest, "name, email and slot are required")
		return
	}
	if req.FieldsTooLong() {
		httpx.WriteError(w, http.StatusBadRequest, "fields are too long")
		return
	}
	if !model.ValidEmail(req.Email) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	ctx := r.Context()
	if !h.catalog.IsValidSlot(req.Slot) {
		h.logger.InfoContext(ctx, "slot rejected",
			"request_id", httpx.RequestIDFromContext(ctx),
			"slot", req.Slot,
		)
		httpx.WriteError(w, http.StatusBadRequest, "this slot is not available")
		return
	}

	evt := notice.BookingRequested{
		RequestID:   h.newID(),
		Name:        req.Name,
		Email:       req.Email,
		Company:     req.Company,
		Slot:        req.Slot,
		RequestedAt: h.now().UTC(),
	}
	if err := h.dispatcher.Dispatch(ctx, evt); err != nil {
		h.logger.ErrorContext(ctx, "booking dispatch failed",
			"request_id", httpx.RequestIDFromContext(ctx),
			"booking_id", evt.RequestID,
			"slot", evt.Slot,
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "notification could not be sent")
		return
	}

	h.logger.InfoContext(ctx, "booking requested",
		"request_id", httpx.RequestIDFromContext(ctx),
		"booking_id", evt.RequestID,
		"slot", evt.Slot,
	)
	httpx.WriteJSON(w, http.StatusOK, bookResponse{Success: true, Message: "request sent"})
}
