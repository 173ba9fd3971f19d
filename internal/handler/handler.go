// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/khelsaga/venue-booking/internal/model"
	"github.com/khelsaga/venue-booking/internal/repository"
	"github.com/khelsaga/venue-booking/internal/service"
)

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain errors to HTTP statuses. Conflicts carry the
// conflicting slot labels so clients can offer alternatives; storage failures
// stay generic for users and detailed in the server log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *repository.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:            conflict.Error(),
			ConflictingSlots: conflict.Slots,
		})
	case errors.Is(err, repository.ErrSlotConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again")
	}
}

// ─── Venue handlers ───────────────────────────────────────────────────────────

// VenueHandler holds HTTP handlers for the venue catalog.
type VenueHandler struct {
	svc *service.VenueService
}

// NewVenueHandler constructs a VenueHandler.
func NewVenueHandler(svc *service.VenueService) *VenueHandler {
	return &VenueHandler{svc: svc}
}

// ListVenues handles GET /venues?city=&sport=&q=
func (h *VenueHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	filter := model.VenueFilter{
		City:   r.URL.Query().Get("city"),
		Sport:  r.URL.Query().Get("sport"),
		Search: r.URL.Query().Get("q"),
	}
	venues, err := h.svc.ListVenues(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if venues == nil {
		venues = []model.Venue{}
	}
	writeJSON(w, http.StatusOK, venues)
}

// GetVenue handles GET /venues/{id}
func (h *VenueHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := h.svc.GetVenue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

// ListFacilities handles GET /venues/{id}/facilities
func (h *VenueHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.svc.ListFacilities(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if facilities == nil {
		facilities = []model.Facility{}
	}
	writeJSON(w, http.StatusOK, facilities)
}

// ─── Booking handlers ─────────────────────────────────────────────────────────

// BookingHandler holds HTTP handlers for availability and bookings.
type BookingHandler struct {
	svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// Availability handles GET /facilities/{id}/availability?date=YYYY-MM-DD
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	availability, err := h.svc.Availability(r.Context(),
		chi.URLParam(r, "id"), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if availability.BookedSlots == nil {
		availability.BookedSlots = []string{}
	}
	writeJSON(w, http.StatusOK, availability)
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.CreateBooking(r.Context(), UserID(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// ListBookings handles GET /bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ListUserBookings(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// GetBooking handles GET /bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.svc.GetBooking(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// ConfirmPayment handles POST /bookings/{id}/payment
func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req model.ConfirmPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.ConfirmPayment(r.Context(),
		chi.URLParam(r, "id"), UserID(r.Context()), req.TransactionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// CancelBooking handles POST /bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CancelBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.CancelBooking(r.Context(),
		chi.URLParam(r, "id"), UserID(r.Context()), req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
