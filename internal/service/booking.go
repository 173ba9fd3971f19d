// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khelsaga/venue-booking/internal/model"
	"github.com/khelsaga/venue-booking/internal/mq"
	"github.com/khelsaga/venue-booking/internal/repository"
	"github.com/khelsaga/venue-booking/internal/slot"
)

// ErrValidation marks malformed or empty input, rejected before any write.
var ErrValidation = errors.New("invalid request")

// ErrUnauthenticated is returned when no user identity reaches the service.
var ErrUnauthenticated = errors.New("authentication required")

// ErrForbidden is returned when a user operates on a booking they do not own.
var ErrForbidden = errors.New("not your booking")

var tracer = otel.Tracer("github.com/khelsaga/venue-booking/internal/service")

// EventPublisher emits booking lifecycle events for downstream consumers
// (notifications etc). Publishing is best effort; a nil publisher disables it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BookingService orchestrates availability, booking, payment confirmation,
// and cancellation.
type BookingService struct {
	bookings repository.BookingStore
	venues   repository.VenueStore
	events   EventPublisher
	now      func() time.Time
}

// NewBookingService constructs a BookingService. events may be nil.
func NewBookingService(bookings repository.BookingStore, venues repository.VenueStore, events EventPublisher) *BookingService {
	return &BookingService{
		bookings: bookings,
		venues:   venues,
		events:   events,
		now:      time.Now,
	}
}

// CheckConflict decides whether a requested slot set may be booked given the
// slots already reserved for the same facility and date. It reports the
// actual conflicting labels so callers can offer alternatives.
func CheckConflict(requested, reserved []string) (available bool, conflicting []string) {
	conflicting = slot.Intersect(requested, reserved)
	return len(conflicting) == 0, conflicting
}

// Availability returns the booked slot set for a facility on a calendar day.
//
// A storage failure propagates as an error; it is never reported as an empty
// set, because "could not read" and "nothing booked" must stay distinguishable
// or failed reads would let double-bookings through.
func (s *BookingService) Availability(ctx context.Context, facilityID, date string) (*model.Availability, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facility id is required", ErrValidation)
	}
	day, err := slot.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	normalized := day.Format(slot.DateLayout)

	if _, err := s.venues.FacilityByID(ctx, facilityID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("resolve facility: %w", err)
	}

	reserved, err := s.bookings.ReservedSlots(ctx, facilityID, normalized)
	if err != nil {
		return nil, fmt.Errorf("resolve availability: %w", err)
	}
	return &model.Availability{
		FacilityID:  facilityID,
		BookingDate: normalized,
		BookedSlots: slot.Normalize(reserved),
	}, nil
}

// CreateBooking validates the request, freezes the facility's current price,
// and commits the booking through the atomic slot-claim path.
//
// The availability read here is a fast-path courtesy check; the repository's
// unique constraint is the authority, so a request that races past this check
// still ends in a conflict error rather than a double-booking.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, req model.CreateBookingRequest) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.create")
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if req.FacilityID == "" {
		return nil, fmt.Errorf("%w: facility id is required", ErrValidation)
	}
	day, err := slot.ParseDate(req.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	date := day.Format(slot.DateLayout)

	slots := slot.Normalize(req.Slots)
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: at least one slot is required", ErrValidation)
	}
	for _, l := range slots {
		if !slot.Valid(l) {
			return nil, fmt.Errorf("%w: %q is not a bookable slot", ErrValidation, l)
		}
	}
	span.SetAttributes(
		attribute.String("booking.facility_id", req.FacilityID),
		attribute.Int("booking.slots", len(slots)),
	)

	facility, err := s.venues.FacilityByID(ctx, req.FacilityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown facility", ErrValidation)
		}
		return nil, fmt.Errorf("resolve facility: %w", err)
	}
	if !facility.IsAvailable {
		return nil, fmt.Errorf("%w: facility is not open for booking", ErrValidation)
	}
	if req.VenueID != "" && req.VenueID != facility.VenueID {
		return nil, fmt.Errorf("%w: facility does not belong to that venue", ErrValidation)
	}

	// Fast path so conflicting requests fail with named slots before any
	// write attempt. Errors propagate: a failed read is not "nothing booked".
	reserved, err := s.bookings.ReservedSlots(ctx, facility.ID, date)
	if err != nil {
		return nil, fmt.Errorf("resolve availability: %w", err)
	}
	if available, conflicting := CheckConflict(slots, reserved); !available {
		return nil, &repository.ConflictError{Slots: conflicting}
	}

	hours := len(slots)
	base := facility.PricePerHour * float64(hours)
	booking := &model.Booking{
		ID:              uuid.New().String(),
		UserID:          userID,
		FacilityID:      facility.ID,
		VenueID:         facility.VenueID,
		BookingDate:     date,
		Slots:           slots,
		TotalHours:      hours,
		BasePrice:       base,
		DiscountApplied: 0, // no discount policy active
		FinalPrice:      base,
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		Status:          model.StatusPending,
		PaymentStatus:   model.PaymentPending,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		var conflict *repository.ConflictError
		if errors.As(err, &conflict) && len(conflict.Slots) == 0 {
			// Lost a commit race; name the slots for the client if a re-read
			// succeeds, otherwise surface the bare conflict.
			if reserved, rerr := s.bookings.ReservedSlots(ctx, facility.ID, date); rerr == nil {
				if _, conflicting := CheckConflict(slots, reserved); len(conflicting) > 0 {
					return nil, &repository.ConflictError{Slots: conflicting}
				}
			}
		}
		if errors.Is(err, repository.ErrSlotConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.publish(ctx, mq.KeyBookingCreated, map[string]any{
		"booking_id":  booking.ID,
		"user_id":     booking.UserID,
		"facility_id": booking.FacilityID,
		"date":        booking.BookingDate,
		"slots":       booking.Slots,
		"final_price": booking.FinalPrice,
	})
	return booking, nil
}

// GetBooking returns one of the user's bookings.
func (s *BookingService) GetBooking(ctx context.Context, id, userID string) (*model.Booking, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

// ListUserBookings returns the user's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]model.Booking, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.bookings.ListByUser(ctx, userID)
}

// ConfirmPayment marks a pending booking as confirmed and paid. Idempotent
// for retries carrying the same transaction reference.
func (s *BookingService) ConfirmPayment(ctx context.Context, id, userID, transactionID string) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.confirm_payment")
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction id is required", ErrValidation)
	}

	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, ErrForbidden
	}

	b, err := s.bookings.ConfirmPayment(ctx, id, transactionID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, mq.KeyBookingConfirmed, map[string]any{
		"booking_id":     b.ID,
		"user_id":        b.UserID,
		"transaction_id": b.TransactionID,
	})
	return b, nil
}

// CancelBooking transitions an active booking to cancelled and computes the
// refund owed under the tiered notice policy. The refund anchor is the
// booking's earliest slot on its date, also for bookings spanning
// non-contiguous hours.
func (s *BookingService) CancelBooking(ctx context.Context, id, userID, reason string) (*model.CancelResult, error) {
	ctx, span := tracer.Start(ctx, "booking.cancel")
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if !b.Status.Active() {
		return nil, repository.ErrInvalidState
	}

	startsAt, err := slot.StartTime(b.BookingDate, b.Slots)
	if err != nil {
		return nil, fmt.Errorf("booking start time: %w", err)
	}
	now := s.now().UTC()
	refund := RefundAmount(b.FinalPrice, startsAt, now)

	cancelled, err := s.bookings.Cancel(ctx, id, strings.TrimSpace(reason), now, refund)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, mq.KeyBookingCancelled, map[string]any{
		"booking_id":    cancelled.ID,
		"user_id":       cancelled.UserID,
		"refund_amount": cancelled.RefundAmount,
	})
	return &model.CancelResult{RefundAmount: cancelled.RefundAmount, Booking: cancelled}, nil
}

// publish emits a lifecycle event when a publisher is configured. Event
// delivery never blocks or fails a booking operation.
func (s *BookingService) publish(ctx context.Context, key string, v any) {
	if s.events == nil {
		return
	}
	_ = s.events.PublishJSON(ctx, key, v)
}
