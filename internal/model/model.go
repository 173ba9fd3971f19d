// Package model defines the core domain types for the venue booking system.
package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Active reports whether a booking in this status still claims its slots.
// Cancelled bookings do not constrain future bookings.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// PaymentStatus tracks whether a booking has been paid for.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Venue is a sports complex that hosts one or more bookable facilities.
type Venue struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	City        string     `json:"city"`
	Address     string     `json:"address"`
	Description string     `json:"description"`
	Rating      float64    `json:"rating"`
	IsActive    bool       `json:"is_active"`
	Facilities  []Facility `json:"facilities,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Facility is a single bookable unit within a venue, e.g. one cricket ground.
// PricePerHour is the current rate; it is frozen into a booking at creation
// time, so later price changes never affect existing bookings.
type Facility struct {
	ID           string    `json:"id"`
	VenueID      string    `json:"venue_id"`
	SportType    string    `json:"sport_type"`
	FacilityName string    `json:"facility_name"`
	PricePerHour float64   `json:"price_per_hour"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
}

// Booking is a user's claim over a set of hourly slots on one facility for
// one calendar day. Slots are presented sorted; for conflict purposes they
// are an order-insensitive set.
type Booking struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"user_id"`
	FacilityID         string        `json:"facility_id"`
	VenueID            string        `json:"venue_id"`
	BookingDate        string        `json:"booking_date"` // YYYY-MM-DD
	Slots              []string      `json:"slots"`
	TotalHours         int           `json:"total_hours"`
	BasePrice          float64       `json:"base_price"`
	DiscountApplied    float64       `json:"discount_applied"`
	FinalPrice         float64       `json:"final_price"`
	PaymentMethod      string        `json:"payment_method"`
	Status             BookingStatus `json:"status"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	TransactionID      string        `json:"transaction_id,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	RefundAmount       float64       `json:"refund_amount"`
	CreatedAt          time.Time     `json:"created_at"`
}

// CreateBookingRequest is the payload for creating a new booking.
type CreateBookingRequest struct {
	FacilityID    string   `json:"facility_id"`
	VenueID       string   `json:"venue_id"`
	BookingDate   string   `json:"booking_date"`
	Slots         []string `json:"slots"`
	PaymentMethod string   `json:"payment_method"`
}

// ConfirmPaymentRequest carries the payment transaction reference used to
// confirm a pending booking.
type ConfirmPaymentRequest struct {
	TransactionID string `json:"transaction_id"`
}

// CancelBookingRequest is the payload for cancelling a booking.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelResult is returned from a successful cancellation.
type CancelResult struct {
	RefundAmount float64  `json:"refund_amount"`
	Booking      *Booking `json:"booking"`
}

// Availability describes which slots are already taken on a facility for a day.
type Availability struct {
	FacilityID  string   `json:"facility_id"`
	BookingDate string   `json:"booking_date"`
	BookedSlots []string `json:"booked_slots"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error            string   `json:"error"`
	ConflictingSlots []string `json:"conflicting_slots,omitempty"`
}

// VenueFilter narrows a venue listing.
type VenueFilter struct {
	City   string
	Sport  string
	Search string
}
