// Package repository implements all database queries for the venue booking
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khelsaga/venue-booking/internal/model"
	"github.com/khelsaga/venue-booking/internal/slot"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrSlotConflict is returned when one or more requested slots are already
// held by a non-cancelled booking. This is the expected, user-facing outcome
// of losing a booking race, not a bug.
var ErrSlotConflict = errors.New("slot already booked")

// ErrInvalidState is returned when an operation targets a booking in a
// terminal or incompatible status.
var ErrInvalidState = errors.New("booking is not in a valid state for this operation")

// ConflictError carries the actual conflicting slot labels so clients can
// offer alternatives. It unwraps to ErrSlotConflict.
type ConflictError struct {
	Slots []string
}

func (e *ConflictError) Error() string {
	if len(e.Slots) == 0 {
		return "slots already booked"
	}
	return fmt.Sprintf("slots already booked: %s", strings.Join(e.Slots, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrSlotConflict }

// slotUniqueConstraint is the index that makes (facility, date, slot)
// claims globally exclusive. See schema.sql.
const slotUniqueConstraint = "booking_slots_facility_date_slot_key"

// BookingStore is the persistence contract the booking service depends on.
type BookingStore interface {
	ReservedSlots(ctx context.Context, facilityID, date string) ([]string, error)
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ConfirmPayment(ctx context.Context, id, transactionID string) (*model.Booking, error)
	Cancel(ctx context.Context, id, reason string, cancelledAt time.Time, refund float64) (*model.Booking, error)
}

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, facility_id, venue_id,
	to_char(booking_date, 'YYYY-MM-DD'), slots, total_hours,
	base_price, discount_applied, final_price, payment_method,
	status, payment_status, transaction_id, cancellation_reason,
	cancelled_at, refund_amount, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.FacilityID, &b.VenueID,
		&b.BookingDate, &b.Slots, &b.TotalHours,
		&b.BasePrice, &b.DiscountApplied, &b.FinalPrice, &b.PaymentMethod,
		&b.Status, &b.PaymentStatus, &b.TransactionID, &b.CancellationReason,
		&b.CancelledAt, &b.RefundAmount, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ReservedSlots returns the union of slots claimed by pending or confirmed
// bookings on (facility, date). Claim rows exist only for active bookings,
// so the claims table is exactly the reserved set.
//
// A storage failure here must propagate: treating it as "nothing booked"
// would silently let double-bookings through.
func (r *BookingRepository) ReservedSlots(ctx context.Context, facilityID, date string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT slot FROM booking_slots
		 WHERE facility_id = $1 AND booking_date = $2::date`,
		facilityID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("query reserved slots: %w", err)
	}
	defer rows.Close()

	var reserved []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan reserved slot: %w", err)
		}
		reserved = append(reserved, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read reserved slots: %w", err)
	}
	return reserved, nil
}

// Create atomically claims b's slots and inserts the booking row.
//
// The booking and one claim row per slot are written in a single transaction.
// The UNIQUE index on booking_slots(facility_id, booking_date, slot) is the
// authority for the no-double-booking invariant: when two requests race for
// an overlapping slot set, exactly one commit succeeds and the loser's
// constraint violation is translated into ErrSlotConflict. The in-transaction
// pre-check exists only to name the conflicting slots in the common,
// non-racing case. Because the constraint is per slot, requests for disjoint
// slot sets on the same day commit concurrently without contention.
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Fast path: report exactly which slots are taken.
	rows, err := tx.Query(ctx,
		`SELECT slot FROM booking_slots
		 WHERE facility_id = $1 AND booking_date = $2::date`,
		b.FacilityID, b.BookingDate,
	)
	if err != nil {
		return fmt.Errorf("query reserved slots: %w", err)
	}
	var reserved []string
	for rows.Next() {
		var s string
		if err = rows.Scan(&s); err != nil {
			rows.Close()
			return fmt.Errorf("scan reserved slot: %w", err)
		}
		reserved = append(reserved, s)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("read reserved slots: %w", err)
	}
	if conflicts := slot.Intersect(b.Slots, reserved); len(conflicts) > 0 {
		err = &ConflictError{Slots: conflicts}
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, user_id, facility_id, venue_id, booking_date,
			slots, total_hours, base_price, discount_applied, final_price,
			payment_method, status, payment_status, created_at)
		 VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		b.ID, b.UserID, b.FacilityID, b.VenueID, b.BookingDate,
		b.Slots, b.TotalHours, b.BasePrice, b.DiscountApplied, b.FinalPrice,
		b.PaymentMethod, b.Status, b.PaymentStatus, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO booking_slots (booking_id, facility_id, booking_date, slot)
		 SELECT $1, $2, $3::date, unnest($4::text[])`,
		b.ID, b.FacilityID, b.BookingDate, b.Slots,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == slotUniqueConstraint {
			// Lost the race after the pre-check passed. The caller re-reads
			// availability to name the conflicting slots.
			err = &ConflictError{}
			return err
		}
		return fmt.Errorf("claim slots: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// ConfirmPayment transitions a pending booking to confirmed/paid, recording
// the payment transaction reference.
//
// The operation is idempotent: a retry carrying the same transaction
// reference returns the already-confirmed booking unchanged. A different
// reference against an already-paid booking, or any reference against a
// cancelled booking, is ErrInvalidState. No conflict re-check happens here;
// the slots were claimed at creation time.
func (r *BookingRepository) ConfirmPayment(ctx context.Context, id, transactionID string) (*model.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock booking row: %w", err)
	}

	if b.Status == model.StatusCancelled {
		err = ErrInvalidState
		return nil, err
	}
	if b.PaymentStatus == model.PaymentPaid {
		if b.TransactionID == transactionID {
			// Retried confirmation with the same reference.
			if err = tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("commit transaction: %w", err)
			}
			return b, nil
		}
		err = ErrInvalidState
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE bookings
		 SET status = $2, payment_status = $3, transaction_id = $4
		 WHERE id = $1`,
		id, model.StatusConfirmed, model.PaymentPaid, transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	b.Status = model.StatusConfirmed
	b.PaymentStatus = model.PaymentPaid
	b.TransactionID = transactionID
	return b, nil
}

// Cancel transitions an active booking to cancelled, records the cancellation
// metadata, and releases the booking's slot claims so the hours become
// bookable again.
//
// The status guard in the UPDATE makes double-cancellation safe under
// concurrency: a second canceller matches zero rows and gets ErrInvalidState.
func (r *BookingRepository) Cancel(ctx context.Context, id, reason string, cancelledAt time.Time, refund float64) (*model.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx,
		`UPDATE bookings
		 SET status = $2, cancellation_reason = $3, cancelled_at = $4, refund_amount = $5
		 WHERE id = $1 AND status IN ('pending', 'confirmed')
		 RETURNING `+bookingColumns,
		id, model.StatusCancelled, reason, cancelledAt, refund,
	)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = r.cancelFailure(ctx, id)
			return nil, err
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	// Freeing the claims is what makes the slots available again.
	_, err = tx.Exec(ctx, `DELETE FROM booking_slots WHERE booking_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("release slot claims: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return b, nil
}

// cancelFailure distinguishes "no such booking" from "already terminal" after
// a guarded cancel matched no rows.
func (r *BookingRepository) cancelFailure(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check booking exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidState
}
