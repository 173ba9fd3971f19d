package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khelsaga/venue-booking/internal/model"
)

// VenueStore is the read-only catalog contract. Venue and facility data are
// inputs to the booking flow, resolved through this explicit read path rather
// than any application-wide shared state.
type VenueStore interface {
	List(ctx context.Context, filter model.VenueFilter) ([]model.Venue, error)
	GetByID(ctx context.Context, id string) (*model.Venue, error)
	FacilitiesByVenue(ctx context.Context, venueID string) ([]model.Facility, error)
	FacilityByID(ctx context.Context, id string) (*model.Facility, error)
}

// VenueRepository handles read access to the venue catalog.
type VenueRepository struct {
	db *pgxpool.Pool
}

// NewVenueRepository constructs a VenueRepository.
func NewVenueRepository(db *pgxpool.Pool) *VenueRepository {
	return &VenueRepository{db: db}
}

// List returns active venues, optionally filtered by city, hosted sport, and
// name search.
func (r *VenueRepository) List(ctx context.Context, filter model.VenueFilter) ([]model.Venue, error) {
	query := `SELECT DISTINCT v.id, v.name, v.city, v.address, v.description,
			v.rating, v.is_active, v.created_at
		 FROM venues v`
	args := []any{}
	cond := ` WHERE v.is_active`

	if filter.Sport != "" {
		query += ` JOIN facilities f ON f.venue_id = v.id`
		args = append(args, filter.Sport)
		cond += fmt.Sprintf(` AND f.sport_type = $%d AND f.is_available`, len(args))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		cond += fmt.Sprintf(` AND v.city = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		cond += fmt.Sprintf(` AND v.name ILIKE $%d`, len(args))
	}
	query += cond + ` ORDER BY v.name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var venues []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.City, &v.Address, &v.Description,
			&v.Rating, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// GetByID returns a venue with its facilities, or ErrNotFound.
func (r *VenueRepository) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	var v model.Venue
	err := r.db.QueryRow(ctx,
		`SELECT id, name, city, address, description, rating, is_active, created_at
		 FROM venues WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Name, &v.City, &v.Address, &v.Description,
		&v.Rating, &v.IsActive, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}

	v.Facilities, err = r.FacilitiesByVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FacilitiesByVenue returns the available facilities hosted by a venue.
func (r *VenueRepository) FacilitiesByVenue(ctx context.Context, venueID string) ([]model.Facility, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, venue_id, sport_type, facility_name, price_per_hour, is_available, created_at
		 FROM facilities
		 WHERE venue_id = $1 AND is_available
		 ORDER BY facility_name`,
		venueID,
	)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	defer rows.Close()

	var facilities []model.Facility
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.VenueID, &f.SportType, &f.FacilityName,
			&f.PricePerHour, &f.IsAvailable, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}

// FacilityByID returns a single facility or ErrNotFound. The facility's
// current hourly price is read here at booking time and frozen into the
// booking record.
func (r *VenueRepository) FacilityByID(ctx context.Context, id string) (*model.Facility, error) {
	var f model.Facility
	err := r.db.QueryRow(ctx,
		`SELECT id, venue_id, sport_type, facility_name, price_per_hour, is_available, created_at
		 FROM facilities WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.VenueID, &f.SportType, &f.FacilityName,
		&f.PricePerHour, &f.IsAvailable, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return &f, nil
}
