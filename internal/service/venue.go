package service

import (
	"context"
	"strings"

	"github.com/khelsaga/venue-booking/internal/model"
	"github.com/khelsaga/venue-booking/internal/repository"
)

// VenueService exposes the read-only venue catalog.
type VenueService struct {
	venues repository.VenueStore
}

// NewVenueService constructs a VenueService.
func NewVenueService(venues repository.VenueStore) *VenueService {
	return &VenueService{venues: venues}
}

// ListVenues returns active venues matching the filter.
func (s *VenueService) ListVenues(ctx context.Context, filter model.VenueFilter) ([]model.Venue, error) {
	filter.City = strings.TrimSpace(filter.City)
	filter.Sport = strings.TrimSpace(filter.Sport)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.venues.List(ctx, filter)
}

// GetVenue returns a single venue with its facilities.
func (s *VenueService) GetVenue(ctx context.Context, id string) (*model.Venue, error) {
	if id == "" {
		return nil, repository.ErrNotFound
	}
	return s.venues.GetByID(ctx, id)
}

// ListFacilities returns the bookable facilities of a venue.
func (s *VenueService) ListFacilities(ctx context.Context, venueID string) ([]model.Facility, error) {
	if _, err := s.venues.GetByID(ctx, venueID); err != nil {
		return nil, err
	}
	return s.venues.FacilitiesByVenue(ctx, venueID)
}
