package trips

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pagination bounds for trip listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TripPage is one page of a user's saved trips.
type TripPage struct {
	Trips  []*Trip `json:"trips"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Service manages saved trips. All operations are scoped to the requesting
// user; a trip owned by someone else behaves as if it does not exist.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a trips service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Save stores a new trip for the user.
func (s *Service) Save(ctx context.Context, userID string, in SaveTripInput) (*Trip, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	trip := &Trip{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Name:               in.Name,
		Origin:             in.Origin,
		Destination:        in.Destination,
		BatteryPercent:     in.BatteryPercent,
		FullRangeKm:        in.FullRangeKm,
		BatteryCapacityKWh: in.BatteryCapacityKWh,
		Plan:               in.Plan,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("trip_id", trip.ID).
		Str("user_id", userID).
		Msg("trip saved")

	return trip, nil
}

// Get returns one of the user's trips.
func (s *Service) Get(ctx context.Context, userID, tripID string) (*Trip, error) {
	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		// Hide other users' trips rather than revealing their existence.
		return nil, ErrTripNotFound
	}
	return trip, nil
}

// List returns a page of the user's trips, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) (*TripPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	trips, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &TripPage{Trips: trips, Total: total, Limit: limit, Offset: offset}, nil
}

// Delete removes one of the user's trips.
func (s *Service) Delete(ctx context.Context, userID, tripID string) error {
	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.UserID != userID {
		return ErrTripNotFound
	}

	if err := s.repo.Delete(ctx, tripID); err != nil {
		return err
	}

	s.logger.Info().
		Str("trip_id", tripID).
		Str("user_id", userID).
		Msg("trip deleted")

	return nil
}
