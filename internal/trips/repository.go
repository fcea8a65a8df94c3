package trips

import (
	"context"
	"sort"
	"sync"
)

// Repository stores trips.
type Repository interface {
	// Create stores a new trip.
	Create(ctx context.Context, trip *Trip) error
	// FindByID returns a trip by ID, regardless of owner.
	FindByID(ctx context.Context, id string) (*Trip, error)
	// ListByUser returns a user's trips, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Trip, error)
	// CountByUser returns the number of trips owned by a user.
	CountByUser(ctx context.Context, userID string) (int, error)
	// Delete removes a trip.
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu    sync.RWMutex
	trips map[string]*Trip
}

// NewInMemoryRepository creates a new in-memory trip repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{trips: make(map[string]*Trip)}
}

// Create stores a new trip.
func (r *InMemoryRepository) Create(_ context.Context, trip *Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tripCopy := *trip
	r.trips[trip.ID] = &tripCopy

	return nil
}

// FindByID returns a trip by ID.
func (r *InMemoryRepository) FindByID(_ context.Context, id string) (*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trip, ok := r.trips[id]
	if !ok {
		return nil, ErrTripNotFound
	}

	tripCopy := *trip
	return &tripCopy, nil
}

// ListByUser returns a user's trips, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]*Trip, 0)
	for _, trip := range r.trips {
		if trip.UserID == userID {
			tripCopy := *trip
			owned = append(owned, &tripCopy)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	if offset >= len(owned) {
		return []*Trip{}, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}

	return owned, nil
}

// CountByUser returns the number of trips owned by a user.
func (r *InMemoryRepository) CountByUser(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, trip := range r.trips {
		if trip.UserID == userID {
			count++
		}
	}
	return count, nil
}

// Delete removes a trip.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trips[id]; !ok {
		return ErrTripNotFound
	}
	delete(r.trips, id)

	return nil
}
