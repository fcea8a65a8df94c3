package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chargeroute/chargeroute/internal/planner"
)

// PostgresRepository is a PostgreSQL implementation of Repository. The
// computed plan is stored as JSONB alongside the trip parameters.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL trip repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new trip.
func (r *PostgresRepository) Create(ctx context.Context, trip *Trip) error {
	query := `
		INSERT INTO trips (
			id, user_id, name,
			origin_lat, origin_lon, destination_lat, destination_lon,
			battery_percent, full_range_km, battery_capacity_kwh,
			plan, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	planJSON, err := marshalPlan(trip.Plan)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		trip.ID,
		trip.UserID,
		trip.Name,
		trip.Origin.Lat,
		trip.Origin.Lon,
		trip.Destination.Lat,
		trip.Destination.Lon,
		trip.BatteryPercent,
		trip.FullRangeKm,
		trip.BatteryCapacityKWh,
		planJSON,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	return err
}

// FindByID returns a trip by ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Trip, error) {
	query := `
		SELECT id, user_id, name,
			origin_lat, origin_lon, destination_lat, destination_lon,
			battery_percent, full_range_km, battery_capacity_kwh,
			plan, created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	trip, err := scanTrip(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	return trip, nil
}

// ListByUser returns a user's trips, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Trip, error) {
	query := `
		SELECT id, user_id, name,
			origin_lat, origin_lon, destination_lat, destination_lon,
			battery_percent, full_range_km, battery_capacity_kwh,
			plan, created_at, updated_at
		FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]*Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// CountByUser returns the number of trips owned by a user.
func (r *PostgresRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trips WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// Delete removes a trip.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*Trip, error) {
	var (
		trip     Trip
		planJSON []byte
	)

	err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Name,
		&trip.Origin.Lat,
		&trip.Origin.Lon,
		&trip.Destination.Lat,
		&trip.Destination.Lon,
		&trip.BatteryPercent,
		&trip.FullRangeKm,
		&trip.BatteryCapacityKWh,
		&planJSON,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(planJSON) > 0 {
		var plan planner.RoutePlan
		if err := json.Unmarshal(planJSON, &plan); err != nil {
			return nil, fmt.Errorf("decode stored plan: %w", err)
		}
		trip.Plan = &plan
	}

	return &trip, nil
}

func marshalPlan(plan *planner.RoutePlan) ([]byte, error) {
	if plan == nil {
		return nil, nil
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	return data, nil
}
