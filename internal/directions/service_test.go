package directions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargeroute/chargeroute/internal/directions"
	"github.com/chargeroute/chargeroute/internal/geo"
)

type stubProvider struct {
	route *directions.RoadRoute
	err   error
	calls int
}

func (p *stubProvider) Route(_ context.Context, _, _ geo.Coordinate) (*directions.RoadRoute, error) {
	p.calls++
	return p.route, p.err
}

func (p *stubProvider) Name() string { return "stub" }

var (
	origin      = geo.Coordinate{Lat: 28.6139, Lon: 77.2090}
	destination = geo.Coordinate{Lat: 26.9124, Lon: 75.7873}
)

func TestRoadRoute_ReturnsProviderRoute(t *testing.T) {
	provider := &stubProvider{
		route: &directions.RoadRoute{
			DistanceKm: 280,
			Duration:   4 * time.Hour,
			Path:       []geo.Coordinate{origin, {Lat: 27.5, Lon: 76.6}, destination},
			Provider:   "stub",
		},
	}

	svc := directions.NewService(directions.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	route, err := svc.RoadRoute(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.False(t, route.Degraded)
	assert.Equal(t, 280.0, route.DistanceKm)
	assert.Len(t, route.Path, 3)
}

func TestRoadRoute_DegradesOnProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("boom")}
	svc := directions.NewService(directions.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	route, err := svc.RoadRoute(context.Background(), origin, destination)
	require.NoError(t, err)

	assert.True(t, route.Degraded)
	assert.Equal(t, "haversine", route.Provider)
	assert.Zero(t, route.Duration)
	assert.Len(t, route.Path, 2)
	assert.InDelta(t, geo.DistanceKm(origin, destination), route.DistanceKm, 1e-9)
}

func TestRoadRoute_DegradesOnEmptyRoute(t *testing.T) {
	provider := &stubProvider{route: &directions.RoadRoute{}}
	svc := directions.NewService(directions.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	route, err := svc.RoadRoute(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.True(t, route.Degraded)
}

func TestRoadRoute_RejectsInvalidCoordinates(t *testing.T) {
	svc := directions.NewService(directions.ServiceConfig{Provider: &stubProvider{}, Logger: zerolog.Nop()})

	_, err := svc.RoadRoute(context.Background(), geo.Coordinate{Lat: 95}, destination)
	require.Error(t, err)
	assert.ErrorIs(t, err, directions.ErrInvalidCoordinates)

	var dirErr *directions.Error
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "INVALID_ORIGIN", dirErr.Code)
}

func TestRoadRoute_CachesProviderResponses(t *testing.T) {
	provider := &stubProvider{
		route: &directions.RoadRoute{
			DistanceKm: 280,
			Duration:   4 * time.Hour,
			Path:       []geo.Coordinate{origin, destination},
		},
	}
	svc := directions.NewService(directions.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.RoadRoute(context.Background(), origin, destination)
	require.NoError(t, err)
	_, err = svc.RoadRoute(context.Background(), origin, destination)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)

	svc.InvalidateCache()
	_, err = svc.RoadRoute(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestPointAlongRoute(t *testing.T) {
	// Three vertices spaced roughly 111 km apart along a meridian.
	path := []geo.Coordinate{
		{Lat: 10, Lon: 20},
		{Lat: 11, Lon: 20},
		{Lat: 12, Lon: 20},
	}

	assert.Equal(t, path[1], directions.PointAlongRoute(path, 100))
	assert.Equal(t, path[2], directions.PointAlongRoute(path, 200))

	// Beyond the path length the final vertex is returned.
	assert.Equal(t, path[2], directions.PointAlongRoute(path, 10000))

	assert.Equal(t, geo.Coordinate{}, directions.PointAlongRoute(nil, 50))
	assert.Equal(t, path[0], directions.PointAlongRoute(path[:1], 50))
}
