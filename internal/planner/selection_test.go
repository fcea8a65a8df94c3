package planner

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/stations"
)

func newTestService(cfg Config) *Service {
	return NewService(ServiceConfig{Planner: cfg, Logger: zerolog.Nop()})
}

func TestFilterTowardDestination(t *testing.T) {
	current := geo.Coordinate{Lat: 0, Lon: 0}
	destination := geo.Coordinate{Lat: 4, Lon: 0}

	candidates := []stations.Candidate{
		{ID: "ahead", Location: geo.Coordinate{Lat: 2, Lon: 0}},
		{ID: "behind", Location: geo.Coordinate{Lat: -1, Lon: 0}},
		{ID: "same-distance", Location: geo.Coordinate{Lat: 0, Lon: 0}},
		{ID: "past-destination", Location: geo.Coordinate{Lat: 5, Lon: 0}},
	}

	kept := filterTowardDestination(candidates, current, destination)

	require.Len(t, kept, 2)
	assert.Equal(t, "ahead", kept[0].ID)
	// One degree past the destination is still closer to it than the start is.
	assert.Equal(t, "past-destination", kept[1].ID)
}

func TestFilterReachable_BoundaryInclusive(t *testing.T) {
	svc := newTestService(Config{})
	current := geo.Coordinate{Lat: 0, Lon: 0}

	// One degree of latitude is ~111.19 km. With 50% battery, a 10% reserve,
	// and a 278 km costing range, the usable 40% covers exactly ~111.2 km.
	rangeKm := 278.0
	candidates := []stations.Candidate{
		{ID: "at-limit", Location: geo.Coordinate{Lat: 1, Lon: 0}},
		{ID: "beyond", Location: geo.Coordinate{Lat: 1.1, Lon: 0}},
	}

	kept := svc.filterReachable(candidates, current, 50, rangeKm)

	require.Len(t, kept, 1)
	assert.Equal(t, "at-limit", kept[0].ID)
}

func TestRank_ClosestToDestinationWins(t *testing.T) {
	svc := newTestService(Config{})
	destination := geo.Coordinate{Lat: 4, Lon: 0}

	candidates := []stations.Candidate{
		{ID: "far", Location: geo.Coordinate{Lat: 1, Lon: 0}},
		{ID: "near", Location: geo.Coordinate{Lat: 3, Lon: 0}},
		{ID: "middle", Location: geo.Coordinate{Lat: 2, Lon: 0}},
	}

	best, ok := svc.rank(candidates, destination, nil)
	require.True(t, ok)
	assert.Equal(t, "near", best.ID)
}

func TestRank_TieKeepsDiscoveryOrder(t *testing.T) {
	svc := newTestService(Config{})
	destination := geo.Coordinate{Lat: 0, Lon: 0}

	candidates := []stations.Candidate{
		{ID: "first", Location: geo.Coordinate{Lat: 1, Lon: 0}},
		{ID: "second", Location: geo.Coordinate{Lat: -1, Lon: 0}},
	}

	best, ok := svc.rank(candidates, destination, nil)
	require.True(t, ok)
	assert.Equal(t, "first", best.ID)
}

func TestRank_EmptyInput(t *testing.T) {
	svc := newTestService(Config{})

	_, ok := svc.rank(nil, geo.Coordinate{}, nil)
	assert.False(t, ok)
}

func TestRank_PathAdherencePullsTowardRoute(t *testing.T) {
	destination := geo.Coordinate{Lat: 10, Lon: 0}
	path := []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 5, Lon: 0},
		{Lat: 10, Lon: 0},
	}

	// "off-route" is slightly closer to the destination, "on-route" sits on
	// the path.
	candidates := []stations.Candidate{
		{ID: "off-route", Location: geo.Coordinate{Lat: 7, Lon: 3}},
		{ID: "on-route", Location: geo.Coordinate{Lat: 5, Lon: 0}},
	}

	unweighted := newTestService(Config{})
	best, ok := unweighted.rank(candidates, destination, path)
	require.True(t, ok)
	assert.Equal(t, "off-route", best.ID)

	weighted := newTestService(Config{PathAdherenceWeight: 5})
	best, ok = weighted.rank(candidates, destination, path)
	require.True(t, ok)
	assert.Equal(t, "on-route", best.ID)
}
