package stations_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/stations"
)

type stubProvider struct {
	// byRadius maps a search radius to the stations returned at that radius.
	byRadius map[float64][]stations.Candidate
	err      error
	radii    []float64
}

func (p *stubProvider) Nearby(_ context.Context, _ geo.Coordinate, radiusKm float64) ([]stations.Candidate, error) {
	p.radii = append(p.radii, radiusKm)
	if p.err != nil {
		return nil, p.err
	}
	return p.byRadius[radiusKm], nil
}

func (p *stubProvider) Name() string { return "stub" }

var center = geo.Coordinate{Lat: 27.5, Lon: 76.6}

func TestFindNear_FirstRadiusHit(t *testing.T) {
	provider := &stubProvider{byRadius: map[float64][]stations.Candidate{
		50: {{ID: "st-1", Name: "Highway Charge Hub", Location: center}},
	}}

	svc := stations.NewService(stations.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	found, err := svc.FindNear(context.Background(), center)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []float64{50}, provider.radii)
}

func TestFindNear_WidensUntilHit(t *testing.T) {
	provider := &stubProvider{byRadius: map[float64][]stations.Candidate{
		125: {{ID: "st-far", Location: center}},
	}}

	svc := stations.NewService(stations.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	found, err := svc.FindNear(context.Background(), center)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []float64{50, 75, 100, 125}, provider.radii)
}

func TestFindNear_EmptyAfterMaxRadius(t *testing.T) {
	provider := &stubProvider{byRadius: map[float64][]stations.Candidate{}}

	svc := stations.NewService(stations.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	found, err := svc.FindNear(context.Background(), center)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, []float64{50, 75, 100, 125, 150}, provider.radii)
}

func TestFindNear_SynthesizesMetadataDeterministically(t *testing.T) {
	provider := &stubProvider{byRadius: map[float64][]stations.Candidate{
		50: {{ID: "st-1", Location: center}, {ID: "st-2", Location: center}},
	}}

	svc := stations.NewService(stations.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	found, err := svc.FindNear(context.Background(), center)
	require.NoError(t, err)
	require.Len(t, found, 2)

	for _, c := range found {
		assert.True(t, c.MetadataSynthetic)
		assert.Contains(t, []float64{30, 45, 60}, c.ChargingSpeedKW)
		assert.GreaterOrEqual(t, c.WaitTime, 5*time.Minute)
		assert.LessOrEqual(t, c.WaitTime, 30*time.Minute)
	}

	// Same station ID always yields the same synthetic metadata.
	svc.InvalidateCache()
	again, err := svc.FindNear(context.Background(), center)
	require.NoError(t, err)
	assert.Equal(t, found, again)
}

func TestFindNear_KeepsProviderMetadata(t *testing.T) {
	provider := &stubProvider{byRadius: map[float64][]stations.Candidate{
		50: {{ID: "st-1", Location: center, ChargingSpeedKW: 150}},
	}}

	svc := stations.NewService(stations.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	found, err := svc.FindNear(context.Background(), center)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 150.0, found[0].ChargingSpeedKW)
	assert.False(t, found[0].MetadataSynthetic)
}

func TestFindNear_SimulationDisabled(t *testing.T) {
	provider := &stubProvider{byRadius: map[float64][]stations.Candidate{
		50: {{ID: "st-1", Location: center}},
	}}

	svc := stations.NewService(stations.ServiceConfig{
		Provider:                  provider,
		Logger:                    zerolog.Nop(),
		DisableMetadataSimulation: true,
	})

	found, err := svc.FindNear(context.Background(), center)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Zero(t, found[0].ChargingSpeedKW)
	assert.False(t, found[0].MetadataSynthetic)
}

func TestFindNear_RejectsInvalidLocation(t *testing.T) {
	svc := stations.NewService(stations.ServiceConfig{Provider: &stubProvider{}, Logger: zerolog.Nop()})

	_, err := svc.FindNear(context.Background(), geo.Coordinate{Lat: 100})
	require.Error(t, err)
	assert.ErrorIs(t, err, stations.ErrInvalidLocation)
}

func TestFindNear_CachesResults(t *testing.T) {
	provider := &stubProvider{byRadius: map[float64][]stations.Candidate{
		50: {{ID: "st-1", Location: center, ChargingSpeedKW: 60}},
	}}

	svc := stations.NewService(stations.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.FindNear(context.Background(), center)
	require.NoError(t, err)
	_, err = svc.FindNear(context.Background(), center)
	require.NoError(t, err)

	assert.Len(t, provider.radii, 1)
}
