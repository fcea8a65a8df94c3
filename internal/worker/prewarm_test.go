package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargeroute/chargeroute/internal/directions"
	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/stations"
	"github.com/chargeroute/chargeroute/internal/worker"
)

// fakeRouteWarmer records warmed legs.
type fakeRouteWarmer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRouteWarmer) RoadRoute(_ context.Context, origin, destination geo.Coordinate) (*directions.RoadRoute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &directions.RoadRoute{
		DistanceKm: geo.DistanceKm(origin, destination),
		Path:       []geo.Coordinate{origin, destination},
	}, nil
}

// fakeStationWarmer records warmed points.
type fakeStationWarmer struct {
	mu       sync.Mutex
	calls    int
	stations []stations.Candidate
	err      error
}

func (f *fakeStationWarmer) FindNear(_ context.Context, _ geo.Coordinate) ([]stations.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.stations, nil
}

func TestDefaultPrewarmConfig(t *testing.T) {
	cfg := worker.DefaultPrewarmConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.PrewarmDirections)
	assert.True(t, cfg.PrewarmStations)
	assert.NotEmpty(t, cfg.Targets)
}

func TestDefaultPrewarmTargets(t *testing.T) {
	targets := worker.DefaultPrewarmTargets()

	// Should cover multiple corridors
	assert.GreaterOrEqual(t, len(targets), 5)

	var a2 *worker.PrewarmTarget
	for i := range targets {
		if targets[i].Name == "A2 Amsterdam - Maastricht" {
			a2 = &targets[i]
			break
		}
	}
	require.NotNil(t, a2, "the A2 corridor should be in the targets")
	assert.Equal(t, 1, a2.Priority)
	assert.GreaterOrEqual(t, len(a2.Points), 2)
}

func TestPrewarmConfig_AllPointsAndLegs(t *testing.T) {
	cfg := worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{
				Name:   "Corridor A",
				Points: []worker.Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 3, Lon: 3}},
			},
			{
				Name:   "Corridor B",
				Points: []worker.Point{{Lat: 4, Lon: 4}},
			},
		},
	}

	assert.Len(t, cfg.AllPoints(), 4)
	assert.Equal(t, 4, cfg.TotalPoints())

	legs := cfg.AllLegs()
	require.Len(t, legs, 2)
	assert.Equal(t, "Corridor A", legs[0].Corridor)
	assert.Equal(t, worker.Point{Lat: 1, Lon: 1}, legs[0].From)
	assert.Equal(t, worker.Point{Lat: 2, Lon: 2}, legs[0].To)
}

func TestPrewarmJob_Run_NoServices(t *testing.T) {
	cfg := worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}},
			},
		},
		Concurrency:       1,
		Timeout:           1 * time.Second,
		PrewarmDirections: true,
		PrewarmStations:   true,
	}

	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: cfg,
		Logger: zerolog.Nop(),
	})

	result := job.Run(context.Background())

	// Should complete without panicking
	assert.NotNil(t, result)
	assert.Equal(t, 1, result.TotalPoints)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestPrewarmJob_Run_WarmsLegsAndStations(t *testing.T) {
	routeWarmer := &fakeRouteWarmer{}
	stationWarmer := &fakeStationWarmer{
		stations: []stations.Candidate{
			{ID: "st-1", Name: "Fastned Utrecht", ChargingSpeedKW: 60},
			{ID: "st-2", Name: "Shell Recharge", ChargingSpeedKW: 45},
		},
	}

	cfg := worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{
				Name:   "Test corridor",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}, {Lat: 52.09, Lon: 5.11}, {Lat: 51.44, Lon: 5.47}},
			},
		},
		Concurrency:       2,
		Timeout:           1 * time.Second,
		PrewarmDirections: true,
		PrewarmStations:   true,
	}

	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:            cfg,
		Logger:            zerolog.Nop(),
		DirectionsService: routeWarmer,
		StationsService:   stationWarmer,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 3, result.Successful)
	assert.Zero(t, result.Failed)
	// Two legs between three waypoints
	assert.Equal(t, 2, result.LegsWarmed)
	assert.Equal(t, 2, routeWarmer.calls)
	// Station discovery at every waypoint
	assert.Equal(t, 3, stationWarmer.calls)
	assert.Equal(t, 6, result.StationsDiscovered)
}

func TestPrewarmJob_Run_CollectsErrors(t *testing.T) {
	routeWarmer := &fakeRouteWarmer{err: errors.New("provider unavailable")}
	stationWarmer := &fakeStationWarmer{}

	cfg := worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{
				Name:   "Broken corridor",
				Points: []worker.Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}},
			},
		},
		Concurrency:       1,
		Timeout:           1 * time.Second,
		PrewarmDirections: true,
		PrewarmStations:   true,
	}

	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:            cfg,
		Logger:            zerolog.Nop(),
		DirectionsService: routeWarmer,
		StationsService:   stationWarmer,
	})

	result := job.Run(context.Background())

	// The first waypoint's leg warm fails; the final waypoint has no leg.
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Successful)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "directions", result.Errors[0].Kind)
	assert.Equal(t, "Broken corridor", result.Errors[0].Corridor)
	assert.Contains(t, result.Errors[0].Error, "provider unavailable")
}

func TestPrewarmJob_GetMetrics(t *testing.T) {
	cfg := worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}},
			},
		},
		Concurrency: 1,
		Timeout:     1 * time.Second,
	}

	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: cfg,
		Logger: zerolog.Nop(),
	})

	_ = job.Run(context.Background())

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRuns)
	assert.NotZero(t, metrics.LastRunAt)
	assert.Greater(t, metrics.LastRunDuration, time.Duration(0))
}

func TestPrewarmJob_MetricsSnapshot(t *testing.T) {
	cfg := worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}},
			},
		},
		Concurrency: 1,
		Timeout:     1 * time.Second,
	}

	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: cfg,
		Logger: zerolog.Nop(),
	})

	_ = job.Run(context.Background())

	snapshot := job.MetricsSnapshot()

	assert.Contains(t, snapshot, "total_runs")
	assert.Contains(t, snapshot, "successful_warms")
	assert.Contains(t, snapshot, "failed_warms")
	assert.Contains(t, snapshot, "legs_warmed")
	assert.Contains(t, snapshot, "last_run_at")
	assert.Contains(t, snapshot, "last_run_duration")
}

func TestPrewarmJob_Run_ContextCancellation(t *testing.T) {
	points := make([]worker.Point, 100)
	for i := range points {
		points[i] = worker.Point{Lat: 52.0 + float64(i)*0.01, Lon: 4.0 + float64(i)*0.01}
	}

	cfg := worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{
				Name:   "Test",
				Points: points,
			},
		},
		Concurrency: 1,
		Timeout:     100 * time.Millisecond,
	}

	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: cfg,
		Logger: zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := job.Run(ctx)

	// Should complete (even if not all points processed)
	assert.NotNil(t, result)
}

func TestNewPrewarmJob_DefaultConfig(t *testing.T) {
	// Create job with empty config - should use defaults
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: worker.PrewarmConfig{}, // Empty
		Logger: zerolog.Nop(),
	})

	metrics := job.GetMetrics()
	assert.Equal(t, int64(0), metrics.TotalRuns) // Not run yet
}

func TestPrewarmError_Fields(t *testing.T) {
	err := worker.PrewarmError{
		Kind:     "stations",
		Corridor: "A2 Amsterdam - Maastricht",
		Point:    worker.Point{Lat: 52.37, Lon: 4.90},
		Error:    "connection refused",
	}

	assert.Equal(t, "stations", err.Kind)
	assert.Equal(t, "A2 Amsterdam - Maastricht", err.Corridor)
	assert.Equal(t, 52.37, err.Point.Lat)
	assert.Equal(t, "connection refused", err.Error)
}

// BenchmarkPrewarmJob_Run benchmarks the prewarm job.
func BenchmarkPrewarmJob_Run(b *testing.B) {
	cfg := worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{
				Name:   "Benchmark",
				Points: []worker.Point{{Lat: 52.37, Lon: 4.90}},
			},
		},
		Concurrency: 1,
		Timeout:     100 * time.Millisecond,
	}

	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: cfg,
		Logger: zerolog.Nop(),
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = job.Run(context.Background())
	}
}
