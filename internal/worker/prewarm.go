package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargeroute/chargeroute/internal/directions"
	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/stations"
)

// RouteWarmer warms the road-route cache for a corridor leg.
type RouteWarmer interface {
	RoadRoute(ctx context.Context, origin, destination geo.Coordinate) (*directions.RoadRoute, error)
}

// StationWarmer warms the charging-station discovery cache around a point.
type StationWarmer interface {
	FindNear(ctx context.Context, center geo.Coordinate) ([]stations.Candidate, error)
}

// PrewarmJob warms the directions and station caches along configured
// corridors so peak-hour plan requests hit warm caches.
type PrewarmJob struct {
	config PrewarmConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	directionsService RouteWarmer
	stationsService   StationWarmer

	// Metrics
	metrics *PrewarmMetrics
}

// PrewarmMetrics tracks prewarm job statistics.
type PrewarmMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns          int64
	SuccessfulWarms    int64
	FailedWarms        int64
	LegsWarmed         int64
	StationLookups     int64
	StationsDiscovered int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// PrewarmJobConfig holds configuration for creating a PrewarmJob.
type PrewarmJobConfig struct {
	Config            PrewarmConfig
	Logger            zerolog.Logger
	DirectionsService RouteWarmer
	StationsService   StationWarmer
}

// NewPrewarmJob creates a new prewarm job processor.
func NewPrewarmJob(cfg PrewarmJobConfig) *PrewarmJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultPrewarmConfig()
	}

	return &PrewarmJob{
		config:            config,
		logger:            cfg.Logger,
		directionsService: cfg.DirectionsService,
		stationsService:   cfg.StationsService,
		metrics:           &PrewarmMetrics{},
	}
}

// PrewarmResult contains the result of a prewarm run.
type PrewarmResult struct {
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
	TotalPoints        int
	Successful         int
	Failed             int
	Errors             []PrewarmError
	LegsWarmed         int
	StationsDiscovered int
}

// PrewarmError represents an error during a prewarm operation.
type PrewarmError struct {
	Kind     string
	Corridor string
	Point    Point
	Error    string
}

// Run executes the prewarm job for all configured corridors.
func (j *PrewarmJob) Run(ctx context.Context) *PrewarmResult {
	startTime := time.Now()
	result := &PrewarmResult{
		StartTime:   startTime,
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting corridor prewarm job")

	items := j.workItems()

	itemsChan := make(chan workItem, len(items))
	resultsChan := make(chan itemResult, len(items))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.prewarmWorker(ctx, itemsChan, resultsChan)
		}()
	}

	// Send work to the pool
	for _, item := range items {
		itemsChan <- item
	}
	close(itemsChan)

	// Wait for workers to complete
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results
	for ir := range resultsChan {
		if ir.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.LegsWarmed += ir.legsWarmed
		result.StationsDiscovered += ir.stationsDiscovered
		result.Errors = append(result.Errors, ir.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("legs_warmed", result.LegsWarmed).
		Int("stations_discovered", result.StationsDiscovered).
		Msg("corridor prewarm job completed")

	return result
}

// workItem is one corridor waypoint plus the leg to its successor, if any.
type workItem struct {
	corridor string
	point    Point
	next     *Point
}

type itemResult struct {
	success            bool
	legsWarmed         int
	stationsDiscovered int
	errors             []PrewarmError
}

// workItems flattens the corridors into per-waypoint work.
func (j *PrewarmJob) workItems() []workItem {
	var items []workItem
	for _, target := range j.config.Targets {
		for i, p := range target.Points {
			item := workItem{corridor: target.Name, point: p}
			if i+1 < len(target.Points) {
				next := target.Points[i+1]
				item.next = &next
			}
			items = append(items, item)
		}
	}
	return items
}

func (j *PrewarmJob) prewarmWorker(ctx context.Context, items <-chan workItem, results chan<- itemResult) {
	for item := range items {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.prewarmItem(ctx, item)
		}
	}
}

func (j *PrewarmJob) prewarmItem(ctx context.Context, item workItem) itemResult {
	result := itemResult{success: true}

	itemCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	// Warm station discovery around the waypoint
	if j.config.PrewarmStations && j.stationsService != nil {
		center := geo.Coordinate{Lat: item.point.Lat, Lon: item.point.Lon}
		found, err := j.stationsService.FindNear(itemCtx, center)
		atomic.AddInt64(&j.metrics.StationLookups, 1)
		if err != nil {
			result.errors = append(result.errors, PrewarmError{
				Kind:     "stations",
				Corridor: item.corridor,
				Point:    item.point,
				Error:    err.Error(),
			})
			result.success = false
		} else {
			result.stationsDiscovered += len(found)
			atomic.AddInt64(&j.metrics.StationsDiscovered, int64(len(found)))
		}
	}

	// Warm the road route to the next waypoint
	if j.config.PrewarmDirections && j.directionsService != nil && item.next != nil {
		origin := geo.Coordinate{Lat: item.point.Lat, Lon: item.point.Lon}
		destination := geo.Coordinate{Lat: item.next.Lat, Lon: item.next.Lon}
		if _, err := j.directionsService.RoadRoute(itemCtx, origin, destination); err != nil {
			result.errors = append(result.errors, PrewarmError{
				Kind:     "directions",
				Corridor: item.corridor,
				Point:    item.point,
				Error:    err.Error(),
			})
			result.success = false
		} else {
			result.legsWarmed++
			atomic.AddInt64(&j.metrics.LegsWarmed, 1)
		}
	}

	return result
}

func (j *PrewarmJob) updateMetrics(result *PrewarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulWarms += int64(result.Successful)
	j.metrics.FailedWarms += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *PrewarmJob) GetMetrics() PrewarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return PrewarmMetrics{
		TotalRuns:          j.metrics.TotalRuns,
		SuccessfulWarms:    j.metrics.SuccessfulWarms,
		FailedWarms:        j.metrics.FailedWarms,
		LegsWarmed:         atomic.LoadInt64(&j.metrics.LegsWarmed),
		StationLookups:     atomic.LoadInt64(&j.metrics.StationLookups),
		StationsDiscovered: atomic.LoadInt64(&j.metrics.StationsDiscovered),
		LastRunAt:          j.metrics.LastRunAt,
		LastRunDuration:    j.metrics.LastRunDuration,
		TotalDuration:      j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *PrewarmJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":          m.TotalRuns,
		"successful_warms":    m.SuccessfulWarms,
		"failed_warms":        m.FailedWarms,
		"legs_warmed":         m.LegsWarmed,
		"station_lookups":     m.StationLookups,
		"stations_discovered": m.StationsDiscovered,
		"last_run_at":         m.LastRunAt,
		"last_run_duration":   m.LastRunDuration.String(),
		"total_duration":      m.TotalDuration.String(),
	}
}
