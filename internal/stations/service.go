package stations

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargeroute/chargeroute/internal/geo"
)

// Default widening-search parameters.
const (
	DefaultInitialRadiusKm = 50.0
	DefaultMaxRadiusKm     = 150.0
	DefaultRadiusStepKm    = 25.0
)

// Simulated charger speeds, in kW, for stations whose provider reports no
// power rating.
var simulatedSpeedsKW = []float64{30, 45, 60}

// ServiceConfig holds configuration for the stations service.
type ServiceConfig struct {
	// Provider is the station discovery provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// InitialRadiusKm is the first search radius (default: 50).
	InitialRadiusKm float64

	// MaxRadiusKm bounds the widening search (default: 150).
	MaxRadiusKm float64

	// RadiusStepKm is the widening increment (default: 25).
	RadiusStepKm float64

	// DisableMetadataSimulation leaves stations without charger metadata
	// untouched instead of synthesizing speed and wait time.
	DisableMetadataSimulation bool

	// CacheTTL is how long search results stay cached (default: 5 minutes).
	CacheTTL time.Duration
}

// Service discovers charging stations near a point. The search starts at the
// initial radius and widens in fixed steps until a station is found or the
// maximum radius is exhausted. Stations lacking charger metadata get
// deterministic synthetic speed and wait time, seeded per station.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	initialRadiusKm float64
	maxRadiusKm     float64
	radiusStepKm    float64
	simulate        bool
	cacheTTL        time.Duration

	mu    sync.RWMutex
	cache map[string]cachedSearch
}

type cachedSearch struct {
	candidates []Candidate
	expiresAt  time.Time
}

// NewService creates a stations service.
func NewService(cfg ServiceConfig) *Service {
	initial := cfg.InitialRadiusKm
	if initial == 0 {
		initial = DefaultInitialRadiusKm
	}
	maxRadius := cfg.MaxRadiusKm
	if maxRadius == 0 {
		maxRadius = DefaultMaxRadiusKm
	}
	step := cfg.RadiusStepKm
	if step == 0 {
		step = DefaultRadiusStepKm
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		initialRadiusKm: initial,
		maxRadiusKm:     maxRadius,
		radiusStepKm:    step,
		simulate:        !cfg.DisableMetadataSimulation,
		cacheTTL:        cacheTTL,
		cache:           make(map[string]cachedSearch),
	}
}

// FindNear searches for charging stations around center, widening the radius
// until at least one station is found. Returns an empty slice, not an error,
// when the maximum radius yields nothing.
func (s *Service) FindNear(ctx context.Context, center geo.Coordinate) ([]Candidate, error) {
	if err := center.Validate(); err != nil {
		return nil, &Error{Provider: s.provider.Name(), Code: "INVALID_LOCATION", Message: "invalid search location", Err: ErrInvalidLocation}
	}

	key := s.cacheKey(center)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.candidates, nil
	}
	s.mu.RUnlock()

	var candidates []Candidate
	for radius := s.initialRadiusKm; radius <= s.maxRadiusKm; radius += s.radiusStepKm {
		found, err := s.provider.Nearby(ctx, center, radius)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			s.logger.Debug().
				Float64("radius_km", radius).
				Int("stations", len(found)).
				Msg("station search succeeded")
			candidates = found
			break
		}

		s.logger.Debug().
			Float64("radius_km", radius).
			Msg("no stations found, widening search radius")
	}

	if s.simulate {
		for i := range candidates {
			s.fillMetadata(&candidates[i])
		}
	}

	s.mu.Lock()
	s.cache[key] = cachedSearch{candidates: candidates, expiresAt: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	return candidates, nil
}

// fillMetadata synthesizes charger speed and wait time for stations whose
// provider reported neither. The random source is seeded from the station ID
// so repeated plans over the same corridor see identical stations.
func (s *Service) fillMetadata(c *Candidate) {
	if c.ChargingSpeedKW > 0 {
		return
	}

	h := fnv.New64a()
	h.Write([]byte(c.ID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	c.ChargingSpeedKW = simulatedSpeedsKW[rng.Intn(len(simulatedSpeedsKW))]
	c.WaitTime = time.Duration(5+rng.Intn(26)) * time.Minute
	c.MetadataSynthetic = true
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// InvalidateCache clears all cached search results.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cachedSearch)
}

func (s *Service) cacheKey(center geo.Coordinate) string {
	quantize := func(v float64) float64 {
		return math.Floor(v/0.01) * 0.01
	}
	return fmt.Sprintf("%.2f,%.2f", quantize(center.Lat), quantize(center.Lon))
}
