package directions

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargeroute/chargeroute/internal/geo"
)

// ServiceConfig holds configuration for the directions service.
type ServiceConfig struct {
	// Provider is the road-routing provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long routes stay cached (default: 5 minutes).
	CacheTTL time.Duration

	// CacheGridSize quantizes cache keys in degrees (default: 0.01,
	// roughly 1.1 km at the equator). Endpoints within the same grid cell
	// share a cached route.
	CacheGridSize float64
}

// Service is the external-access shim for road routing. It caches provider
// responses and degrades to straight-line geometry on provider failure, so
// the planner above it never sees a hard routing error for a single leg.
type Service struct {
	provider      Provider
	logger        zerolog.Logger
	cacheTTL      time.Duration
	cacheGridSize float64

	mu    sync.RWMutex
	cache map[string]cachedRoute
}

type cachedRoute struct {
	route     *RoadRoute
	expiresAt time.Time
}

// NewService creates a directions service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}
	gridSize := cfg.CacheGridSize
	if gridSize == 0 {
		gridSize = 0.01
	}

	return &Service{
		provider:      cfg.Provider,
		logger:        cfg.Logger,
		cacheTTL:      cacheTTL,
		cacheGridSize: gridSize,
		cache:         make(map[string]cachedRoute),
	}
}

// RoadRoute returns the road route between two points. On provider failure or
// an empty provider result it returns a degraded straight-line route rather
// than an error; the degradation is visible on the result.
func (s *Service) RoadRoute(ctx context.Context, origin, destination geo.Coordinate) (*RoadRoute, error) {
	if err := origin.Validate(); err != nil {
		return nil, &Error{Provider: s.provider.Name(), Code: "INVALID_ORIGIN", Message: "invalid origin coordinates", Err: ErrInvalidCoordinates}
	}
	if err := destination.Validate(); err != nil {
		return nil, &Error{Provider: s.provider.Name(), Code: "INVALID_DESTINATION", Message: "invalid destination coordinates", Err: ErrInvalidCoordinates}
	}

	key := s.cacheKey(origin, destination)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.route, nil
	}
	s.mu.RUnlock()

	route, err := s.provider.Route(ctx, origin, destination)
	if err != nil || route == nil || len(route.Path) == 0 {
		if err != nil {
			s.logger.Warn().Err(err).
				Float64("origin_lat", origin.Lat).
				Float64("origin_lon", origin.Lon).
				Float64("dest_lat", destination.Lat).
				Float64("dest_lon", destination.Lon).
				Str("provider", s.provider.Name()).
				Msg("directions provider failed, degrading to straight-line route")
		} else {
			s.logger.Warn().
				Str("provider", s.provider.Name()).
				Msg("directions provider returned no route, degrading to straight-line route")
		}
		return s.straightLine(origin, destination), nil
	}

	s.mu.Lock()
	s.cache[key] = cachedRoute{route: route, expiresAt: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	return route, nil
}

// straightLine builds the haversine fallback route: true great-circle
// distance, zero duration, endpoints only.
func (s *Service) straightLine(origin, destination geo.Coordinate) *RoadRoute {
	return &RoadRoute{
		DistanceKm: geo.DistanceKm(origin, destination),
		Duration:   0,
		Path:       []geo.Coordinate{origin, destination},
		Degraded:   true,
		Provider:   "haversine",
	}
}

// PointAlongRoute walks the path accumulating segment distances and returns
// the first vertex at or beyond targetKm from the start. Returns the final
// vertex when targetKm exceeds the path length, and the zero Coordinate for
// an empty path.
func PointAlongRoute(path []geo.Coordinate, targetKm float64) geo.Coordinate {
	if len(path) == 0 {
		return geo.Coordinate{}
	}

	var travelled float64
	for i := 1; i < len(path); i++ {
		travelled += geo.DistanceKm(path[i-1], path[i])
		if travelled >= targetKm {
			return path[i]
		}
	}

	return path[len(path)-1]
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// InvalidateCache clears all cached routes.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cachedRoute)
}

// cacheKey quantizes both endpoints onto the cache grid.
func (s *Service) cacheKey(origin, destination geo.Coordinate) string {
	quantize := func(v float64) float64 {
		return math.Floor(v/s.cacheGridSize) * s.cacheGridSize
	}
	return fmt.Sprintf("%.2f,%.2f:%.2f,%.2f",
		quantize(origin.Lat), quantize(origin.Lon),
		quantize(destination.Lat), quantize(destination.Lon))
}
