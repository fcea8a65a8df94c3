// Package googlemaps provides a directions.Provider backed by the Google
// Maps Directions API.
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargeroute/chargeroute/internal/directions"
	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/provider/resilience"
	"github.com/chargeroute/chargeroute/pkg/polyline"
)

const (
	// ProviderName identifies this directions provider.
	ProviderName = "googlemaps-directions"

	// DefaultBaseURL is the Google Maps API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Directions API client.
type ClientConfig struct {
	// APIKey is the Google Maps API key (required).
	APIKey string

	// BaseURL overrides the API base URL (used in tests).
	BaseURL string

	// HTTPClient overrides the HTTP client. If nil, a resilient client
	// with circuit breaking and retry is used.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (default: 10s).
	Timeout time.Duration

	// Registry receives provider health updates (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the Google Maps Directions API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a Directions API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout != 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Route fetches the driving route between two points. The full step geometry
// is decoded and concatenated so the planner can walk the path.
func (c *Client) Route(ctx context.Context, origin, destination geo.Coordinate) (*directions.RoadRoute, error) {
	query := url.Values{}
	query.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lon))
	query.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lon))
	query.Set("mode", "driving")
	query.Set("key", c.apiKey)

	endpoint := c.baseURL + "/maps/api/directions/json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Float64("origin_lat", origin.Lat).
		Float64("origin_lon", origin.Lon).
		Float64("dest_lat", destination.Lat).
		Float64("dest_lon", destination.Lon).
		Msg("requesting directions from Google Maps")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach directions provider",
			Err:      directions.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("directions provider returned status %d", resp.StatusCode),
			Err:      directions.ErrProviderUnavailable,
		}
	}

	var apiResp directionsResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if apiResp.Status != statusOK {
		return nil, c.statusError(apiResp.Status, apiResp.ErrorMessage)
	}
	if len(apiResp.Routes) == 0 {
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no routes in response",
			Err:      directions.ErrNoRouteFound,
		}
	}

	route := c.toRoadRoute(&apiResp.Routes[0])

	c.logger.Debug().
		Float64("distance_km", route.DistanceKm).
		Dur("duration", route.Duration).
		Int("path_points", len(route.Path)).
		Msg("received directions from Google Maps")

	return route, nil
}

// statusError maps a Directions API status code to a domain error.
func (c *Client) statusError(status, message string) error {
	if message == "" {
		message = "directions request failed with status " + status
	}

	switch status {
	case statusZeroResults, statusNotFound:
		return &directions.Error{Provider: ProviderName, Code: status, Message: message, Err: directions.ErrNoRouteFound}
	case statusOverQueryLimit:
		return &directions.Error{Provider: ProviderName, Code: status, Message: message, Err: directions.ErrRateLimitExceeded}
	case statusInvalidRequest:
		return &directions.Error{Provider: ProviderName, Code: status, Message: message, Err: directions.ErrInvalidCoordinates}
	default:
		return &directions.Error{Provider: ProviderName, Code: status, Message: message, Err: directions.ErrProviderUnavailable}
	}
}

// toRoadRoute flattens the legs and decoded step polylines into a RoadRoute.
func (c *Client) toRoadRoute(r *apiRoute) *directions.RoadRoute {
	var (
		distanceMeters  int
		durationSeconds int
		path            []geo.Coordinate
	)

	for i := range r.Legs {
		leg := &r.Legs[i]
		distanceMeters += leg.Distance.Value
		durationSeconds += leg.Duration.Value

		for j := range leg.Steps {
			for _, p := range polyline.Decode(leg.Steps[j].Polyline.Points) {
				path = append(path, geo.Coordinate{Lat: p.Lat, Lon: p.Lon})
			}
		}
	}

	return &directions.RoadRoute{
		DistanceKm: float64(distanceMeters) / 1000,
		Duration:   time.Duration(durationSeconds) * time.Second,
		Path:       path,
		Provider:   ProviderName,
	}
}
