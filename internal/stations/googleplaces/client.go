// Package googleplaces provides a stations.Provider backed by the Google
// Places Nearby Search API.
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/provider/resilience"
	"github.com/chargeroute/chargeroute/internal/stations"
)

const (
	// ProviderName identifies this stations provider.
	ProviderName = "googleplaces-nearby"

	// DefaultBaseURL is the Google Maps API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	placeType = "charging_station"
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Places API client.
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

// Client calls the Google Places Nearby Search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a Places API client.
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

// Nearby returns charging stations within radiusKm of center. The Places API
// reports no charger power or queue data, so candidates come back with zero
// ChargingSpeedKW for the stations service to fill in.
func (c *Client) Nearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]stations.Candidate, error) {
	query := url.Values{}
	query.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lon))
	query.Set("radius", strconv.Itoa(int(radiusKm*1000)))
	query.Set("type", placeType)
	query.Set("key", c.apiKey)

	endpoint := c.baseURL + "/maps/api/place/nearbysearch/json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &stations.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach places provider",
			Err:      stations.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &stations.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("places provider returned status %d", resp.StatusCode),
			Err:      stations.ErrProviderUnavailable,
		}
	}

	var apiResp nearbyResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch apiResp.Status {
	case statusOK:
	case statusZeroResults:
		return nil, nil
	case statusOverQueryLimit:
		return nil, &stations.Error{Provider: ProviderName, Code: apiResp.Status, Message: c.statusMessage(apiResp), Err: stations.ErrRateLimitExceeded}
	case statusInvalidRequest:
		return nil, &stations.Error{Provider: ProviderName, Code: apiResp.Status, Message: c.statusMessage(apiResp), Err: stations.ErrInvalidLocation}
	default:
		return nil, &stations.Error{Provider: ProviderName, Code: apiResp.Status, Message: c.statusMessage(apiResp), Err: stations.ErrProviderUnavailable}
	}

	candidates := make([]stations.Candidate, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		candidates = append(candidates, stations.Candidate{
			ID:       r.PlaceID,
			Name:     r.Name,
			Vicinity: r.Vicinity,
			Location: geo.Coordinate{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng},
		})
	}

	c.logger.Debug().
		Float64("radius_km", radiusKm).
		Int("stations", len(candidates)).
		Msg("received nearby charging stations from Google Places")

	return candidates, nil
}

func (c *Client) statusMessage(resp nearbyResponse) string {
	if resp.ErrorMessage != "" {
		return resp.ErrorMessage
	}
	return "places request failed with status " + resp.Status
}
