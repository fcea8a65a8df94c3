package googlemaps_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargeroute/chargeroute/internal/directions"
	"github.com/chargeroute/chargeroute/internal/directions/googlemaps"
	"github.com/chargeroute/chargeroute/internal/geo"
)

var (
	origin      = geo.Coordinate{Lat: 38.5, Lon: -120.2}
	destination = geo.Coordinate{Lat: 43.252, Lon: -126.453}
)

func newTestClient(serverURL string) *googlemaps.Client {
	return googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    serverURL,
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})
}

func TestRoute_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/directions/json", r.URL.Path)
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.NotEmpty(t, r.URL.Query().Get("origin"))
		assert.NotEmpty(t, r.URL.Query().Get("destination"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"summary": "US-101 N",
				"legs": [{
					"distance": {"value": 280000, "text": "280 km"},
					"duration": {"value": 14400, "text": "4 hours"},
					"steps": [{"polyline": {"points": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"}}]
				}]
			}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	route, err := client.Route(context.Background(), origin, destination)
	require.NoError(t, err)

	assert.Equal(t, 280.0, route.DistanceKm)
	assert.Equal(t, 4*time.Hour, route.Duration)
	assert.False(t, route.Degraded)
	assert.Equal(t, googlemaps.ProviderName, route.Provider)

	require.Len(t, route.Path, 3)
	assert.InDelta(t, 38.5, route.Path[0].Lat, 1e-9)
	assert.InDelta(t, -120.2, route.Path[0].Lon, 1e-9)
	assert.InDelta(t, 43.252, route.Path[2].Lat, 1e-9)
	assert.InDelta(t, -126.453, route.Path[2].Lon, 1e-9)
}

func TestRoute_SumsMultipleLegs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"legs": [
					{"distance": {"value": 100000}, "duration": {"value": 3600}, "steps": []},
					{"distance": {"value": 50000}, "duration": {"value": 1800}, "steps": []}
				]
			}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	route, err := client.Route(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.Equal(t, 150.0, route.DistanceKm)
	assert.Equal(t, 90*time.Minute, route.Duration)
}

func TestRoute_ZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Route(context.Background(), origin, destination)
	require.Error(t, err)
	assert.ErrorIs(t, err, directions.ErrNoRouteFound)

	var dirErr *directions.Error
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "ZERO_RESULTS", dirErr.Code)
	assert.False(t, dirErr.IsRetryable())
}

func TestRoute_OverQueryLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "error_message": "quota exceeded", "routes": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Route(context.Background(), origin, destination)
	require.Error(t, err)
	assert.ErrorIs(t, err, directions.ErrRateLimitExceeded)

	var dirErr *directions.Error
	require.ErrorAs(t, err, &dirErr)
	assert.True(t, dirErr.IsRetryable())
	assert.Contains(t, dirErr.Message, "quota exceeded")
}

func TestRoute_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Route(context.Background(), origin, destination)
	require.Error(t, err)
	assert.ErrorIs(t, err, directions.ErrProviderUnavailable)
}
