package googleplaces_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargeroute/chargeroute/internal/geo"
	"github.com/chargeroute/chargeroute/internal/stations"
	"github.com/chargeroute/chargeroute/internal/stations/googleplaces"
)

var center = geo.Coordinate{Lat: 27.5, Lon: 76.6}

func newTestClient(serverURL string) *googleplaces.Client {
	return googleplaces.NewClient(googleplaces.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    serverURL,
		HTTPClient: http.DefaultClient,
		Logger:     zerolog.Nop(),
	})
}

func TestNearby_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "charging_station", r.URL.Query().Get("type"))
		assert.Equal(t, "50000", r.URL.Query().Get("radius"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "pl-1",
					"name": "Highway Charge Hub",
					"vicinity": "NH48, Behror",
					"geometry": {"location": {"lat": 27.888, "lng": 76.282}}
				},
				{
					"place_id": "pl-2",
					"name": "City EV Point",
					"vicinity": "Shahjahanpur",
					"geometry": {"location": {"lat": 27.997, "lng": 76.394}}
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	found, err := client.Nearby(context.Background(), center, 50)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "pl-1", found[0].ID)
	assert.Equal(t, "Highway Charge Hub", found[0].Name)
	assert.Equal(t, "NH48, Behror", found[0].Vicinity)
	assert.InDelta(t, 27.888, found[0].Location.Lat, 1e-9)
	assert.InDelta(t, 76.282, found[0].Location.Lon, 1e-9)

	// The API carries no charger metadata.
	assert.Zero(t, found[0].ChargingSpeedKW)
	assert.False(t, found[0].MetadataSynthetic)
}

func TestNearby_ZeroResultsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	found, err := client.Nearby(context.Background(), center, 50)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestNearby_OverQueryLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "error_message": "quota exceeded", "results": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Nearby(context.Background(), center, 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, stations.ErrRateLimitExceeded)

	var stErr *stations.Error
	require.ErrorAs(t, err, &stErr)
	assert.True(t, stErr.IsRetryable())
	assert.Contains(t, stErr.Message, "quota exceeded")
}

func TestNearby_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Nearby(context.Background(), center, 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, stations.ErrProviderUnavailable)
}
