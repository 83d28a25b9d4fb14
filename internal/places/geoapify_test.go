package places_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/beacon/internal/models"
	"github.com/UnknownOlympus/beacon/internal/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func newProvider(client places.HTTPClient) *places.Geoapify {
	return places.NewGeoapifyWithClient(
		client,
		"https://geoapify.test",
		"test-key",
		rate.NewLimiter(rate.Inf, 1),
		slog.Default(),
	)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestGeoapify_FetchPlaces(t *testing.T) {
	ctx := context.Background()

	t.Run("successful search with invalid features filtered", func(t *testing.T) {
		responseBody := `{
			"features": [
				{
					"properties": {
						"name": "Third Wave Coffee",
						"formatted": "Third Wave Coffee, Bengaluru",
						"categories": ["catering.cafe"],
						"distance": 500,
						"rank": {"confidence": 0.8, "popularity": 1200}
					},
					"geometry": {"coordinates": [77.5946, 12.9716]}
				},
				{
					"properties": {"name": "Nowhere"},
					"geometry": {"coordinates": [null, null]}
				},
				{
					"properties": {"name": "Unnamed road"},
					"geometry": {"coordinates": [77.6, 12.98]}
				}
			]
		}`

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "/v2/places")
				assert.Equal(t, "catering.cafe", req.URL.Query().Get("categories"))
				assert.Equal(t, "circle:77.5946,12.9716,4000", req.URL.Query().Get("filter"))
				assert.Equal(t, "proximity:77.5946,12.9716", req.URL.Query().Get("bias"))
				assert.Equal(t, "20", req.URL.Query().Get("limit"))
				assert.Equal(t, "test-key", req.URL.Query().Get("apiKey"))

				return jsonResponse(http.StatusOK, responseBody), nil
			},
		}

		provider := newProvider(mockClient)
		got, err := provider.FetchPlaces(ctx, places.PlacesRequest{
			Lat:        12.9716,
			Lon:        77.5946,
			Categories: "catering.cafe",
			Radius:     4000,
			Limit:      20,
		})

		require.NoError(t, err)
		// Three raw features, one missing coordinates, one unnamed junk.
		require.Len(t, got, 1)
		assert.Equal(t, "Third Wave Coffee", got[0].Name)
		assert.InDelta(t, 0.8, got[0].Rating, 1e-9)
	})

	t.Run("unauthorized", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusUnauthorized, `{"error":"unauthorized"}`), nil
			},
		}

		provider := newProvider(mockClient)
		got, err := provider.FetchPlaces(ctx, places.PlacesRequest{Categories: "catering"})

		require.Error(t, err)
		require.Nil(t, got)
		assert.ErrorIs(t, err, places.ErrGeoapifyUnauthorized)
	})

	t.Run("upstream error status propagates", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadGateway, `upstream down`), nil
			},
		}

		provider := newProvider(mockClient)
		_, err := provider.FetchPlaces(ctx, places.PlacesRequest{Categories: "catering"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "geoapify API returned status 502")
	})

	t.Run("malformed document is an error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `not json`), nil
			},
		}

		provider := newProvider(mockClient)
		_, err := provider.FetchPlaces(ctx, places.PlacesRequest{Categories: "catering"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode geoapify places response")
	})
}

func TestGeoapify_Geocode(t *testing.T) {
	ctx := context.Background()

	t.Run("successful geocoding", func(t *testing.T) {
		responseBody := `{
			"features": [
				{
					"properties": {"formatted": "Majestic, Bengaluru, India"},
					"geometry": {"coordinates": [77.5713, 12.9767]}
				},
				{
					"properties": {"address_line1": "Whitefield"},
					"geometry": {"coordinates": [77.75, 12.97]}
				}
			]
		}`

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Contains(t, req.URL.String(), "/v1/geocode/search")
				assert.Equal(t, "Majestic Bangalore", req.URL.Query().Get("text"))
				assert.Equal(t, "5", req.URL.Query().Get("limit"))

				return jsonResponse(http.StatusOK, responseBody), nil
			},
		}

		provider := newProvider(mockClient)
		got, err := provider.Geocode(ctx, "Majestic Bangalore", 5)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Majestic, Bengaluru, India", got[0].Label)
		assert.InDelta(t, 12.9767, got[0].Lat, 1e-9)
		assert.InDelta(t, 77.5713, got[0].Lon, 1e-9)
		assert.Equal(t, "Whitefield", got[1].Label)
	})

	t.Run("empty text short-circuits without an upstream call", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("no request expected for empty text")
				return nil, nil
			},
		}

		provider := newProvider(mockClient)
		got, err := provider.Geocode(ctx, "", 5)

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGeoapify_Route(t *testing.T) {
	ctx := context.Background()
	start := models.Coordinates{Latitude: 12.9716, Longitude: 77.5946}
	end := models.Coordinates{Latitude: 12.9767, Longitude: 77.5713}

	t.Run("line string route", func(t *testing.T) {
		responseBody := `{
			"features": [{
				"properties": {"distance": 3200, "time": 780},
				"geometry": {
					"type": "LineString",
					"coordinates": [[77.5946, 12.9716], [77.58, 12.974], [77.5713, 12.9767]]
				}
			}]
		}`

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Contains(t, req.URL.String(), "/v1/routing")
				assert.Equal(t, "12.9716,77.5946|12.9767,77.5713", req.URL.Query().Get("waypoints"))
				assert.Equal(t, "drive", req.URL.Query().Get("mode"))

				return jsonResponse(http.StatusOK, responseBody), nil
			},
		}

		provider := newProvider(mockClient)
		route, err := provider.Route(ctx, start, end, "drive")

		require.NoError(t, err)
		require.NotNil(t, route)
		require.NotNil(t, route.DistanceM)
		assert.InDelta(t, 3200.0, *route.DistanceM, 1e-9)
		require.NotNil(t, route.DurationS)
		assert.InDelta(t, 780.0, *route.DurationS, 1e-9)
		require.Len(t, route.Points, 3)
		assert.InDelta(t, 12.9716, route.Points[0].Lat, 1e-9)
		assert.InDelta(t, 77.5946, route.Points[0].Lon, 1e-9)
	})

	t.Run("multi line string route", func(t *testing.T) {
		responseBody := `{
			"features": [{
				"properties": {"distance": 100, "time": 60},
				"geometry": {
					"type": "MultiLineString",
					"coordinates": [[[77.59, 12.97]], [[77.58, 12.98], [77.57, 12.99]]]
				}
			}]
		}`

		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, responseBody), nil
			},
		}

		provider := newProvider(mockClient)
		route, err := provider.Route(ctx, start, end, "walk")

		require.NoError(t, err)
		require.Len(t, route.Points, 3)
		assert.InDelta(t, 12.99, route.Points[2].Lat, 1e-9)
	})

	t.Run("no features yields an empty route", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"features": []}`), nil
			},
		}

		provider := newProvider(mockClient)
		route, err := provider.Route(ctx, start, end, "drive")

		require.NoError(t, err)
		require.NotNil(t, route)
		assert.Empty(t, route.Points)
		assert.Nil(t, route.DistanceM)
		assert.Nil(t, route.DurationS)
	})
}

func TestNewGeoapify_RequiresKey(t *testing.T) {
	t.Parallel()

	provider, err := places.NewGeoapify("", 5, slog.Default())

	require.Error(t, err)
	assert.Nil(t, provider)
	assert.ErrorIs(t, err, places.ErrGeoapifyMissingKey)
}
