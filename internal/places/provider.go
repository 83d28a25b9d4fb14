package places

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/beacon/internal/models"
)

// Provider is the external geodata capability the service depends on:
// nearby place search, forward geocoding and road routing. Implementations
// own their own timeouts; callers get upstream failures back untouched
// and decide about retries themselves.
type Provider interface {
	FetchPlaces(ctx context.Context, req PlacesRequest) ([]models.Place, error)
	Geocode(ctx context.Context, text string, limit int) ([]models.GeocodeResult, error)
	Route(ctx context.Context, start, end models.Coordinates, mode string) (*models.Route, error)
}

// PlacesRequest describes one nearby-search call.
type PlacesRequest struct {
	Lat        float64 // Lat is the latitude of the search center.
	Lon        float64 // Lon is the longitude of the search center.
	Categories string  // Categories is the comma-separated provider category filter. Never empty.
	Radius     int     // Radius is the search radius in meters.
	Limit      int     // Limit caps the number of features the provider returns.
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
