package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/beacon/internal/models"
	"golang.org/x/time/rate"
)

// GeoapifyBaseURL -- Geoapify API base URL.
const GeoapifyBaseURL = "https://api.geoapify.com"

// Common errors for the Geoapify provider.
var (
	ErrGeoapifyMissingKey   = errors.New("geoapify API key is not set")
	ErrGeoapifyUnauthorized = errors.New("geoapify API unauthorized (invalid API key)")
)

// Geoapify implements the Provider interface against the Geoapify Places,
// Geocoding and Routing APIs.
type Geoapify struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Geoapify API
	apiKey  string        // API key with places/geocoding/routing access
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// NewGeoapify creates a new Geoapify provider. rateLimit is requests per
// second against the upstream API.
func NewGeoapify(apiKey string, rateLimit int, log *slog.Logger) (*Geoapify, error) {
	if apiKey == "" {
		return nil, ErrGeoapifyMissingKey
	}

	const timeout = 10
	return &Geoapify{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL: GeoapifyBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}, nil
}

// NewGeoapifyWithClient allows injecting a custom HTTP client and base
// URL. Useful for testing with mocked HTTP clients.
func NewGeoapifyWithClient(
	client HTTPClient,
	baseURL string,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *Geoapify {
	return &Geoapify{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// FetchPlaces runs a nearby search and returns the canonical places that
// survived normalization. Invalid individual features are skipped
// silently; a malformed response document is returned as an error.
func (gp *Geoapify) FetchPlaces(ctx context.Context, req PlacesRequest) ([]models.Place, error) {
	gp.log.DebugContext(ctx, "Fetching places from Geoapify",
		"lat", req.Lat, "lon", req.Lon, "categories", req.Categories, "limit", req.Limit)

	params := url.Values{}
	params.Set("categories", req.Categories)
	// Geoapify wants lon,lat order in filter and bias expressions.
	params.Set("filter", fmt.Sprintf("circle:%v,%v,%d", req.Lon, req.Lat, req.Radius))
	params.Set("bias", fmt.Sprintf("proximity:%v,%v", req.Lon, req.Lat))
	params.Set("limit", strconv.Itoa(req.Limit))

	body, err := gp.get(ctx, "/v2/places", params)
	if err != nil {
		return nil, err
	}

	var doc FeatureCollection
	if err = json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode geoapify places response: %w", err)
	}

	cleaned := make([]models.Place, 0, len(doc.Features))
	for _, feat := range doc.Features {
		place, reason := Normalize(feat)
		if reason != RejectNone {
			gp.log.DebugContext(ctx, "Skipping invalid feature", "reason", string(reason))
			continue
		}
		cleaned = append(cleaned, place)
	}

	gp.log.DebugContext(ctx, "Places fetched", "raw", len(doc.Features), "valid", len(cleaned))
	return cleaned, nil
}

// geocodeFeature is the subset of a geocoding feature the search cares
// about.
type geocodeFeature struct {
	Properties struct {
		Formatted    string `json:"formatted"`
		AddressLine1 string `json:"address_line1"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
}

// Geocode searches for a location name (area, city, landmark) and
// returns lat/lon candidates. An empty text yields an empty result set
// without an upstream call.
func (gp *Geoapify) Geocode(ctx context.Context, text string, limit int) ([]models.GeocodeResult, error) {
	if text == "" {
		return []models.GeocodeResult{}, nil
	}

	gp.log.DebugContext(ctx, "Geocoding using Geoapify", "text", text, "limit", limit)

	params := url.Values{}
	params.Set("text", text)
	params.Set("limit", strconv.Itoa(limit))

	body, err := gp.get(ctx, "/v1/geocode/search", params)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Features []geocodeFeature `json:"features"`
	}
	if err = json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode geoapify geocode response: %w", err)
	}

	const axes = 2
	results := make([]models.GeocodeResult, 0, len(doc.Features))
	for _, feat := range doc.Features {
		if len(feat.Geometry.Coordinates) < axes {
			continue
		}
		label := feat.Properties.Formatted
		if label == "" {
			label = feat.Properties.AddressLine1
		}
		if label == "" {
			label = "Unnamed location"
		}
		results = append(results, models.GeocodeResult{
			Label: label,
			Lon:   feat.Geometry.Coordinates[0],
			Lat:   feat.Geometry.Coordinates[1],
		})
	}

	return results, nil
}

// routeFeature mirrors the routing response. Geometry coordinates are
// kept raw because the type switches between LineString and
// MultiLineString.
type routeFeature struct {
	Properties struct {
		Distance *float64 `json:"distance"`
		Time     *float64 `json:"time"`
	} `json:"properties"`
	Geometry struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
}

// Route returns a road-following polyline with total distance and travel
// time between two points. mode is a Geoapify travel mode (drive, walk,
// bicycle, transit). An empty upstream result yields an empty route, not
// an error.
func (gp *Geoapify) Route(
	ctx context.Context,
	start, end models.Coordinates,
	mode string,
) (*models.Route, error) {
	gp.log.DebugContext(ctx, "Routing using Geoapify", "mode", mode)

	params := url.Values{}
	params.Set("waypoints", fmt.Sprintf("%v,%v|%v,%v",
		start.Latitude, start.Longitude, end.Latitude, end.Longitude))
	params.Set("mode", mode)

	body, err := gp.get(ctx, "/v1/routing", params)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Features []routeFeature `json:"features"`
	}
	if err = json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode geoapify routing response: %w", err)
	}

	route := &models.Route{Points: []models.RoutePoint{}}
	if len(doc.Features) == 0 {
		return route, nil
	}

	feat := doc.Features[0]
	route.DistanceM = feat.Properties.Distance
	route.DurationS = feat.Properties.Time

	switch feat.Geometry.Type {
	case "LineString":
		var coords [][]float64
		if err = json.Unmarshal(feat.Geometry.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("failed to decode route line: %w", err)
		}
		route.Points = appendLine(route.Points, coords)
	case "MultiLineString":
		var segments [][][]float64
		if err = json.Unmarshal(feat.Geometry.Coordinates, &segments); err != nil {
			return nil, fmt.Errorf("failed to decode route segments: %w", err)
		}
		for _, segment := range segments {
			route.Points = appendLine(route.Points, segment)
		}
	}

	return route, nil
}

func appendLine(points []models.RoutePoint, coords [][]float64) []models.RoutePoint {
	const axes = 2
	for _, pair := range coords {
		if len(pair) < axes {
			continue
		}
		points = append(points, models.RoutePoint{Lon: pair[0], Lat: pair[1]})
	}
	return points
}

// get performs one rate-limited GET against the Geoapify API and returns
// the response body for a 200 status.
func (gp *Geoapify) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := gp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(gp.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	params.Set("apiKey", gp.apiKey)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := gp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geoapify request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrGeoapifyUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		gp.log.ErrorContext(ctx, "Geoapify API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("geoapify API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
