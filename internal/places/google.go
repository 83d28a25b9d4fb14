package places

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/beacon/internal/models"
	"googlemaps.github.io/maps"
)

// PlacesAPIClient is the slice of the Google Maps client the enricher
// needs. Kept as an interface so tests can stub the upstream call.
type PlacesAPIClient interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// GoogleEnricher fills the reserved second-source slots of ranked places
// (google_rating, google_reviews_count) by looking each place up in the
// Google Places API. Enrichment is strictly best-effort: a lookup failure
// leaves the slots nil and never fails the request.
type GoogleEnricher struct {
	client PlacesAPIClient // client is the Google Places API client
	log    *slog.Logger    // log is the logger for logging operations
}

// matchRadiusMeters is how far from the canonical coordinates a Google
// match may sit. Tight on purpose: the lookup keys on name plus location
// and a wide radius pulls in homonyms.
const matchRadiusMeters = 50

// NewGoogleEnricher initializes a new GoogleEnricher with the given API
// client and logger.
func NewGoogleEnricher(client PlacesAPIClient, log *slog.Logger) *GoogleEnricher {
	return &GoogleEnricher{client: client, log: log}
}

// Enrich returns a copy of the given places with the Google rating and
// review-count slots populated where a match was found. The input slice
// is never mutated.
func (ge *GoogleEnricher) Enrich(ctx context.Context, ranked []models.RankedPlace) []models.RankedPlace {
	enriched := make([]models.RankedPlace, len(ranked))
	copy(enriched, ranked)

	for i := range enriched {
		place := &enriched[i]

		resp, err := ge.client.NearbySearch(ctx, &maps.NearbySearchRequest{
			Location: &maps.LatLng{Lat: place.Lat, Lng: place.Lon},
			Radius:   matchRadiusMeters,
			Keyword:  place.Name,
		})
		if err != nil {
			ge.log.WarnContext(ctx, "Google enrichment lookup failed", "place", place.Name, "error", err)
			continue
		}
		if len(resp.Results) == 0 {
			ge.log.DebugContext(ctx, "No Google match for place", "place", place.Name)
			continue
		}

		match := resp.Results[0]
		rating := float64(match.Rating)
		reviews := match.UserRatingsTotal
		place.GoogleRating = &rating
		place.GoogleReviews = &reviews
	}

	return enriched
}
