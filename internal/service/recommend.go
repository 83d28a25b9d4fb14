package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/beacon/internal/cache"
	"github.com/UnknownOlympus/beacon/internal/category"
	"github.com/UnknownOlympus/beacon/internal/metrics"
	"github.com/UnknownOlympus/beacon/internal/models"
	"github.com/UnknownOlympus/beacon/internal/places"
	"github.com/UnknownOlympus/beacon/internal/ranking"
	"github.com/UnknownOlympus/beacon/internal/repository"
)

// defaultSearchLimit caps how many features an unranked search asks the
// provider for.
const defaultSearchLimit = 40

// providerName labels provider request metrics.
const providerName = "geoapify"

// Enricher fills the second-source slots of ranked places. Nil disables
// enrichment.
type Enricher interface {
	Enrich(ctx context.Context, ranked []models.RankedPlace) []models.RankedPlace
}

// RecommendationService wires the category resolver, the places
// provider, the response cache, the ranking engine and the search log
// into the two public operations: Recommend and Search. It also passes
// geocoding and routing through to the provider for the thin API layer.
type RecommendationService struct {
	log      *slog.Logger         // Logger for logging service activities
	repo     repository.Interface // Interface for the search log repository
	provider places.Provider      // External places provider
	resolver *category.Resolver   // Category resolver for query intent
	enricher Enricher             // Optional second-source enricher, may be nil
	store    *cache.Store         // Persistent response cache
	metrics  *metrics.Metrics     // Metrics for tracking service performance
	radius   int                  // Nearby-search radius in meters
	cacheTTL time.Duration        // Freshness window for cached provider responses
}

// NewRecommendationService creates a new instance of RecommendationService.
func NewRecommendationService(
	log *slog.Logger,
	repo repository.Interface,
	provider places.Provider,
	resolver *category.Resolver,
	enricher Enricher,
	store *cache.Store,
	metrics *metrics.Metrics,
	radius int,
	cacheTTL time.Duration,
) *RecommendationService {
	return &RecommendationService{
		log:      log,
		repo:     repo,
		provider: provider,
		resolver: resolver,
		enricher: enricher,
		store:    store,
		metrics:  metrics,
		radius:   radius,
		cacheTTL: cacheTTL,
	}
}

// Recommend returns the top places near the given point for the query,
// ranked by the composite score. It fetches twice the requested limit of
// candidates so ranking has something to choose from, then cuts the list
// down after sorting.
func (rs *RecommendationService) Recommend(
	ctx context.Context,
	lat, lon float64,
	query, categoryLabel string,
	limit int,
) ([]models.RankedPlace, error) {
	codes := rs.resolver.Resolve(query, categoryLabel)
	rs.log.DebugContext(ctx, "Resolved category codes", "query", query, "category", categoryLabel, "codes", codes)

	candidates, err := rs.fetchPlaces(ctx, lat, lon, codes, limit*2)
	if err != nil {
		rs.metrics.SearchesProcessed.WithLabelValues("recommend", "failure").Inc()
		return nil, err
	}

	ranked := ranking.Rank(candidates, models.Coordinates{Latitude: lat, Longitude: lon})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if rs.enricher != nil {
		ranked = rs.enricher.Enrich(ctx, ranked)
	}

	rs.logSearch(ctx, query, lat, lon)
	rs.metrics.SearchesProcessed.WithLabelValues("recommend", "success").Inc()

	return ranked, nil
}

// Search returns unranked canonical places near the given point.
func (rs *RecommendationService) Search(
	ctx context.Context,
	lat, lon float64,
	query string,
) ([]models.Place, error) {
	codes := rs.resolver.Resolve(query, "")

	found, err := rs.fetchPlaces(ctx, lat, lon, codes, defaultSearchLimit)
	if err != nil {
		rs.metrics.SearchesProcessed.WithLabelValues("search", "failure").Inc()
		return nil, err
	}

	rs.logSearch(ctx, query, lat, lon)
	rs.metrics.SearchesProcessed.WithLabelValues("search", "success").Inc()

	return found, nil
}

// Geocode passes a free-text location search through to the provider.
func (rs *RecommendationService) Geocode(
	ctx context.Context,
	text string,
	limit int,
) ([]models.GeocodeResult, error) {
	return rs.provider.Geocode(ctx, text, limit)
}

// Route passes a road-routing request through to the provider.
func (rs *RecommendationService) Route(
	ctx context.Context,
	start, end models.Coordinates,
	mode string,
) (*models.Route, error) {
	return rs.provider.Route(ctx, start, end, mode)
}

// RecentSearches returns the newest entries of the search log.
func (rs *RecommendationService) RecentSearches(
	ctx context.Context,
	limit int,
) ([]models.SearchRecord, error) {
	return rs.repo.RecentSearches(ctx, limit)
}

// fetchPlaces is the memoized provider call. Identical query shapes
// within the freshness window are served from the cache without touching
// the upstream API; upstream failures propagate untouched and are never
// retried here.
func (rs *RecommendationService) fetchPlaces(
	ctx context.Context,
	lat, lon float64,
	codes string,
	limit int,
) ([]models.Place, error) {
	key := cache.Key{
		Op:   "fetch_places",
		Args: []any{lat, lon},
		KW: map[string]any{
			"categories": codes,
			"radius":     rs.radius,
			"limit":      limit,
		},
	}

	startTime := time.Now()
	found, hit, err := cache.Do(ctx, rs.store, key, rs.cacheTTL,
		func(ctx context.Context) ([]models.Place, error) {
			return rs.provider.FetchPlaces(ctx, places.PlacesRequest{
				Lat:        lat,
				Lon:        lon,
				Categories: codes,
				Radius:     rs.radius,
				Limit:      limit,
			})
		})

	if err != nil {
		rs.metrics.CacheLookups.WithLabelValues("miss").Inc()
		rs.metrics.ProviderErrors.Inc()
		return nil, err
	}

	if hit {
		rs.metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		rs.metrics.CacheLookups.WithLabelValues("miss").Inc()
		rs.metrics.RequestSeconds.WithLabelValues(providerName).Observe(time.Since(startTime).Seconds())
	}

	return found, nil
}

// logSearch records the search best-effort. The log must never fail the
// request it describes.
func (rs *RecommendationService) logSearch(ctx context.Context, query string, lat, lon float64) {
	if err := rs.repo.LogSearch(ctx, query, lat, lon); err != nil {
		rs.log.WarnContext(ctx, "Failed to log search", "query", query, "error", err)
	}
}
