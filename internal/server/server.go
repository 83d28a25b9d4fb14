package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/beacon/internal/models"
	"github.com/gin-gonic/gin"
)

// Default values for optional query parameters.
const (
	defaultQuery          = "cafe"
	defaultRouteMode      = "drive"
	defaultRecommendLimit = 10
	defaultGeocodeLimit   = 5
	defaultRecentLimit    = 20
)

// Service is the application surface the HTTP layer exposes. The
// handlers do parameter parsing and status mapping only; everything else
// lives behind this interface.
type Service interface {
	Recommend(ctx context.Context, lat, lon float64, query, category string, limit int) ([]models.RankedPlace, error)
	Search(ctx context.Context, lat, lon float64, query string) ([]models.Place, error)
	Geocode(ctx context.Context, text string, limit int) ([]models.GeocodeResult, error)
	Route(ctx context.Context, start, end models.Coordinates, mode string) (*models.Route, error)
	RecentSearches(ctx context.Context, limit int) ([]models.SearchRecord, error)
}

// Handler holds the dependencies of the HTTP API handlers.
type Handler struct {
	log *slog.Logger
	svc Service
}

// NewHandler creates a new instance of Handler.
func NewHandler(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// Router builds the gin engine with all API routes registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware())

	router.GET("/recommend/top", h.recommendTop)
	router.GET("/places/search", h.searchPlaces)
	router.GET("/geocode/search", h.geocodeSearch)
	router.GET("/route/road", h.routeRoad)
	router.GET("/analytics/recent", h.recentSearches)

	return router
}

// corsMiddleware allows browser clients from any origin. The API is
// read-only, so the permissive policy carries no write risk.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) recommendTop(c *gin.Context) {
	lat, lon, ok := coordinateParams(c, "lat", "lon")
	if !ok {
		return
	}

	query := c.DefaultQuery("query", defaultQuery)
	category := c.Query("category")
	limit := parseInt(c.Query("limit"), defaultRecommendLimit)

	ranked, err := h.svc.Recommend(c.Request.Context(), lat, lon, query, category, limit)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Recommendation failed", "query", query, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "places provider request failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": ranked})
}

func (h *Handler) searchPlaces(c *gin.Context) {
	lat, lon, ok := coordinateParams(c, "lat", "lon")
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameter: query"})
		return
	}

	found, err := h.svc.Search(c.Request.Context(), lat, lon, query)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Place search failed", "query", query, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "places provider request failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": found})
}

func (h *Handler) geocodeSearch(c *gin.Context) {
	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameter: text"})
		return
	}

	limit := parseInt(c.Query("limit"), defaultGeocodeLimit)

	results, err := h.svc.Geocode(c.Request.Context(), text, limit)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Geocoding failed", "text", text, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "geocoding request failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) routeRoad(c *gin.Context) {
	startLat, startLon, ok := coordinateParams(c, "start_lat", "start_lon")
	if !ok {
		return
	}
	endLat, endLon, ok := coordinateParams(c, "end_lat", "end_lon")
	if !ok {
		return
	}

	mode := c.DefaultQuery("mode", defaultRouteMode)

	route, err := h.svc.Route(
		c.Request.Context(),
		models.Coordinates{Latitude: startLat, Longitude: startLon},
		models.Coordinates{Latitude: endLat, Longitude: endLon},
		mode,
	)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Routing failed", "mode", mode, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "routing request failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": route})
}

func (h *Handler) recentSearches(c *gin.Context) {
	limit := parseInt(c.Query("limit"), defaultRecentLimit)

	records, err := h.svc.RecentSearches(c.Request.Context(), limit)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "Recent searches lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search log unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": records})
}

// coordinateParams parses a pair of required float query parameters and
// writes the 400 response itself when either is missing or malformed.
func coordinateParams(c *gin.Context, latKey, lonKey string) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(c.Query(latKey), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing parameter: " + latKey})
		return 0, 0, false
	}

	lon, err := strconv.ParseFloat(c.Query(lonKey), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing parameter: " + lonKey})
		return 0, 0, false
	}

	return lat, lon, true
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
