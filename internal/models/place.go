package models

// Place is the canonical representation of a point of interest after
// normalization. Name, Lat and Lon are always set; a provider feature
// missing any of them never becomes a Place. Instances are treated as
// immutable once built: ranking produces a RankedPlace copy instead of
// mutating the record.
type Place struct {
	Name       string   `json:"name"`               // Name is the display label for the place.
	Lat        float64  `json:"lat"`                // Lat is the WGS84 latitude in degrees.
	Lon        float64  `json:"lon"`                // Lon is the WGS84 longitude in degrees.
	Address    *string  `json:"address"`            // Address is the formatted address, when the provider has one.
	Categories []string `json:"categories"`         // Categories are the provider category codes, in provider order.
	DistanceM  *float64 `json:"distance_m"`         // DistanceM is the provider-reported distance from the query point, meters.
	Rating     float64  `json:"rating"`             // Rating is the provider confidence signal in [0, 1], 0 when absent.
	Popularity float64  `json:"user_ratings_total"` // Popularity is the provider popularity signal, >= 0, 0 when absent.
	Website    *string  `json:"website"`            // Website URL, when available.
	Phone      *string  `json:"phone"`              // Phone number, when available.
	OpenNow    *bool    `json:"open_now"`           // OpenNow reports whether the place is currently open, when known.

	// Reserved slots for a second data source. Left nil unless the
	// optional Google enricher is configured.
	GoogleRating  *float64 `json:"google_rating"`
	GoogleReviews *int     `json:"google_reviews_count"`
}

// RankedPlace is a Place enriched with the computed distance from the
// query point and its composite desirability score.
type RankedPlace struct {
	Place

	DistanceKm float64 `json:"distance_km"` // DistanceKm is the distance from the query point, rounded to 2 decimals.
	Score      float64 `json:"score"`       // Score is the composite score in [0, 1], rounded to 4 decimals.
}

// GeocodeResult is a single forward-geocoding candidate for a free-text
// location search.
type GeocodeResult struct {
	Label string  `json:"label"` // Label is a human-readable description of the location.
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// RoutePoint is a single vertex of a road-following route polyline.
type RoutePoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Route is a road-following route between two points.
type Route struct {
	Points    []RoutePoint `json:"points"`     // Points is the route polyline, in travel order.
	DistanceM *float64     `json:"distance_m"` // DistanceM is the total route length in meters.
	DurationS *float64     `json:"duration_s"` // DurationS is the estimated travel time in seconds.
}
