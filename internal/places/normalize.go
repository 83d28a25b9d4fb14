package places

import (
	"encoding/json"
	"strings"

	"github.com/UnknownOlympus/beacon/internal/models"
)

// FeatureCollection is the GeoJSON document the Geoapify Places API
// returns for a nearby search.
type FeatureCollection struct {
	Features []Feature `json:"features"`
}

// Feature is one raw provider-supplied place record. It is transient:
// consumed by Normalize and never persisted as-is.
type Feature struct {
	Properties FeatureProperties `json:"properties"`
	Geometry   FeatureGeometry   `json:"geometry"`
}

// FeatureGeometry holds the point coordinates as [lon, lat]. Either axis
// can be null in provider output, so both are pointers.
type FeatureGeometry struct {
	Coordinates []*float64 `json:"coordinates"`
}

// FeatureProperties is the subset of Geoapify feature properties the
// normalizer reads. Everything else the provider sends is ignored.
type FeatureProperties struct {
	Name         string            `json:"name"`
	AddressLine1 string            `json:"address_line1"`
	Formatted    string            `json:"formatted"`
	Categories   []string          `json:"categories"`
	Distance     *float64          `json:"distance"`
	Website      string            `json:"website"`
	Phone        string            `json:"phone"`
	Rank         FeatureRank       `json:"rank"`
	Datasource   FeatureDatasource `json:"datasource"`
	// OpeningHours is kept raw: Geoapify sends either a free-form string
	// or a structured object, and only the latter carries open_now.
	OpeningHours json.RawMessage `json:"opening_hours"`
}

// FeatureRank is the nested rank metadata carrying the provider quality
// signals.
type FeatureRank struct {
	Confidence *float64 `json:"confidence"`
	Popularity *float64 `json:"popularity"`
}

// FeatureDatasource exposes the datasource-specific raw fields used by
// the website/phone fallback chains.
type FeatureDatasource struct {
	Raw map[string]any `json:"raw"`
}

// RejectReason explains why a raw feature did not become a canonical
// place. Rejections are silent filters, not errors, but the reason stays
// inspectable for logging and tests.
type RejectReason string

const (
	// RejectNone marks a valid feature.
	RejectNone RejectReason = ""
	// RejectMissingCoordinates marks a feature with a null latitude or longitude.
	RejectMissingCoordinates RejectReason = "missing_coordinates"
	// RejectNoLabel marks a feature with no displayable label at all.
	RejectNoLabel RejectReason = "no_label"
	// RejectUnnamed marks provider junk such as "Unnamed road".
	RejectUnnamed RejectReason = "unnamed"
)

// Normalize converts one raw feature into a canonical place. The second
// return value is RejectNone for a valid record; any other reason means
// the feature must be excluded from the output set.
func Normalize(feat Feature) (models.Place, RejectReason) {
	lat, lon, ok := pointCoordinates(feat.Geometry)
	if !ok {
		return models.Place{}, RejectMissingCoordinates
	}

	label, reason := buildLabel(feat.Properties)
	if reason != RejectNone {
		return models.Place{}, reason
	}

	props := feat.Properties
	place := models.Place{
		Name:       label,
		Lat:        lat,
		Lon:        lon,
		Address:    optional(props.Formatted),
		Categories: props.Categories,
		DistanceM:  props.Distance,
		Rating:     valueOrZero(props.Rank.Confidence),
		Popularity: valueOrZero(props.Rank.Popularity),
		Website:    firstNonEmpty(props.Website, rawString(props.Datasource.Raw, "website")),
		Phone: firstNonEmpty(
			props.Phone,
			rawString(props.Datasource.Raw, "contact:phone"),
			rawString(props.Datasource.Raw, "phone"),
		),
		OpenNow: openNow(props.OpeningHours),
	}

	return place, RejectNone
}

// pointCoordinates extracts [lon, lat] from the geometry. A feature with
// either axis absent is invalid.
func pointCoordinates(geom FeatureGeometry) (lat, lon float64, ok bool) {
	const axes = 2
	if len(geom.Coordinates) < axes {
		return 0, 0, false
	}
	lonPtr, latPtr := geom.Coordinates[0], geom.Coordinates[1]
	if lonPtr == nil || latPtr == nil {
		return 0, 0, false
	}
	return *latPtr, *lonPtr, true
}

// buildLabel resolves the display name with the priority explicit name,
// then first address line, then formatted address. Labels containing
// "unnamed" (any case, any source field) are provider noise and rejected.
func buildLabel(props FeatureProperties) (string, RejectReason) {
	label := props.Name
	if label == "" {
		label = props.AddressLine1
	}
	if label == "" {
		label = props.Formatted
	}
	if label == "" {
		return "", RejectNoLabel
	}
	if strings.Contains(strings.ToLower(label), "unnamed") {
		return "", RejectUnnamed
	}
	return label, RejectNone
}

// openNow extracts the open/closed flag only when opening-hours is a
// structured object; a string or absent field yields nil, never an error.
func openNow(raw json.RawMessage) *bool {
	if len(raw) == 0 {
		return nil
	}
	var structured struct {
		OpenNow *bool `json:"open_now"`
	}
	if err := json.Unmarshal(raw, &structured); err != nil {
		return nil
	}
	return structured.OpenNow
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0.0
	}
	return *v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return &v
		}
	}
	return nil
}

func rawString(raw map[string]any, key string) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}
