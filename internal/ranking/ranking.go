// Package ranking scores canonical places against a reference point and
// orders them by a composite desirability score. Everything here is a
// pure function: same inputs, same output, no network or cache access.
package ranking

import (
	"math"
	"sort"

	"github.com/UnknownOlympus/beacon/internal/models"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Score weights. Rating dominates as the primary quality signal; the
// popularity term is capped so extreme outliers cannot dwarf rating; the
// proximity bonus decays linearly to zero at 10 km. The weights are part
// of the scoring contract and must not drift between releases.
const (
	ratingWeight     = 0.6
	popularityWeight = 0.2
	proximityWeight  = 0.2

	popularityCap = 1000.0
	proximityKm   = 10.0
)

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(from, to models.Coordinates) float64 {
	phi1 := radians(from.Latitude)
	phi2 := radians(to.Latitude)
	dPhi := radians(to.Latitude - from.Latitude)
	dLambda := radians(to.Longitude - from.Longitude)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Score computes the composite score for the given quality signals.
// For rating in [0,1], popularity >= 0 and distanceKm >= 0 the result is
// always in [0,1].
func Score(rating, popularity, distanceKm float64) float64 {
	score := ratingWeight * rating
	score += popularityWeight * math.Min(popularity/popularityCap, 1.0)
	score += proximityWeight * math.Max(0.0, 1.0-distanceKm/proximityKm)

	return score
}

// Rank scores the given places against the center point and returns them
// ordered by score descending. The sort is stable: places with equal
// scores keep their input order, so repeated runs over identical inputs
// produce identical output.
//
// Distance prefers the provider-reported value when the record carries
// one; otherwise it is computed with the haversine formula. Normalization
// already dropped records without coordinates, so no re-validation
// happens here.
func Rank(places []models.Place, center models.Coordinates) []models.RankedPlace {
	ranked := make([]models.RankedPlace, 0, len(places))

	for _, place := range places {
		var distanceKm float64
		if place.DistanceM != nil {
			distanceKm = *place.DistanceM / 1000.0
		} else {
			distanceKm = HaversineKm(center, models.Coordinates{Latitude: place.Lat, Longitude: place.Lon})
		}

		ranked = append(ranked, models.RankedPlace{
			Place:      place,
			DistanceKm: round(distanceKm, 2),
			Score:      round(Score(place.Rating, place.Popularity, distanceKm), 4),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func round(val float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(val*factor) / factor
}
