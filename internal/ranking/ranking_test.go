package ranking_test

import (
	"testing"

	"github.com/UnknownOlympus/beacon/internal/models"
	"github.com/UnknownOlympus/beacon/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestHaversineKm(t *testing.T) {
	t.Parallel()

	t.Run("zero distance for identical points", func(t *testing.T) {
		t.Parallel()
		point := models.Coordinates{Latitude: 12.9716, Longitude: 77.5946}
		assert.InDelta(t, 0.0, ranking.HaversineKm(point, point), 1e-9)
	})

	t.Run("known distance Kyiv to Lviv", func(t *testing.T) {
		t.Parallel()
		kyiv := models.Coordinates{Latitude: 50.4501, Longitude: 30.5234}
		lviv := models.Coordinates{Latitude: 49.8397, Longitude: 24.0297}
		// Great-circle distance is roughly 468 km.
		assert.InDelta(t, 468.0, ranking.HaversineKm(kyiv, lviv), 5.0)
	})
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rating     float64
		popularity float64
		distanceKm float64
		want       float64
	}{
		{
			name:       "documented scenario with capped popularity",
			rating:     0.8,
			popularity: 1200,
			distanceKm: 0.5,
			// 0.6*0.8 + 0.2*1.0 + 0.2*(1 - 0.05) = 0.87
			want: 0.87,
		},
		{
			name: "all signals absent",
			want: 0.2, // proximity bonus at zero distance only
		},
		{
			name:       "proximity clamps to zero beyond 10 km",
			rating:     1.0,
			popularity: 500,
			distanceKm: 42.0,
			want:       0.6 + 0.2*0.5,
		},
		{
			name:       "perfect signals",
			rating:     1.0,
			popularity: 1000,
			distanceKm: 0.0,
			want:       1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ranking.Score(tt.rating, tt.popularity, tt.distanceKm)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestRank(t *testing.T) {
	t.Parallel()
	center := models.Coordinates{Latitude: 12.9716, Longitude: 77.5946}

	t.Run("provider distance is preferred over haversine", func(t *testing.T) {
		t.Parallel()
		places := []models.Place{{
			Name:       "Third Wave",
			Lat:        12.97,
			Lon:        77.59,
			DistanceM:  floatPtr(500),
			Rating:     0.8,
			Popularity: 1200,
		}}

		ranked := ranking.Rank(places, center)

		require.Len(t, ranked, 1)
		assert.InDelta(t, 0.5, ranked[0].DistanceKm, 1e-9)
		assert.InDelta(t, 0.87, ranked[0].Score, 1e-9)
	})

	t.Run("haversine fills in missing provider distance", func(t *testing.T) {
		t.Parallel()
		places := []models.Place{{Name: "At the center", Lat: center.Latitude, Lon: center.Longitude}}

		ranked := ranking.Rank(places, center)

		require.Len(t, ranked, 1)
		assert.InDelta(t, 0.0, ranked[0].DistanceKm, 1e-9)
		assert.InDelta(t, 0.2, ranked[0].Score, 1e-9)
	})

	t.Run("sorted descending with input order preserved on ties", func(t *testing.T) {
		t.Parallel()
		places := []models.Place{
			{Name: "far", Lat: 13.2, Lon: 77.9, DistanceM: floatPtr(20000), Rating: 0.4},
			{Name: "tie-a", Lat: 12.97, Lon: 77.59, DistanceM: floatPtr(1000), Rating: 0.5},
			{Name: "tie-b", Lat: 12.97, Lon: 77.6, DistanceM: floatPtr(1000), Rating: 0.5},
			{Name: "best", Lat: 12.97, Lon: 77.59, DistanceM: floatPtr(200), Rating: 0.9, Popularity: 2000},
		}

		ranked := ranking.Rank(places, center)

		require.Len(t, ranked, len(places))
		assert.Equal(t, "best", ranked[0].Name)
		assert.Equal(t, "tie-a", ranked[1].Name)
		assert.Equal(t, "tie-b", ranked[2].Name)
		assert.Equal(t, "far", ranked[3].Name)
		for i := 1; i < len(ranked); i++ {
			assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
		}
	})

	t.Run("output length matches input length", func(t *testing.T) {
		t.Parallel()
		places := []models.Place{
			{Name: "a", Lat: 12.9, Lon: 77.5},
			{Name: "b", Lat: 12.8, Lon: 77.4},
		}

		assert.Len(t, ranking.Rank(places, center), len(places))
		assert.Empty(t, ranking.Rank(nil, center))
	})

	t.Run("same input always yields same output", func(t *testing.T) {
		t.Parallel()
		places := []models.Place{
			{Name: "a", Lat: 12.9, Lon: 77.5, Rating: 0.3},
			{Name: "b", Lat: 12.8, Lon: 77.4, Rating: 0.3},
		}

		first := ranking.Rank(places, center)
		second := ranking.Rank(places, center)
		assert.Equal(t, first, second)
	})
}
