package hospital

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	dhaka := Coordinate{Latitude: 23.8103, Longitude: 90.4125}

	cases := []struct {
		description string
		to          Coordinate
		expectedKm  float64
	}{
		{"same point is zero", dhaka, 0},
		{"one degree of latitude", Coordinate{Latitude: 24.8103, Longitude: 90.4125}, 111.19},
		{"dhaka to chattogram", Coordinate{Latitude: 22.3569, Longitude: 91.7832}, 213.95},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			assert.InDelta(t, c.expectedKm, Distance(dhaka, c.to), 0.01)
		})
	}

	t.Run("one degree of longitude on the equator", func(t *testing.T) {
		assert.InDelta(t, 111.19, Distance(Coordinate{}, Coordinate{Latitude: 0, Longitude: 1}), 0.01)
	})
}

func TestNearest(t *testing.T) {
	origin := Coordinate{Latitude: 0, Longitude: 0}

	t.Run("empty list has no selection", func(t *testing.T) {
		_, ok := Nearest(origin, nil)
		assert.False(t, ok)

		_, ok = Nearest(origin, []Candidate{})
		assert.False(t, ok)
	})

	t.Run("picks the closest candidate", func(t *testing.T) {
		candidates := []Candidate{
			{Name: "Far", Coordinate: Coordinate{Latitude: 0, Longitude: 1}},
			{Name: "Near", Coordinate: Coordinate{Latitude: 0, Longitude: 0.1}},
			{Name: "Middle", Coordinate: Coordinate{Latitude: 0, Longitude: 0.5}},
		}

		selection, ok := Nearest(origin, candidates)
		assert.True(t, ok)
		assert.Equal(t, "Near", selection.Candidate.Name)
		assert.Equal(t, 11.12, selection.DistanceKm)
	})

	t.Run("ties keep the first candidate", func(t *testing.T) {
		candidates := []Candidate{
			{Name: "East", Coordinate: Coordinate{Latitude: 0, Longitude: 0.2}},
			{Name: "West", Coordinate: Coordinate{Latitude: 0, Longitude: -0.2}},
		}

		selection, ok := Nearest(origin, candidates)
		assert.True(t, ok)
		assert.Equal(t, "East", selection.Candidate.Name)
	})

	t.Run("candidates with NaN coordinates are skipped", func(t *testing.T) {
		nan := math.NaN()

		_, ok := Nearest(origin, []Candidate{{Name: "Broken", Coordinate: Coordinate{Latitude: nan, Longitude: nan}}})
		assert.False(t, ok)

		selection, ok := Nearest(origin, []Candidate{
			{Name: "Broken", Coordinate: Coordinate{Latitude: nan, Longitude: 0}},
			{Name: "Near", Coordinate: Coordinate{Latitude: 0, Longitude: 0.1}},
		})
		assert.True(t, ok)
		assert.Equal(t, "Near", selection.Candidate.Name)
		assert.Equal(t, 11.12, selection.DistanceKm)
	})

	t.Run("single candidate at origin", func(t *testing.T) {
		selection, ok := Nearest(origin, []Candidate{{Name: "Here"}})
		assert.True(t, ok)
		assert.Equal(t, "Here", selection.Candidate.Name)
		assert.Equal(t, 0.0, selection.DistanceKm)
	})
}
