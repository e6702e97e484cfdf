// Package hospital ranks hospital candidates by great-circle distance.
package hospital

import "math"

const EARTH_RADIUS_KM = 6371.0

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Candidate struct {
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Coordinate
}

type Selection struct {
	Candidate  Candidate `json:"candidate"`
	DistanceKm float64   `json:"distance_km"`
}

// Distance returns the haversine distance in km between 'a' and 'b'
func Distance(a, b Coordinate) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return EARTH_RADIUS_KM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Nearest returns the candidate closest to 'origin' with its distance rounded to 2 decimals.
// On ties the first candidate wins. Candidates with a non-finite distance (e.g. NaN
// coordinates) are skipped. ok is false when no candidate is left.
func Nearest(origin Coordinate, candidates []Candidate) (selection Selection, ok bool) {
	minDistance := math.Inf(1)
	for _, candidate := range candidates {
		distance := Distance(origin, candidate.Coordinate)
		if math.IsNaN(distance) || math.IsInf(distance, 0) {
			continue
		}

		if !ok || distance < minDistance {
			minDistance = distance
			selection.Candidate = candidate
			ok = true
		}
	}

	if !ok {
		return Selection{}, false
	}

	selection.DistanceKm = roundTo2(minDistance)
	return selection, true
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func roundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}
