package hospital

import (
	"context"
	"math"
)

// Finder looks up hospital candidates around a coordinate
type Finder interface {
	NearbyHospitals(ctx context.Context, origin Coordinate) ([]Candidate, error)
}

type Result struct {
	Found      bool        `json:"found"`
	Nearest    *Candidate  `json:"nearest"`
	DistanceKm *float64    `json:"distance_km"`
	Hospitals  []Candidate `json:"hospitals"`
}

// FindNearest fetches the candidates around 'origin' and selects the nearest one.
// A successful lookup with no candidates returns Found=false, not an error.
// Candidates without finite coordinates are dropped so the result always encodes to JSON.
func FindNearest(ctx context.Context, finder Finder, origin Coordinate) (*Result, error) {
	candidates, err := finder.NearbyHospitals(ctx, origin)
	if err != nil {
		return nil, err
	}

	candidates = withFiniteCoordinates(candidates)

	result := &Result{Hospitals: candidates}

	selection, ok := Nearest(origin, candidates)
	if !ok {
		return result, nil
	}

	result.Found = true
	result.Nearest = &selection.Candidate
	result.DistanceKm = &selection.DistanceKm

	return result, nil
}

func withFiniteCoordinates(candidates []Candidate) []Candidate {
	finite := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if isFinite(candidate.Latitude) && isFinite(candidate.Longitude) {
			finite = append(finite, candidate)
		}
	}
	return finite
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
