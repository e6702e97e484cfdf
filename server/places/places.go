package places

import (
	"context"
	"errors"

	"github.com/Daskott/instantdoc/server/hospital"
	pkgErrors "github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	placesapi "google.golang.org/api/places/v1"
)

const (
	HOSPITAL_PLACE_TYPE  = "hospital"
	SEARCH_RADIUS_METERS = 5000.0
	MAX_SEARCH_RESULTS   = 20
)

var ErrUpstream = errors.New("places request failed")

var searchFields = []googleapi.Field{
	"places.displayName",
	"places.location",
	"places.shortFormattedAddress",
	"places.formattedAddress",
}

type Client struct {
	service *placesapi.Service
}

func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	service, err := placesapi.NewService(ctx, opts...)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "places.NewClient")
	}

	return &Client{service: service}, nil
}

// NearbyHospitals returns hospitals within SEARCH_RADIUS_METERS of 'origin'.
// Places without a location are skipped.
func (c *Client) NearbyHospitals(ctx context.Context, origin hospital.Coordinate) ([]hospital.Candidate, error) {
	request := &placesapi.GoogleMapsPlacesV1SearchNearbyRequest{
		IncludedTypes:  []string{HOSPITAL_PLACE_TYPE},
		MaxResultCount: MAX_SEARCH_RESULTS,
		LocationRestriction: &placesapi.GoogleMapsPlacesV1SearchNearbyRequestLocationRestriction{
			Circle: &placesapi.GoogleMapsPlacesV1Circle{
				Center: &placesapi.GoogleTypeLatLng{
					Latitude:  origin.Latitude,
					Longitude: origin.Longitude,
					// 0 is a valid coordinate
					ForceSendFields: []string{"Latitude", "Longitude"},
				},
				Radius: SEARCH_RADIUS_METERS,
			},
		},
	}

	response, err := c.service.Places.SearchNearby(request).Fields(searchFields...).Context(ctx).Do()
	if err != nil {
		return nil, pkgErrors.Wrapf(ErrUpstream, "searchNearby: %v", err)
	}

	candidates := []hospital.Candidate{}
	for _, place := range response.Places {
		if place == nil || place.Location == nil {
			continue
		}

		candidate := hospital.Candidate{
			Vicinity: place.ShortFormattedAddress,
			Coordinate: hospital.Coordinate{
				Latitude:  place.Location.Latitude,
				Longitude: place.Location.Longitude,
			},
		}

		if place.DisplayName != nil {
			candidate.Name = place.DisplayName.Text
		}

		if candidate.Vicinity == "" {
			candidate.Vicinity = place.FormattedAddress
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}
