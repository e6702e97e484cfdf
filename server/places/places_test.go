package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Daskott/instantdoc/server/hospital"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), "test-key", option.WithEndpoint(srv.URL+"/"))
	assert.Nil(t, err)

	return client
}

func TestNearbyHospitals(t *testing.T) {
	var requestPath string
	var requestBody map[string]interface{}

	client := newTestClient(t, func(rw http.ResponseWriter, r *http.Request) {
		requestPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &requestBody)

		rw.Header().Set("Content-Type", "application/json")
		io.WriteString(rw, `{"places":[
			{"displayName":{"text":"Square Hospital"},"location":{"latitude":23.7526,"longitude":90.3817},"shortFormattedAddress":"Panthapath, Dhaka"},
			{"displayName":{"text":"No Location"}},
			{"displayName":{"text":"Dhaka Medical"},"location":{"latitude":23.7257,"longitude":90.3976},"formattedAddress":"Bakshibazar, Dhaka 1000"}
		]}`)
	})

	candidates, err := client.NearbyHospitals(context.Background(), hospital.Coordinate{Latitude: 0, Longitude: 90.4})
	assert.Nil(t, err)
	assert.Equal(t, "/v1/places:searchNearby", requestPath)

	assert.Equal(t, []interface{}{"hospital"}, requestBody["includedTypes"])
	circle := requestBody["locationRestriction"].(map[string]interface{})["circle"].(map[string]interface{})
	assert.Equal(t, 5000.0, circle["radius"])
	center := circle["center"].(map[string]interface{})
	assert.Equal(t, 0.0, center["latitude"], "a zero latitude should still be sent")

	assert.Equal(t, []hospital.Candidate{
		{Name: "Square Hospital", Vicinity: "Panthapath, Dhaka", Coordinate: hospital.Coordinate{Latitude: 23.7526, Longitude: 90.3817}},
		{Name: "Dhaka Medical", Vicinity: "Bakshibazar, Dhaka 1000", Coordinate: hospital.Coordinate{Latitude: 23.7257, Longitude: 90.3976}},
	}, candidates)
}

func TestNearbyHospitalsEmpty(t *testing.T) {
	client := newTestClient(t, func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		io.WriteString(rw, `{}`)
	})

	candidates, err := client.NearbyHospitals(context.Background(), hospital.Coordinate{Latitude: 1, Longitude: 1})
	assert.Nil(t, err)
	assert.Empty(t, candidates)
}

func TestNearbyHospitalsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusForbidden)
		io.WriteString(rw, `{"error":{"code":403,"message":"denied"}}`)
	})

	_, err := client.NearbyHospitals(context.Background(), hospital.Coordinate{Latitude: 1, Longitude: 1})
	assert.ErrorIs(t, err, ErrUpstream)
}
