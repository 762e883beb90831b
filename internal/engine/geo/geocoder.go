package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/paulmach/orb"
)

// Place is a geocoded search region.
type Place struct {
	DisplayName string
	Center      orb.Point // [lng, lat]
	Bound       orb.Bound
}

// Contains reports whether a coordinate falls inside the region's bounding
// box.
func (p *Place) Contains(lng, lat float64) bool {
	return p.Bound.Contains(orb.Point{lng, lat})
}

type nominatimResult struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"` // [minLat, maxLat, minLng, maxLng]
	DisplayName string   `json:"display_name"`
}

// Locate resolves a free-text location ("Liège", "Namur, Belgique") to its
// bounding box and center via the OSM Nominatim API.
func Locate(ctx context.Context, location string) (*Place, error) {
	u := "https://nominatim.openstreetmap.org/search?" + url.Values{
		"q":      {location},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode()

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	client.HTTPClient.Timeout = 10 * time.Second

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "leadtap/0.1 (lead prospection scanner)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding geocoding response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("location %q not found", location)
	}

	r := results[0]
	if len(r.BoundingBox) < 4 {
		return nil, fmt.Errorf("invalid bounding box from geocoder")
	}

	minLat, _ := strconv.ParseFloat(r.BoundingBox[0], 64)
	maxLat, _ := strconv.ParseFloat(r.BoundingBox[1], 64)
	minLng, _ := strconv.ParseFloat(r.BoundingBox[2], 64)
	maxLng, _ := strconv.ParseFloat(r.BoundingBox[3], 64)
	lat, _ := strconv.ParseFloat(r.Lat, 64)
	lng, _ := strconv.ParseFloat(r.Lon, 64)

	bound := orb.Bound{
		Min: orb.Point{minLng, minLat},
		Max: orb.Point{maxLng, maxLat},
	}
	center := orb.Point{lng, lat}
	if lat == 0 && lng == 0 {
		center = bound.Center()
	}

	return &Place{
		DisplayName: r.DisplayName,
		Center:      center,
		Bound:       bound,
	}, nil
}
