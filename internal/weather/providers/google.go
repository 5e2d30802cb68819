package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-trading-insights/internal/weather"
)

// geocoderMu guards the package-level API key of the geocoder library.
var geocoderMu sync.Mutex

// GoogleGeocoder implements weather.LocationProvider on top of the Google
// Geocoding API. It returns at most one candidate per query.
type GoogleGeocoder struct {
	name   string
	apiKey string

	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		name:    "google",
		apiKey:  apiKey,
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

func (g *GoogleGeocoder) Search(ctx context.Context, query string) ([]weather.Location, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google geocoder api key is not configured")
	}

	type result struct {
		locs []weather.Location
		err  error
	}
	done := make(chan result, 1)

	go func() {
		geocoderMu.Lock()
		defer geocoderMu.Unlock()
		geocoder.ApiKey = g.apiKey

		point, err := g.geocode(geocoder.Address{City: query})
		if err != nil {
			done <- result{err: err}
			return
		}

		loc := weather.Location{
			Name:      query,
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
		}
		// Country is best effort; a failed reverse lookup still yields coordinates.
		if addrs, err := g.reverse(point); err == nil && len(addrs) > 0 {
			loc.Country = addrs[0].Country
			loc.Admin1 = addrs[0].State
			if addrs[0].City != "" {
				loc.Name = addrs[0].City
			}
		}
		done <- result{locs: []weather.Location{loc}}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.locs, r.err
	}
}
