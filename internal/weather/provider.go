package weather

import (
	"context"
	"encoding/json"
	"time"
)

// LocationProvider resolves free-text queries to candidate locations.
type LocationProvider interface {
	Name() string
	Search(ctx context.Context, query string) ([]Location, error)
}

// Provider abstracts the upstream weather data source (Open-Meteo).
type Provider interface {
	Name() string
	// Forecast returns the short-range forecast document as received.
	Forecast(ctx context.Context, lat, lon float64) (json.RawMessage, error)
	// Extended returns forecast, past-year archive and climate normals.
	Extended(ctx context.Context, lat, lon float64, now time.Time) (RawWeatherBundle, error)
}

// FavoriteStore is the contract the in-memory and SQLite stores satisfy.
type FavoriteStore interface {
	List(ctx context.Context) ([]Favorite, error)
	Add(ctx context.Context, in FavoriteInput) (Favorite, error)
	Remove(ctx context.Context, id int64) error
}

// BundleCache stores extended bundles keyed by coordinates.
type BundleCache interface {
	Get(ctx context.Context, lat, lon float64) (RawWeatherBundle, bool)
	Set(ctx context.Context, lat, lon float64, bundle RawWeatherBundle)
}
