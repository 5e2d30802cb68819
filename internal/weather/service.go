package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoProvider is returned when the service has no upstream configured.
var ErrNoProvider = errors.New("no weather provider configured")

// Service orchestrates upstream providers, the bundle cache and the favorites store.
type Service struct {
	provider  Provider
	locations LocationProvider
	favorites FavoriteStore
	cache     BundleCache
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewService creates a new Service. cache may be nil.
func NewService(provider Provider, locations LocationProvider, favorites FavoriteStore, cache BundleCache, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		provider:  provider,
		locations: locations,
		favorites: favorites,
		cache:     cache,
		log:       log.WithField("component", "weather-service"),
		now:       time.Now,
	}
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Search resolves a free-text query to candidate locations.
func (s *Service) Search(ctx context.Context, query string) ([]Location, error) {
	if s.locations == nil {
		return nil, ErrNoProvider
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	locs, err := s.locations.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", s.locations.Name(), err)
	}
	return locs, nil
}

// Forecast returns the short-range forecast document for the coordinates.
func (s *Service) Forecast(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	return s.provider.Forecast(ctx, lat, lon)
}

// Extended returns the forecast/historical/climate bundle, consulting the cache first.
func (s *Service) Extended(ctx context.Context, lat, lon float64) (RawWeatherBundle, error) {
	if s.cache != nil {
		if b, ok := s.cache.Get(ctx, lat, lon); ok {
			return b, nil
		}
	}
	return s.fetchExtended(ctx, lat, lon)
}

func (s *Service) fetchExtended(ctx context.Context, lat, lon float64) (RawWeatherBundle, error) {
	if s.provider == nil {
		return RawWeatherBundle{}, ErrNoProvider
	}
	bundle, err := s.provider.Extended(ctx, lat, lon, s.now())
	if err != nil {
		return RawWeatherBundle{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, lat, lon, bundle)
	}
	return bundle, nil
}

// ListFavorites returns all favorites, newest first.
func (s *Service) ListFavorites(ctx context.Context) ([]Favorite, error) {
	return s.favorites.List(ctx)
}

// AddFavorite persists a new favorite.
func (s *Service) AddFavorite(ctx context.Context, in FavoriteInput) (Favorite, error) {
	fav, err := s.favorites.Add(ctx, in)
	if err != nil {
		return Favorite{}, err
	}
	s.log.WithField("location", fav.Name).Info("favorite added")
	return fav, nil
}

// RemoveFavorite deletes a favorite by id.
func (s *Service) RemoveFavorite(ctx context.Context, id int64) error {
	return s.favorites.Remove(ctx, id)
}

// RefreshFavorites re-fetches the extended bundle for every favorite concurrently
// and stores it in the cache. Failures are logged; the number of refreshed
// favorites is returned.
func (s *Service) RefreshFavorites(ctx context.Context) (int, error) {
	favs, err := s.favorites.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list favorites: %w", err)
	}
	if len(favs) == 0 {
		return 0, nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		refreshed int
	)

	for _, f := range favs {
		f := f
		wg.Add(1)
		go func() {
			defer wg.Done()

			if _, err := s.fetchExtended(ctx, f.Latitude, f.Longitude); err != nil {
				s.log.WithError(err).WithField("location", f.Name).Warn("refresh failed")
				return
			}

			mu.Lock()
			refreshed++
			mu.Unlock()
		}()
	}

	wg.Wait()
	return refreshed, nil
}
