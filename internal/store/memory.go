package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-trading-insights/internal/weather"
)

var (
	// ErrNotFound is returned when no favorite has the requested id.
	ErrNotFound = errors.New("favorite not found")
	// ErrConflict is returned when a favorite already exists at the coordinates.
	ErrConflict = errors.New("location already in favorites")
)

// MemoryStore is a concurrency-safe in-memory favorites store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: coordinate key, value: favorite
	data   map[string]weather.Favorite
	nextID int64
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]weather.Favorite),
		now:  time.Now,
	}
}

// List returns every favorite, newest first.
func (s *MemoryStore) List(_ context.Context) ([]weather.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	favs := make([]weather.Favorite, 0, len(s.data))
	for _, f := range s.data {
		favs = append(favs, f)
	}
	sortNewestFirst(favs)
	return favs, nil
}

// Add stores a new favorite. Coordinates must be unique.
func (s *MemoryStore) Add(_ context.Context, in weather.FavoriteInput) (weather.Favorite, error) {
	key := weather.CoordinateKey(in.Latitude, in.Longitude)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return weather.Favorite{}, ErrConflict
	}

	s.nextID++
	fav := weather.Favorite{
		ID:        s.nextID,
		Name:      in.Name,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Country:   optionalString(in.Country),
		CreatedAt: s.now().UTC(),
	}
	s.data[key] = fav
	return fav, nil
}

// Remove deletes the favorite with id.
func (s *MemoryStore) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, f := range s.data {
		if f.ID == id {
			delete(s.data, key)
			return nil
		}
	}
	return ErrNotFound
}

func sortNewestFirst(favs []weather.Favorite) {
	sort.Slice(favs, func(i, j int) bool {
		if !favs[i].CreatedAt.Equal(favs[j].CreatedAt) {
			return favs[i].CreatedAt.After(favs[j].CreatedAt)
		}
		return favs[i].ID > favs[j].ID
	})
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
