package weather

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	calls   atomic.Int32
	failFor map[string]bool
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Forecast(context.Context, float64, float64) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (p *stubProvider) Extended(_ context.Context, lat, lon float64, _ time.Time) (RawWeatherBundle, error) {
	p.calls.Add(1)
	if p.failFor[CoordinateKey(lat, lon)] {
		return RawWeatherBundle{}, errors.New("upstream down")
	}
	tz := CoordinateKey(lat, lon)
	return RawWeatherBundle{Forecast: &SeriesDocument{Timezone: tz}}, nil
}

type stubLocations struct{ query string }

func (l *stubLocations) Name() string { return "stub-locations" }

func (l *stubLocations) Search(_ context.Context, q string) ([]Location, error) {
	l.query = q
	return []Location{{Name: q}}, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]RawWeatherBundle
}

func (c *mapCache) Get(_ context.Context, lat, lon float64) (RawWeatherBundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[CoordinateKey(lat, lon)]
	return b, ok
}

func (c *mapCache) Set(_ context.Context, lat, lon float64, b RawWeatherBundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[CoordinateKey(lat, lon)] = b
}

type sliceStore struct {
	favs []Favorite
}

func (s *sliceStore) List(context.Context) ([]Favorite, error) { return s.favs, nil }

func (s *sliceStore) Add(_ context.Context, in FavoriteInput) (Favorite, error) {
	f := Favorite{ID: int64(len(s.favs) + 1), Name: in.Name, Latitude: in.Latitude, Longitude: in.Longitude}
	s.favs = append(s.favs, f)
	return f, nil
}

func (s *sliceStore) Remove(context.Context, int64) error { return nil }

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestServiceExtendedUsesCache(t *testing.T) {
	prov := &stubProvider{}
	cache := &mapCache{data: map[string]RawWeatherBundle{}}
	svc := NewService(prov, nil, &sliceStore{}, cache, quietLogger())
	ctx := context.Background()

	first, err := svc.Extended(ctx, 39.74, -104.99)
	require.NoError(t, err)
	second, err := svc.Extended(ctx, 39.74, -104.99)
	require.NoError(t, err)

	assert.Equal(t, int32(1), prov.calls.Load())
	assert.Equal(t, first.Forecast.Timezone, second.Forecast.Timezone)
}

func TestServiceExtendedWithoutCache(t *testing.T) {
	prov := &stubProvider{}
	svc := NewService(prov, nil, &sliceStore{}, nil, quietLogger())

	for i := 0; i < 2; i++ {
		_, err := svc.Extended(context.Background(), 1, 2)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), prov.calls.Load())
}

func TestServiceWithoutProvider(t *testing.T) {
	svc := NewService(nil, nil, &sliceStore{}, nil, quietLogger())

	_, err := svc.Extended(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrNoProvider)
	_, err = svc.Search(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestServiceSearchTrimsQuery(t *testing.T) {
	locs := &stubLocations{}
	svc := NewService(nil, locs, &sliceStore{}, nil, quietLogger())

	_, err := svc.Search(context.Background(), "  Denver ")
	require.NoError(t, err)
	assert.Equal(t, "Denver", locs.query)

	_, err = svc.Search(context.Background(), "   ")
	assert.Error(t, err)
}

func TestServiceRefreshFavorites(t *testing.T) {
	prov := &stubProvider{failFor: map[string]bool{CoordinateKey(3, 3): true}}
	cache := &mapCache{data: map[string]RawWeatherBundle{}}
	favs := &sliceStore{}
	svc := NewService(prov, nil, favs, cache, quietLogger())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := svc.AddFavorite(ctx, FavoriteInput{Name: "spot", Latitude: float64(i), Longitude: float64(i)})
		require.NoError(t, err)
	}

	n, err := svc.RefreshFavorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(3), prov.calls.Load())

	_, ok := cache.Get(ctx, 1, 1)
	assert.True(t, ok)
	_, ok = cache.Get(ctx, 3, 3)
	assert.False(t, ok)
}

func TestServiceRefreshNoFavorites(t *testing.T) {
	svc := NewService(&stubProvider{}, nil, &sliceStore{}, nil, quietLogger())

	n, err := svc.RefreshFavorites(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFavoriteLocation(t *testing.T) {
	country := "Japan"
	f := Favorite{ID: 7, Name: "Tokyo", Latitude: 35.68, Longitude: 139.69, Country: &country}

	loc := f.Location()
	assert.Equal(t, "Japan", loc.Country)
	assert.Equal(t, "35.6800,139.6900", loc.Key())
}
