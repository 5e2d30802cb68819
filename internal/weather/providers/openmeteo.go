package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-trading-insights/internal/weather"
)

const (
	currentFields  = "temperature_2m,relative_humidity_2m,apparent_temperature,is_day,precipitation,rain,showers,snowfall,weather_code,cloud_cover,pressure_msl,surface_pressure,wind_speed_10m,wind_direction_10m,wind_gusts_10m"
	hourlyFields   = "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation_probability,precipitation,weather_code,wind_speed_10m,wind_direction_10m,is_day"
	dailyFields    = "weather_code,temperature_2m_max,temperature_2m_min,apparent_temperature_max,apparent_temperature_min,sunrise,sunset,precipitation_sum,precipitation_probability_max,wind_speed_10m_max"
	extCurrent     = "temperature_2m,relative_humidity_2m,precipitation,weather_code,cloud_cover,wind_speed_10m"
	extDaily       = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_probability_max,wind_speed_10m_max,sunshine_duration"
	archiveDaily   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max,sunshine_duration"
	climateDaily   = "temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max"
	climateModel   = "EC_Earth3P_HR"
	climateStart   = "2024-01-01"
	climateEnd     = "2024-12-31"
	searchCount    = 5
	extendedDays   = 16
	shortRangeDays = 7
)

// OpenMeteoConfig holds endpoint and throttling settings.
type OpenMeteoConfig struct {
	ForecastURL       string
	ArchiveURL        string
	ClimateURL        string
	GeocodingURL      string
	RequestsPerSecond float64
	Burst             int
	// Backoff applies to 429, 5xx and transport failures. Zero means the default policy.
	Backoff BackoffConfig
}

// DefaultOpenMeteoConfig returns the public Open-Meteo endpoints.
func DefaultOpenMeteoConfig() OpenMeteoConfig {
	return OpenMeteoConfig{
		ForecastURL:       "https://api.open-meteo.com/v1/forecast",
		ArchiveURL:        "https://archive-api.open-meteo.com/v1/archive",
		ClimateURL:        "https://climate-api.open-meteo.com/v1/climate",
		GeocodingURL:      "https://geocoding-api.open-meteo.com/v1/search",
		RequestsPerSecond: 5,
		Burst:             10,
		Backoff:           defaultBackoff,
	}
}

// OpenMeteoProvider implements weather.Provider and weather.LocationProvider for Open-Meteo.
type OpenMeteoProvider struct {
	name     string
	cfg      OpenMeteoConfig
	fetcher  *resilientClient
	circuits map[string]*gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, cfg OpenMeteoConfig, log logrus.FieldLogger) *OpenMeteoProvider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Backoff == (BackoffConfig{}) {
		cfg.Backoff = defaultBackoff
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &OpenMeteoProvider{
		name: "openmeteo",
		cfg:  cfg,
		fetcher: &resilientClient{
			client:  client,
			backoff: cfg.Backoff,
			limiter: limiter,
			log:     log.WithField("provider", "openmeteo"),
		},
		circuits: map[string]*gobreaker.CircuitBreaker{
			"forecast":  newCircuitBreaker("openmeteo-forecast"),
			"archive":   newCircuitBreaker("openmeteo-archive"),
			"climate":   newCircuitBreaker("openmeteo-climate"),
			"geocoding": newCircuitBreaker("openmeteo-geocoding"),
		},
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Search returns up to five candidate locations for query.
func (p *OpenMeteoProvider) Search(ctx context.Context, query string) ([]weather.Location, error) {
	values := url.Values{}
	values.Set("name", query)
	values.Set("count", strconv.Itoa(searchCount))
	values.Set("language", "en")
	values.Set("format", "json")

	body, err := p.get(ctx, "geocoding", p.cfg.GeocodingURL, values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []struct {
			ID        int64   `json:"id"`
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Country   string  `json:"country"`
			Admin1    string  `json:"admin1"`
			Timezone  string  `json:"timezone"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}

	locs := make([]weather.Location, 0, len(payload.Results))
	for _, r := range payload.Results {
		locs = append(locs, weather.Location{
			ID:        r.ID,
			Name:      r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Country:   r.Country,
			Admin1:    r.Admin1,
			Timezone:  r.Timezone,
		})
	}
	return locs, nil
}

// Forecast returns the 7-day forecast (Fahrenheit, mph, inches) unmodified.
func (p *OpenMeteoProvider) Forecast(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	values := coordinates(lat, lon)
	values.Set("current", currentFields)
	values.Set("hourly", hourlyFields)
	values.Set("daily", dailyFields)
	values.Set("timezone", "auto")
	values.Set("forecast_days", strconv.Itoa(shortRangeDays))
	values.Set("temperature_unit", "fahrenheit")
	values.Set("wind_speed_unit", "mph")
	values.Set("precipitation_unit", "inch")

	body, err := p.get(ctx, "forecast", p.cfg.ForecastURL, values)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("forecast response is not valid JSON")
	}
	return json.RawMessage(body), nil
}

// Extended fetches the 16-day forecast, the past year of observations and the
// climate normals concurrently. Any failure fails the whole bundle.
func (p *OpenMeteoProvider) Extended(ctx context.Context, lat, lon float64, now time.Time) (weather.RawWeatherBundle, error) {
	today := now.UTC()
	oneYearAgo := today.AddDate(-1, 0, 0)

	forecastQ := coordinates(lat, lon)
	forecastQ.Set("current", extCurrent)
	forecastQ.Set("daily", extDaily)
	forecastQ.Set("timezone", "auto")
	forecastQ.Set("forecast_days", strconv.Itoa(extendedDays))
	forecastQ.Set("temperature_unit", "fahrenheit")

	archiveQ := coordinates(lat, lon)
	archiveQ.Set("start_date", oneYearAgo.Format("2006-01-02"))
	archiveQ.Set("end_date", today.Format("2006-01-02"))
	archiveQ.Set("daily", archiveDaily)
	archiveQ.Set("timezone", "auto")

	climateQ := coordinates(lat, lon)
	climateQ.Set("start_date", climateStart)
	climateQ.Set("end_date", climateEnd)
	climateQ.Set("daily", climateDaily)
	climateQ.Set("models", climateModel)

	requests := []struct {
		circuit string
		baseURL string
		query   url.Values
		dst     **weather.SeriesDocument
	}{
		{"forecast", p.cfg.ForecastURL, forecastQ, nil},
		{"archive", p.cfg.ArchiveURL, archiveQ, nil},
		{"climate", p.cfg.ClimateURL, climateQ, nil},
	}

	var bundle weather.RawWeatherBundle
	requests[0].dst = &bundle.Forecast
	requests[1].dst = &bundle.Historical
	requests[2].dst = &bundle.Climate

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, r := range requests {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()

			doc, err := p.document(ctx, r.circuit, r.baseURL, r.query)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", r.circuit, err)
				}
				return
			}
			*r.dst = doc
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return weather.RawWeatherBundle{}, firstErr
	}
	return bundle, nil
}

func (p *OpenMeteoProvider) document(ctx context.Context, circuit, baseURL string, values url.Values) (*weather.SeriesDocument, error) {
	body, err := p.get(ctx, circuit, baseURL, values)
	if err != nil {
		return nil, err
	}
	var doc weather.SeriesDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", circuit, err)
	}
	return &doc, nil
}

func (p *OpenMeteoProvider) get(ctx context.Context, circuit, baseURL string, values url.Values) ([]byte, error) {
	target := baseURL + "?" + values.Encode()
	return p.fetcher.fetch(ctx, p.circuits[circuit], func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
}

func coordinates(lat, lon float64) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	return values
}
