package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionFog     Condition = "fog"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// Location is a geocoded place. Identity is the (Latitude, Longitude) pair.
type Location struct {
	ID        int64   `json:"id,omitempty"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country,omitempty"`
	Admin1    string  `json:"admin1,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores and caches.
func (l Location) Key() string {
	return CoordinateKey(l.Latitude, l.Longitude)
}

// CoordinateKey formats a coordinate pair the way caches key it.
func CoordinateKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// CurrentBlock is the optional "current" section of an Open-Meteo document.
// Every field may be absent.
type CurrentBlock struct {
	Time               string   `json:"time,omitempty"`
	Temperature2m      *float64 `json:"temperature_2m,omitempty"`
	RelativeHumidity2m *float64 `json:"relative_humidity_2m,omitempty"`
	Precipitation      *float64 `json:"precipitation,omitempty"`
	WeatherCode        *int     `json:"weather_code,omitempty"`
	CloudCover         *float64 `json:"cloud_cover,omitempty"`
	WindSpeed10m       *float64 `json:"wind_speed_10m,omitempty"`
}

// DailySeries holds parallel daily arrays. Index i of every field refers to
// the same date; individual entries may be null.
type DailySeries struct {
	Time                        []string   `json:"time,omitempty"`
	WeatherCode                 []*int     `json:"weather_code,omitempty"`
	Temperature2mMax            []*float64 `json:"temperature_2m_max,omitempty"`
	Temperature2mMin            []*float64 `json:"temperature_2m_min,omitempty"`
	PrecipitationSum            []*float64 `json:"precipitation_sum,omitempty"`
	PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max,omitempty"`
	WindSpeed10mMax             []*float64 `json:"wind_speed_10m_max,omitempty"`
	SunshineDuration            []*float64 `json:"sunshine_duration,omitempty"`
}

// SeriesDocument is one forecast, archive or climate response.
type SeriesDocument struct {
	Latitude  *float64      `json:"latitude,omitempty"`
	Longitude *float64      `json:"longitude,omitempty"`
	Timezone  string        `json:"timezone,omitempty"`
	Current   *CurrentBlock `json:"current,omitempty"`
	Daily     DailySeries   `json:"daily"`
}

// RawWeatherBundle groups the three documents the analysis consumes.
// Forecast temperatures are Fahrenheit; historical and climate are Celsius.
type RawWeatherBundle struct {
	Forecast   *SeriesDocument `json:"forecast"`
	Historical *SeriesDocument `json:"historical"`
	Climate    *SeriesDocument `json:"climate"`
}

// Favorite is a persisted location.
type Favorite struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Country   *string   `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// Location converts a favorite to the location shape used by analysis.
func (f Favorite) Location() Location {
	loc := Location{ID: f.ID, Name: f.Name, Latitude: f.Latitude, Longitude: f.Longitude}
	if f.Country != nil {
		loc.Country = *f.Country
	}
	return loc
}

// FavoriteInput is the data required to add a favorite.
type FavoriteInput struct {
	Name      string
	Latitude  float64
	Longitude float64
	Country   string
}
