// Package analysis turns raw weather series into trading insight: a
// statistics snapshot, the market region of a location, multi-horizon
// outlooks and ranked trade recommendations. Everything here is a pure
// function of its inputs.
package analysis

import (
	"time"

	"github.com/i474232898/weather-trading-insights/internal/weather"
)

// Disclaimer accompanies every rule-based report.
const Disclaimer = "This analysis is for educational purposes only and should not be considered financial advice. Weather-based trading involves significant risk. Past weather patterns do not guarantee future market performance."

// CurrentConditions summarizes the present state at the location.
type CurrentConditions struct {
	Temperature          float64           `json:"temperature"`
	TempAnomaly          string            `json:"tempAnomaly"`
	PrecipitationOutlook string            `json:"precipitationOutlook"`
	Season               string            `json:"season"`
	Humidity             float64           `json:"humidity"`
	WindSpeed            float64           `json:"windSpeed"`
	Condition            string            `json:"condition,omitempty"`
	Category             weather.Condition `json:"category,omitempty"`
}

// Report is the full rule-based analysis for a location.
type Report struct {
	Location          string                `json:"location"`
	Country           string                `json:"country,omitempty"`
	Region            string                `json:"region"`
	GeneratedAt       time.Time             `json:"generatedAt"`
	CurrentConditions CurrentConditions     `json:"currentConditions"`
	Synopsis          SynopsisSet           `json:"synopsis"`
	Trades            []TradeRecommendation `json:"trades"`
	Disclaimer        string                `json:"disclaimer"`
}

// Generate runs the whole pipeline for loc over bundle.
func Generate(loc weather.Location, bundle weather.RawWeatherBundle, now time.Time) Report {
	stats := ComputeStatistics(bundle, now)
	region := ClassifyRegion(loc)

	conditions := CurrentConditions{
		Temperature:          stats.CurrentTemp,
		TempAnomaly:          fixed(stats.TempAnomaly, 1),
		PrecipitationOutlook: stats.PrecipOutlook,
		Season:               stats.Season.Title(),
		Humidity:             stats.AvgHumidity,
		WindSpeed:            stats.AvgWindSpeed,
	}
	if f := bundle.Forecast; f != nil && f.Current != nil && f.Current.WeatherCode != nil {
		conditions.Condition = weather.DescribeCode(*f.Current.WeatherCode)
		conditions.Category = weather.ConditionFromCode(*f.Current.WeatherCode)
	}

	return Report{
		Location:          loc.Name,
		Country:           loc.Country,
		Region:            region.Region,
		GeneratedAt:       now.UTC(),
		CurrentConditions: conditions,
		Synopsis:          GenerateSynopses(stats, region, now),
		Trades:            GenerateTrades(stats, region),
		Disclaimer:        Disclaimer,
	}
}
