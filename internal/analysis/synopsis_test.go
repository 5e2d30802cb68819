package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func warmStats() Statistics {
	return Statistics{
		CurrentTemp:             75,
		AvgHistTemp:             60,
		TempAnomaly:             15,
		TempAnomalySignificance: 3,
		PrecipRatio:             1,
		PrecipOutlook:           PrecipNear,
		Season:                  Summer,
		IsNorthernHemisphere:    true,
		Latitude:                40,
	}
}

var northAmerica = RegionProfile{Region: "North America", Market: "US", Currency: "USD", Country: "United States"}

func TestGenerateSynopsisSummary(t *testing.T) {
	s := GenerateSynopsis(30, warmStats(), northAmerica, july)

	assert.Equal(t, "30-Day Outlook", s.Period)
	assert.Equal(t, "Significantly warmer than normal with near normal precipitation.", s.Summary)
	assert.Equal(t, "Above Normal", s.TemperatureOutlook)
	assert.Equal(t, PrecipNear, s.PrecipitationOutlook)
	assert.Equal(t, DataPoints{
		CurrentTemp:   "75.0",
		HistoricalAvg: "60.0",
		Anomaly:       "+15.0",
		PrecipRatio:   "100% of normal",
	}, s.DataPoints)
}

func TestGenerateSynopsisConfidenceByHorizon(t *testing.T) {
	want := map[int]string{
		7:   "High",
		14:  "High",
		30:  "Moderate-High",
		60:  "Moderate",
		90:  "Low-Moderate",
		180: "Seasonal Average",
		360: "Seasonal Average",
	}
	for days, confidence := range want {
		assert.Equal(t, confidence, GenerateSynopsis(days, warmStats(), northAmerica, july).Confidence, "days %d", days)
	}
}

func TestGenerateSynopsisShortRangeDetails(t *testing.T) {
	s := GenerateSynopsis(30, warmStats(), northAmerica, july)
	assert.Equal(t,
		"Current temperature 75.0°F vs historical average 60.0°F. Minimal precipitation expected in the near term. stable temperature pattern.",
		s.Details)

	stats := warmStats()
	stats.Next7DaysPrecip = 12.5
	stats.AvgWeeklyPrecip = 8
	stats.RecentTempTrend = 2
	stats.ForecastHasExtremeHeat = true
	stats.IsHighVolatility = true
	s = GenerateSynopsis(30, stats, northAmerica, july)
	assert.Equal(t,
		"Current temperature 75.0°F vs historical average 60.0°F. Next 7 days: 12.5mm precipitation expected (avg: 8.0mm). warming trend observed. Extreme heat events possible in the near term. High temperature variability may create challenging conditions.",
		s.Details)
}

func TestGenerateSynopsisSeasonalTransition(t *testing.T) {
	stats := warmStats()
	stats.Season = Winter
	feb := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

	s := GenerateSynopsis(60, stats, northAmerica, feb)
	assert.Equal(t, "stable temperature pattern. Seasonal transition toward spring expected. near normal precipitation.", s.Details)

	s = GenerateSynopsis(60, warmStats(), northAmerica, july)
	assert.Equal(t, "stable temperature pattern. Summer conditions to continue. near normal precipitation.", s.Details)
}

func TestGenerateSynopsisLongRange(t *testing.T) {
	s := GenerateSynopsis(90, warmStats(), northAmerica, july)
	assert.Equal(t,
		"Mid-latitude location with distinct seasonal patterns. Based on historical patterns, expect significantly warmer than normal to moderate toward seasonal norms. near normal precipitation as seasonal patterns evolve.",
		s.Details)

	stats := warmStats()
	stats.Season = Fall
	s = GenerateSynopsis(180, stats, northAmerica, july)
	assert.Equal(t,
		"Extended outlook spans fall → winter. Historical data suggests near normal precipitation tendency. Temperature patterns typically follow climatological norms with moderate variability.",
		s.Details)

	tropical := warmStats()
	tropical.Latitude = 10
	s = GenerateSynopsis(360, tropical, RegionProfile{Region: "Africa"}, july)
	assert.Equal(t,
		"Full annual cycle analysis. Tropical location with minimal seasonal temperature variation. Region experiences summer currently, cycling through all seasons. Long-term patterns based on historical climatology for Africa.",
		s.Details)
}

func TestGenerateSynopsisDescriptions(t *testing.T) {
	stats := warmStats()
	stats.TempAnomaly = -4.56
	stats.TempAnomalySignificance = 0.5
	stats.PrecipRatio = 0.25

	s := GenerateSynopsis(30, stats, northAmerica, july)
	assert.Equal(t, "Slightly below normal temperatures with very dry conditions persisting.", s.Summary)
	assert.Equal(t, "Below Normal", s.TemperatureOutlook)
	assert.Equal(t, "-4.6", s.DataPoints.Anomaly)
	assert.Equal(t, "25% of normal", s.DataPoints.PrecipRatio)
}

func TestGenerateSynopsesCoversEveryHorizon(t *testing.T) {
	set := GenerateSynopses(warmStats(), northAmerica, july)
	assert.Equal(t, "30-Day Outlook", set.Days30.Period)
	assert.Equal(t, "60-Day Outlook", set.Days60.Period)
	assert.Equal(t, "90-Day Outlook", set.Days90.Period)
	assert.Equal(t, "180-Day Outlook", set.Days180.Period)
	assert.Equal(t, "360-Day Outlook", set.Days360.Period)
}

func TestSeasonSequence(t *testing.T) {
	assert.Equal(t, []Season{Winter, Spring}, SeasonSequence(Winter, 100, true))
	assert.Equal(t, []Season{Fall, Winter}, SeasonSequence(Fall, 180, true))
	assert.Equal(t, []Season{Summer, Fall, Winter, Spring}, SeasonSequence(Summer, 360, false))
	assert.Equal(t, []Season{Spring, Summer, Fall, Winter}, SeasonSequence(Spring, 1000, true))
	assert.Empty(t, SeasonSequence(Spring, 0, true))
}

func TestSeasonAt(t *testing.T) {
	march := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Spring, SeasonAt(march, true))
	assert.Equal(t, Fall, SeasonAt(march, false))
	assert.Equal(t, Winter, SeasonAt(july, false))
	assert.Equal(t, "Summer", SeasonAt(july, true).Title())
}
