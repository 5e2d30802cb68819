package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Horizons are the outlook lengths, in days, a report covers.
var Horizons = [5]int{30, 60, 90, 180, 360}

const transitionLookahead = 45 * 24 * time.Hour

// Synopsis is the outlook for a single horizon.
type Synopsis struct {
	Period               string     `json:"period"`
	Summary              string     `json:"summary"`
	Details              string     `json:"details"`
	Confidence           string     `json:"confidence"`
	TemperatureOutlook   string     `json:"temperatureOutlook"`
	PrecipitationOutlook string     `json:"precipitationOutlook"`
	DataPoints           DataPoints `json:"dataPoints"`
}

// DataPoints are the preformatted figures shown alongside a synopsis.
type DataPoints struct {
	CurrentTemp   string `json:"currentTemp"`
	HistoricalAvg string `json:"historicalAvg"`
	Anomaly       string `json:"anomaly"`
	PrecipRatio   string `json:"precipRatio"`
}

// SynopsisSet holds one synopsis per horizon.
type SynopsisSet struct {
	Days30  Synopsis `json:"days30"`
	Days60  Synopsis `json:"days60"`
	Days90  Synopsis `json:"days90"`
	Days180 Synopsis `json:"days180"`
	Days360 Synopsis `json:"days360"`
}

// GenerateSynopses builds the outlook for every horizon.
func GenerateSynopses(stats Statistics, region RegionProfile, now time.Time) SynopsisSet {
	return SynopsisSet{
		Days30:  GenerateSynopsis(Horizons[0], stats, region, now),
		Days60:  GenerateSynopsis(Horizons[1], stats, region, now),
		Days90:  GenerateSynopsis(Horizons[2], stats, region, now),
		Days180: GenerateSynopsis(Horizons[3], stats, region, now),
		Days360: GenerateSynopsis(Horizons[4], stats, region, now),
	}
}

// GenerateSynopsis describes the outlook over the next days from stats.
func GenerateSynopsis(days int, stats Statistics, region RegionProfile, now time.Time) Synopsis {
	tempDesc := temperatureDescription(stats)
	precipDesc := precipitationDescription(stats.PrecipRatio)

	var details string
	switch {
	case days <= 30:
		weekly := "Minimal precipitation expected in the near term."
		if stats.Next7DaysPrecip > 0 {
			weekly = fmt.Sprintf("Next 7 days: %smm precipitation expected (avg: %smm).",
				fixed(stats.Next7DaysPrecip, 1), fixed(stats.AvgWeeklyPrecip, 1))
		}
		details = fmt.Sprintf("Current temperature %s°F vs historical average %s°F. %s %s.%s%s",
			fixed(stats.CurrentTemp, 1), fixed(stats.AvgHistTemp, 1),
			weekly, trendDescription(stats.RecentTempTrend),
			extremeWarning(stats), volatilityNote(stats))
	case days <= 60:
		upcoming := SeasonAt(now.Add(transitionLookahead), stats.IsNorthernHemisphere)
		transition := stats.Season.Title() + " conditions to continue."
		if upcoming != stats.Season {
			transition = fmt.Sprintf("Seasonal transition toward %s expected.", upcoming)
		}
		details = fmt.Sprintf("%s. %s %s.%s",
			trendDescription(stats.RecentTempTrend), transition, precipDesc, volatilityNote(stats))
	case days <= 90:
		details = fmt.Sprintf("%s Based on historical patterns, expect %s to moderate toward seasonal norms. %s as seasonal patterns evolve.",
			climateContext(stats.Latitude), tempDesc, precipDesc)
	case days <= 180:
		seasons := SeasonSequence(stats.Season, days, stats.IsNorthernHemisphere)
		names := make([]string, len(seasons))
		for i, s := range seasons {
			names[i] = string(s)
		}
		variability := "moderate"
		if stats.IsHighVolatility {
			variability = "significant"
		}
		details = fmt.Sprintf("Extended outlook spans %s. Historical data suggests %s precipitation tendency. Temperature patterns typically follow climatological norms with %s variability.",
			strings.Join(names, " → "), strings.ToLower(stats.PrecipOutlook), variability)
	default:
		place := region.Country
		if place == "" {
			place = region.Region
		}
		details = fmt.Sprintf("Full annual cycle analysis. %s Region experiences %s currently, cycling through all seasons. Long-term patterns based on historical climatology for %s.",
			climateContext(stats.Latitude), stats.Season, place)
	}

	return Synopsis{
		Period:               fmt.Sprintf("%d-Day Outlook", days),
		Summary:              capitalize(tempDesc) + " with " + precipDesc + ".",
		Details:              details,
		Confidence:           horizonConfidence(days),
		TemperatureOutlook:   temperatureOutlook(stats.TempAnomaly),
		PrecipitationOutlook: stats.PrecipOutlook,
		DataPoints: DataPoints{
			CurrentTemp:   fixed(stats.CurrentTemp, 1),
			HistoricalAvg: fixed(stats.AvgHistTemp, 1),
			Anomaly:       signed(stats.TempAnomaly),
			PrecipRatio:   fixed(stats.PrecipRatio*100, 0) + "% of normal",
		},
	}
}

func temperatureDescription(stats Statistics) string {
	warm := stats.TempAnomaly > 0
	switch {
	case stats.TempAnomalySignificance > 2:
		if warm {
			return "significantly warmer than normal"
		}
		return "significantly cooler than normal"
	case stats.TempAnomalySignificance > 1:
		if warm {
			return "warmer than normal"
		}
		return "cooler than normal"
	case math.Abs(stats.TempAnomaly) > 1:
		if warm {
			return "slightly above normal temperatures"
		}
		return "slightly below normal temperatures"
	default:
		return "near normal temperatures"
	}
}

func precipitationDescription(ratio float64) string {
	switch {
	case ratio > 2:
		return "exceptionally wet conditions expected"
	case ratio > 1.5:
		return "above average precipitation likely"
	case ratio > 1.2:
		return "slightly wetter than normal"
	case ratio < 0.3:
		return "very dry conditions persisting"
	case ratio < 0.5:
		return "below average precipitation expected"
	case ratio < 0.8:
		return "slightly drier than normal"
	default:
		return "near normal precipitation"
	}
}

func trendDescription(trend float64) string {
	switch {
	case trend > 1:
		return "warming trend observed"
	case trend < -1:
		return "cooling trend observed"
	default:
		return "stable temperature pattern"
	}
}

func extremeWarning(stats Statistics) string {
	switch {
	case stats.ForecastHasExtremeHeat:
		return " Extreme heat events possible in the near term."
	case stats.ForecastHasExtremeCold:
		return " Extreme cold events possible in the near term."
	default:
		return ""
	}
}

func volatilityNote(stats Statistics) string {
	if stats.IsHighVolatility {
		return " High temperature variability may create challenging conditions."
	}
	return ""
}

func climateContext(latitude float64) string {
	abs := math.Abs(latitude)
	switch {
	case abs > 55:
		return "High latitude location experiences significant seasonal variation."
	case abs < 23.5:
		return "Tropical location with minimal seasonal temperature variation."
	case abs < 35:
		return "Subtropical climate with moderate seasonal changes."
	default:
		return "Mid-latitude location with distinct seasonal patterns."
	}
}

func horizonConfidence(days int) string {
	switch {
	case days <= 14:
		return "High"
	case days <= 30:
		return "Moderate-High"
	case days <= 60:
		return "Moderate"
	case days <= 90:
		return "Low-Moderate"
	default:
		return "Seasonal Average"
	}
}

func temperatureOutlook(anomaly float64) string {
	switch {
	case anomaly > 2:
		return "Above Normal"
	case anomaly < -2:
		return "Below Normal"
	default:
		return "Near Normal"
	}
}

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// signed formats v with one decimal and an explicit plus for positive values.
func signed(v float64) string {
	if v > 0 {
		return "+" + fixed(v, 1)
	}
	return fixed(v, 1)
}
