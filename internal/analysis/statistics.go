package analysis

import (
	"math"
	"time"

	"github.com/i474232898/weather-trading-insights/internal/weather"
)

// Precipitation outlook categories.
const (
	PrecipMuchAbove = "Much Above Normal"
	PrecipAbove     = "Above Normal"
	PrecipNear      = "Near Normal"
	PrecipBelow     = "Below Normal"
	PrecipMuchBelow = "Much Below Normal"
)

const (
	fallbackCurrentTemp = 68.0
	fallbackLatitude    = 45.0
	fallbackHumidity    = 50.0
	fallbackWindSpeed   = 10.0
	volatilityThreshold = 14.0
	wetRatio            = 1.3
	dryRatio            = 0.7
)

// Statistics is the snapshot every downstream generator reads. It is computed
// once per request and never mutated.
type Statistics struct {
	CurrentTemp             float64 `json:"currentTemp"`
	AvgHistTemp             float64 `json:"avgHistTemp"`
	AvgHistTempMax          float64 `json:"avgHistTempMax"`
	AvgHistTempMin          float64 `json:"avgHistTempMin"`
	TempAnomaly             float64 `json:"tempAnomaly"`
	TempAnomalySignificance float64 `json:"tempAnomalySignificance"`
	TempStdDev              float64 `json:"tempStdDev"`
	AvgHistPrecip           float64 `json:"avgHistPrecip"`
	PrecipRatio             float64 `json:"precipRatio"`
	PrecipStdDev            float64 `json:"precipStdDev"`
	PrecipOutlook           string  `json:"precipOutlook"`
	Next7DaysPrecip         float64 `json:"next7DaysPrecip"`
	AvgWeeklyPrecip         float64 `json:"avgWeeklyPrecip"`
	RecentTempTrend         float64 `json:"recentTempTrend"`
	RecentPrecipTrend       float64 `json:"recentPrecipTrend"`
	Season                  Season  `json:"season"`
	IsNorthernHemisphere    bool    `json:"isNorthernHemisphere"`
	Latitude                float64 `json:"latitude"`
	AvgHumidity             float64 `json:"avgHumidity"`
	AvgWindSpeed            float64 `json:"avgWindSpeed"`
	AvgHistWind             float64 `json:"avgHistWind"`
	TempVolatility          float64 `json:"tempVolatility"`
	IsHighVolatility        bool    `json:"isHighVolatility"`
	ForecastHasExtremeHeat  bool    `json:"forecastHasExtremeHeat"`
	ForecastHasExtremeCold  bool    `json:"forecastHasExtremeCold"`
	IsWetPeriod             bool    `json:"isWetPeriod"`
	IsDryPeriod             bool    `json:"isDryPeriod"`
	ForecastDays            int     `json:"forecastDays"`
}

// ComputeStatistics derives the snapshot from a raw bundle. It never fails:
// missing or malformed series degrade to neutral defaults.
func ComputeStatistics(bundle weather.RawWeatherBundle, now time.Time) Statistics {
	forecast := bundle.Forecast
	if forecast == nil {
		forecast = &weather.SeriesDocument{}
	}
	historical := bundle.Historical
	if historical == nil {
		historical = &weather.SeriesDocument{}
	}

	histTempMax := toFahrenheit(historical.Daily.Temperature2mMax)
	histTempMin := toFahrenheit(historical.Daily.Temperature2mMin)
	histPrecip := historical.Daily.PrecipitationSum
	histWind := historical.Daily.WindSpeed10mMax

	forecastTempMax := Clean(forecast.Daily.Temperature2mMax)
	forecastTempMin := Clean(forecast.Daily.Temperature2mMin)
	forecastPrecip := forecast.Daily.PrecipitationSum

	currentTemp := fallbackCurrentTemp
	humidity := fallbackHumidity
	wind := fallbackWindSpeed
	if cur := forecast.Current; cur != nil {
		if cur.Temperature2m != nil {
			currentTemp = *cur.Temperature2m
		} else if len(forecastTempMax) > 0 {
			currentTemp = forecastTempMax[0]
		}
		humidity = truthyOr(cur.RelativeHumidity2m, fallbackHumidity)
		wind = truthyOr(cur.WindSpeed10m, fallbackWindSpeed)
	} else if len(forecastTempMax) > 0 {
		currentTemp = forecastTempMax[0]
	}

	avgHistTempMax := AverageOf(histTempMax)
	avgHistTempMin := AverageOf(histTempMin)
	avgHistTemp := (avgHistTempMax + avgHistTempMin) / 2
	avgHistPrecip := Average(histPrecip)
	avgHistWind := Average(histWind)

	tempStdDev := StdDevOf(histTempMax)
	precipStdDev := StdDev(histPrecip)

	tempAnomaly := currentTemp - avgHistTemp
	var significance float64
	if tempStdDev > 0 {
		significance = math.Abs(tempAnomaly) / tempStdDev
	}

	var next7 float64
	for i, v := range forecastPrecip {
		if i >= 7 {
			break
		}
		if valid(v) {
			next7 += *v
		}
	}
	avgWeeklyPrecip := avgHistPrecip * 7
	precipRatio := 1.0
	if avgWeeklyPrecip > 0 {
		precipRatio = next7 / avgWeeklyPrecip
	}

	recentTempTrend := AverageOf(lastN(histTempMax, 30)) - AverageOf(lastN(histTempMax, 90))
	recentPrecipTrend := Average(lastNPtr(histPrecip, 30)) - Average(lastNPtr(histPrecip, 90))

	latitude := truthyOr(forecast.Latitude, fallbackLatitude)
	northern := latitude >= 0

	heatThreshold := avgHistTempMax + 2*tempStdDev
	coldThreshold := avgHistTempMin - 2*tempStdDev
	extremeHeat := false
	for _, t := range forecastTempMax {
		if t > heatThreshold {
			extremeHeat = true
			break
		}
	}
	extremeCold := false
	for _, t := range forecastTempMin {
		if t < coldThreshold {
			extremeCold = true
			break
		}
	}

	return Statistics{
		CurrentTemp:             currentTemp,
		AvgHistTemp:             avgHistTemp,
		AvgHistTempMax:          avgHistTempMax,
		AvgHistTempMin:          avgHistTempMin,
		TempAnomaly:             tempAnomaly,
		TempAnomalySignificance: significance,
		TempStdDev:              tempStdDev,
		AvgHistPrecip:           avgHistPrecip,
		PrecipRatio:             precipRatio,
		PrecipStdDev:            precipStdDev,
		PrecipOutlook:           PrecipitationOutlook(precipRatio),
		Next7DaysPrecip:         next7,
		AvgWeeklyPrecip:         avgWeeklyPrecip,
		RecentTempTrend:         recentTempTrend,
		RecentPrecipTrend:       recentPrecipTrend,
		Season:                  SeasonAt(now, northern),
		IsNorthernHemisphere:    northern,
		Latitude:                latitude,
		AvgHumidity:             roundHalfUp(humidity),
		AvgWindSpeed:            roundHalfUp(wind),
		AvgHistWind:             avgHistWind,
		TempVolatility:          tempStdDev,
		IsHighVolatility:        tempStdDev > volatilityThreshold,
		ForecastHasExtremeHeat:  extremeHeat,
		ForecastHasExtremeCold:  extremeCold,
		IsWetPeriod:             precipRatio > wetRatio,
		IsDryPeriod:             precipRatio < dryRatio,
		ForecastDays:            len(forecastTempMax),
	}
}

// PrecipitationOutlook categorizes a forecast-to-normal precipitation ratio.
func PrecipitationOutlook(ratio float64) string {
	switch {
	case ratio > 1.5:
		return PrecipMuchAbove
	case ratio > 1.2:
		return PrecipAbove
	case ratio < 0.5:
		return PrecipMuchBelow
	case ratio < 0.8:
		return PrecipBelow
	default:
		return PrecipNear
	}
}

func toFahrenheit(celsius []*float64) []float64 {
	out := make([]float64, 0, len(celsius))
	for _, c := range celsius {
		if f := CelsiusToFahrenheit(c); f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// truthyOr treats a missing, zero or NaN value as absent.
func truthyOr(v *float64, def float64) float64 {
	if v == nil || *v == 0 || math.IsNaN(*v) {
		return def
	}
	return *v
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
