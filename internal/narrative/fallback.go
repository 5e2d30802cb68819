package narrative

import (
	"fmt"

	"github.com/i474232898/weather-trading-insights/internal/analysis"
	"github.com/i474232898/weather-trading-insights/internal/weather"
)

const (
	Disclaimer            = "AI-generated analysis for educational purposes only. Not financial advice. Always conduct your own research and consult with financial professionals before making investment decisions."
	NotConfiguredMessage  = "AI analysis not configured. Set LLM_API_KEY environment variable to enable."
	configureKeyHint      = "For detailed AI-powered analysis, configure an LLM API key (set LLM_API_KEY environment variable)."
	fallbackAnomalyBounds = 5.0
)

// FallbackAdvice returns rule-based tips used when no model is available or
// the model call fails. stats may be nil.
func FallbackAdvice(loc weather.Location, stats *analysis.Statistics) []string {
	var tips []string

	if stats != nil {
		switch {
		case stats.TempAnomaly > fallbackAnomalyBounds:
			tips = append(tips, fmt.Sprintf("Significant heat anomaly (+%s°F) detected. Consider energy sector exposure for increased cooling demand.", fixed(stats.TempAnomaly, 1)))
		case stats.TempAnomaly < -fallbackAnomalyBounds:
			tips = append(tips, fmt.Sprintf("Significant cold anomaly (%s°F) detected. Natural gas and heating-related investments may benefit.", fixed(stats.TempAnomaly, 1)))
		}

		if stats.IsDryPeriod && (stats.Season == analysis.Spring || stats.Season == analysis.Summer) {
			tips = append(tips, "Drought conditions during growing season may impact agricultural commodity prices. Monitor crop reports.")
		}
		if stats.IsWetPeriod {
			tips = append(tips, "Above-normal precipitation may affect planting/harvest schedules and flood-sensitive industries.")
		}
	}

	if len(tips) == 0 {
		name := loc.Name
		if name == "" {
			name = "this location"
		}
		tips = append(tips, fmt.Sprintf("Weather conditions are near normal for %s. Limited weather-driven trading opportunities at this time.", name))
	}

	return append(tips, configureKeyHint)
}
