package narrative

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-trading-insights/internal/analysis"
	"github.com/i474232898/weather-trading-insights/internal/weather"
)

const forecastLines = 14

// BuildTradingPrompt renders the analyst prompt for loc from the forecast
// document and the statistics computed over the full bundle.
func BuildTradingPrompt(loc weather.Location, forecast weather.SeriesDocument, stats analysis.Statistics, now time.Time) string {
	var b strings.Builder

	b.WriteString("You are an elite weather-commodities trading analyst at a major hedge fund. Your job is to provide SPECIFIC, ACTIONABLE trade recommendations with exact ticker symbols. You have access to your training knowledge about markets, recent events, and financial instruments.\n\n")

	b.WriteString("## CRITICAL REQUIREMENTS\n")
	b.WriteString("1. You MUST provide SPECIFIC TICKER SYMBOLS for every trade (e.g., UNG, XLE, ED, CORN, DVN, etc.)\n")
	b.WriteString("2. You MUST include concrete entry points, targets, and stop losses\n")
	b.WriteString("3. You MUST consider current events and news that intersect with weather impacts\n")
	fmt.Fprintf(&b, "4. Think about regional companies headquartered in or heavily exposed to %s\n", loc.Name)
	b.WriteString("5. Consider second-order effects: supply chains, consumer behavior, earnings impacts\n\n")

	fmt.Fprintf(&b, "## Current Date\n%s, %d\n\n", now.Format("Monday, January 2, 2006"), now.Year())
	fmt.Fprintf(&b, "## Location: %s, %s\n\n", loc.Name, loc.Country)

	b.WriteString("### Regional Context to Consider\n")
	b.WriteString("- What major companies are headquartered here or have significant operations?\n")
	b.WriteString("- What is the local energy infrastructure (utilities, pipelines, power plants)?\n")
	b.WriteString("- What agricultural products are grown in this region?\n")
	b.WriteString("- What ports, airports, or logistics hubs could be affected?\n")
	b.WriteString("- What seasonal retail patterns exist here?\n")
	b.WriteString("- Are there any current news events or earnings seasons to consider?\n\n")

	b.WriteString("## WEATHER DATA\n\n")
	b.WriteString("### Current Conditions\n")
	b.WriteString("| Metric | Value | Context |\n|--------|-------|---------|\n")
	fmt.Fprintf(&b, "| Temperature | %s°F | vs %s°F historical average |\n", fixed(stats.CurrentTemp, 1), fixed(stats.AvgHistTemp, 1))
	fmt.Fprintf(&b, "| Anomaly | %s°F | %s |\n", fixed(stats.TempAnomaly, 1), AnomalyLabel(stats.TempAnomaly))
	fmt.Fprintf(&b, "| Season | %s | |\n", orNA(string(stats.Season)))
	fmt.Fprintf(&b, "| Humidity | %s%% | |\n\n", nonZero(stats.AvgHumidity, 0))

	b.WriteString("### Precipitation\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Outlook | %s |\n", orNA(stats.PrecipOutlook))
	ratio := "N/A"
	if stats.PrecipRatio != 0 {
		ratio = fixed(stats.PrecipRatio*100, 0) + "%"
	}
	fmt.Fprintf(&b, "| vs Normal | %s of typical |\n", ratio)
	fmt.Fprintf(&b, "| Next 7 Days | %s inches |\n", fixed(stats.Next7DaysPrecip, 2))
	fmt.Fprintf(&b, "| Abnormal? | %s |\n\n", abnormality(stats))

	b.WriteString("### Forecast Alerts\n")
	if stats.ForecastHasExtremeHeat {
		b.WriteString("🔥 **EXTREME HEAT WARNING** - Heat wave conditions expected\n")
	}
	if stats.ForecastHasExtremeCold {
		b.WriteString("❄️ **EXTREME COLD WARNING** - Arctic conditions expected\n")
	}
	if stats.IsHighVolatility {
		b.WriteString("⚠️ **HIGH VOLATILITY** - Rapid temperature swings expected\n")
	}
	b.WriteString("\n")

	b.WriteString("### 14-Day Forecast\n")
	b.WriteString(forecastTable(forecast.Daily))
	b.WriteString("\n\n---\n\n")

	b.WriteString("## YOUR ANALYSIS (Required Format)\n\n")
	b.WriteString("### 📊 Executive Summary\n")
	fmt.Fprintf(&b, "[2-3 sentences: What is THE key weather-driven trade right now for %s? Be specific and actionable.]\n\n", loc.Name)
	b.WriteString(tradeFormat)
	fmt.Fprintf(&b, "### 🏭 Sector Analysis for %s\n\n", loc.Name)
	b.WriteString("**Energy & Utilities**\n")
	b.WriteString("- Local utilities: [Name specific companies like ConEd (ED), National Grid, etc.]\n")
	b.WriteString("- Impact: [How does this weather affect them specifically?]\n")
	b.WriteString("- Heating/Cooling demand outlook: [Specific]\n\n")
	b.WriteString("**Regional Companies**\n")
	fmt.Fprintf(&b, "- [List 3-5 companies headquartered in or heavily exposed to %s]\n", loc.Name)
	b.WriteString("- [How might their operations/earnings be affected?]\n\n")
	b.WriteString(closingSections)

	return b.String()
}

// AnomalyLabel grades the magnitude of a temperature anomaly.
func AnomalyLabel(anomaly float64) string {
	switch abs := math.Abs(anomaly); {
	case abs > 10:
		return "SIGNIFICANT DEVIATION"
	case abs > 5:
		return "Notable deviation"
	default:
		return "Within normal range"
	}
}

func abnormality(stats analysis.Statistics) string {
	switch {
	case stats.IsWetPeriod:
		return "🌧️ UNUSUALLY WET"
	case stats.IsDryPeriod:
		return "🏜️ UNUSUALLY DRY"
	default:
		return "Normal"
	}
}

func forecastTable(daily weather.DailySeries) string {
	if len(daily.Time) == 0 {
		return "Forecast unavailable"
	}
	n := min(len(daily.Time), forecastLines)
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rain := ""
		if p := at(daily.PrecipitationSum, i); p != nil && *p > 0.1 {
			rain = "🌧️" + fixed(*p, 1) + `"`
		}
		lines = append(lines, fmt.Sprintf("%s: H:%s°F L:%s°F %s",
			daily.Time[i], optional(at(daily.Temperature2mMax, i)), optional(at(daily.Temperature2mMin, i)), rain))
	}
	return strings.Join(lines, "\n")
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func optional(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "?"
	}
	return fixed(*v, 0)
}

func nonZero(v float64, prec int) string {
	if v == 0 || math.IsNaN(v) {
		return "N/A"
	}
	return fixed(v, prec)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

const tradeFormat = `### 💹 Trade Recommendations

Provide EXACTLY 5 specific trades. Use this EXACT format:

---
**Trade 1: [Name]**
- **Ticker:** [EXACT SYMBOL like UNG, XLE, ED, CORN]
- **Action:** [BUY / SELL / SHORT]
- **Entry:** [Specific price or "at market open" or "on dip to $X"]
- **Target:** [+X% or specific price]
- **Stop Loss:** [-X% or specific price]
- **Timeframe:** [X days/weeks]
- **Confidence:** [High/Medium/Low]
- **Why:** [2-3 sentences explaining the weather→trade connection]
- **Risk:** [What could go wrong]
---

[Repeat for Trades 2-5]

`

const closingSections = `**Agriculture & Commodities**
- Relevant crops for this region: [Be specific]
- Commodity plays: [Specific tickers like CORN, WEAT, SOYB, DBA]

**Retail & Consumer**
- Weather-sensitive retailers with exposure: [Specific names/tickers]
- Consumer behavior impact: [Specific]

**Transportation & Logistics**
- [Airports, ports, rails, trucking companies affected]
- [Disruption risks and plays]

### 📰 News & Catalysts to Watch
1. [Specific upcoming event #1 - earnings, reports, weather events]
2. [Specific upcoming event #2]
3. [Specific upcoming event #3]
4. Government reports to monitor: [EIA storage, USDA crops, etc.]

### 🔄 Contrarian View
[One paragraph: Why might the obvious trade FAIL? What's the other side of this trade thinking? What alternative positioning could work if the consensus is wrong?]

---
Remember: Provide REAL ticker symbols. Be SPECIFIC. Traders need actionable intelligence, not generic commentary.`
