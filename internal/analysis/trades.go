package analysis

import (
	"fmt"
	"math"
	"sort"
)

// Action is the suggested position change.
type Action string

const (
	ActionBuy        Action = "BUY"
	ActionSell       Action = "SELL"
	ActionShort      Action = "SHORT"
	ActionAccumulate Action = "ACCUMULATE"
	ActionHold       Action = "HOLD"
	ActionWatch      Action = "WATCH"
)

// Level grades confidence and risk.
type Level string

const (
	High   Level = "High"
	Medium Level = "Medium"
	Low    Level = "Low"
)

const defaultExchange = "Primary"

// TradeRecommendation is a single weather-driven trade idea.
type TradeRecommendation struct {
	ID             int    `json:"id"`
	Sector         string `json:"sector"`
	Ticker         string `json:"ticker"`
	InstrumentName string `json:"name"`
	Exchange       string `json:"exchange"`
	InstrumentType string `json:"instrumentType"`
	Action         Action `json:"action"`
	Confidence     Level  `json:"confidence"`
	Timeframe      string `json:"timeframe"`
	Rationale      string `json:"rationale"`
	Catalyst       string `json:"catalyst"`
	RiskLevel      Level  `json:"riskLevel"`
	ExpectedReturn string `json:"expectedReturn"`
	Region         string `json:"region"`
}

var (
	confidenceRank = map[Level]int{High: 0, Medium: 1, Low: 2}
	// SHORT is absent and sorts with BUY, as unranked actions always have.
	actionRank = map[Action]int{
		ActionBuy:        0,
		ActionAccumulate: 1,
		ActionHold:       2,
		ActionWatch:      3,
		ActionSell:       4,
	}
)

type tradeTemplate struct {
	sector         string
	display        string
	action         Action
	confidence     Level
	timeframe      string
	rationale      string
	catalyst       string
	risk           Level
	expectedReturn string
}

type tradeBuilder struct {
	region RegionProfile
	nextID int
	trades []TradeRecommendation
}

// add binds tpl to the region's instrument; trades without one are dropped.
func (b *tradeBuilder) add(tpl tradeTemplate) {
	inst, ok := LookupInstrument(b.region.Market, tpl.sector)
	if !ok {
		return
	}
	exchange := inst.Exchange
	if exchange == "" {
		exchange = defaultExchange
	}
	b.nextID++
	b.trades = append(b.trades, TradeRecommendation{
		ID:             b.nextID,
		Sector:         tpl.display,
		Ticker:         inst.Ticker,
		InstrumentName: inst.Name,
		Exchange:       exchange,
		InstrumentType: inst.Type,
		Action:         tpl.action,
		Confidence:     tpl.confidence,
		Timeframe:      tpl.timeframe,
		Rationale:      tpl.rationale,
		Catalyst:       tpl.catalyst,
		RiskLevel:      tpl.risk,
		ExpectedReturn: tpl.expectedReturn,
		Region:         b.region.Region,
	})
}

// GenerateTrades evaluates the trade rules in order and returns the
// resulting recommendations sorted by confidence, then action.
func GenerateTrades(stats Statistics, region RegionProfile) []TradeRecommendation {
	b := &tradeBuilder{region: region}
	name := region.Region
	anomaly := stats.TempAnomaly
	sig := stats.TempAnomalySignificance
	ratio := stats.PrecipRatio

	strength, anomalyConfidence := "Significant", Medium
	if sig > 2 {
		strength, anomalyConfidence = "Exceptional", High
	}

	if stats.ForecastHasExtremeHeat || (anomaly > 7 && (stats.Season == Summer || stats.CurrentTemp > 77)) {
		b.add(tradeTemplate{
			sector:     SectorEnergy,
			display:    "Energy",
			action:     ActionBuy,
			confidence: anomalyConfidence,
			timeframe:  "2-6 weeks",
			rationale: fmt.Sprintf("%s heat anomaly (+%s°F above normal) driving elevated cooling demand in %s. Increased electricity consumption supports energy sector.",
				strength, fixed(anomaly, 1), name),
			catalyst:       fmt.Sprintf("Temperature %s°F above historical average", fixed(anomaly, 1)),
			risk:           Medium,
			expectedReturn: returnRange(5+floor(sig*3), 15, 8+floor(sig*4), 20),
		})
	}

	if stats.ForecastHasExtremeCold || (anomaly < -7 && (stats.Season == Winter || stats.CurrentTemp < 41)) {
		b.add(tradeTemplate{
			sector:     SectorNaturalGas,
			display:    "Natural Gas",
			action:     ActionBuy,
			confidence: anomalyConfidence,
			timeframe:  "2-8 weeks",
			rationale: fmt.Sprintf("%s cold anomaly (%s°F below normal) increasing heating demand. Natural gas inventories draw down faster in cold snaps.",
				strength, fixed(anomaly, 1)),
			catalyst:       fmt.Sprintf("Temperature %s°F below historical average", fixed(math.Abs(anomaly), 1)),
			risk:           High,
			expectedReturn: returnRange(8+floor(sig*5), 30, 15+floor(sig*6), 40),
		})
	}

	absAnomaly := math.Abs(anomaly)
	if absAnomaly > 3 || stats.ForecastHasExtremeHeat || stats.ForecastHasExtremeCold {
		direction, load := "below", "heating"
		if anomaly > 0 {
			direction, load = "above", "cooling"
		}
		action, confidence := ActionAccumulate, Medium
		if absAnomaly > 5 {
			action, confidence = ActionBuy, High
		}
		b.add(tradeTemplate{
			sector:     SectorUtilities,
			display:    "Utilities",
			action:     action,
			confidence: confidence,
			timeframe:  "4-12 weeks",
			rationale: fmt.Sprintf("Temperature %s°F %s normal increases %s load on utilities. High demand periods support utility revenues in %s.",
				fixed(absAnomaly, 1), direction, load, name),
			catalyst:       "Temperature-driven demand surge",
			risk:           Low,
			expectedReturn: returnRange(2+floor(absAnomaly), 10, 4+floor(absAnomaly*1.5), 15),
		})
	}

	growing := stats.Season == Spring || stats.Season == Summer
	if stats.IsDryPeriod && growing {
		pct := fixed(ratio*100, 0)
		deficit := 1 - ratio
		highBelow := func(limit float64) Level {
			if ratio < limit {
				return High
			}
			return Medium
		}

		if region.Relevant("corn", "grains") {
			b.add(tradeTemplate{
				sector:     SectorCorn,
				display:    "Grains - Corn",
				action:     ActionBuy,
				confidence: highBelow(0.4),
				timeframe:  "6-12 weeks",
				rationale: fmt.Sprintf("Precipitation at %s%% of normal threatens corn yields in %s. Crop stress during %s growing season historically correlates with price increases.",
					pct, name, stats.Season),
				catalyst:       "Drought-induced supply concerns",
				risk:           Medium,
				expectedReturn: returnRange(6+floor(deficit*20), 25, 10+floor(deficit*25), 35),
			})
		}

		if region.Relevant("soybeans") {
			b.add(tradeTemplate{
				sector:     SectorSoybeans,
				display:    "Grains - Soybeans",
				action:     ActionBuy,
				confidence: highBelow(0.4),
				timeframe:  "6-14 weeks",
				rationale: fmt.Sprintf("Soybean crops highly sensitive to moisture stress. %s%% of normal precipitation in %s during critical %s development stages threatens yields.",
					pct, name, stats.Season),
				catalyst:       "Crop condition deterioration",
				risk:           Medium,
				expectedReturn: returnRange(5+floor(deficit*18), 22, 9+floor(deficit*22), 30),
			})
		}

		if region.Relevant("wheat") {
			confidence := Low
			if ratio < 0.5 {
				confidence = Medium
			}
			b.add(tradeTemplate{
				sector:     SectorWheat,
				display:    "Grains - Wheat",
				action:     ActionBuy,
				confidence: confidence,
				timeframe:  "4-10 weeks",
				rationale: fmt.Sprintf("Dry conditions (%s%% of normal) affecting wheat development in %s. Supply concerns may support prices.",
					pct, name),
				catalyst:       "Export and production forecasts",
				risk:           Medium,
				expectedReturn: returnRange(4+floor(deficit*15), 18, 8+floor(deficit*18), 25),
			})
		}

		if region.Relevant("coffee") && stats.CurrentTemp > 68 && ratio < 0.6 {
			origin := region.Country
			if origin == "" {
				origin = name
			}
			b.add(tradeTemplate{
				sector:     SectorCoffee,
				display:    "Soft Commodities - Coffee",
				action:     ActionBuy,
				confidence: highBelow(0.4),
				timeframe:  "8-16 weeks",
				rationale: fmt.Sprintf("Coffee-growing region experiencing %s%% of normal rainfall with temperatures at %s°F. Drought stress during flowering/fruit development severely impacts yields.",
					pct, fixed(stats.CurrentTemp, 1)),
				catalyst:       "Crop damage assessments from " + origin,
				risk:           High,
				expectedReturn: "+12% to +35%",
			})
		}
	}

	if stats.IsWetPeriod && stats.Season == Spring && region.Relevant("wheat", "grains") {
		confidence := Medium
		if ratio > 1.8 {
			confidence = High
		}
		surplus := ratio - 1
		b.add(tradeTemplate{
			sector:     SectorWheat,
			display:    "Grains - Wheat",
			action:     ActionBuy,
			confidence: confidence,
			timeframe:  "4-8 weeks",
			rationale: fmt.Sprintf("Excessive rainfall (%s%% of normal) in %s delaying spring planting. Reduced planted acreage and waterlogged fields threaten production.",
				fixed(ratio*100, 0), name),
			catalyst:       "Planting progress delays",
			risk:           Medium,
			expectedReturn: returnRange(4+floor(surplus*10), 18, 7+floor(surplus*12), 25),
		})
	}

	if stats.IsHighVolatility {
		b.add(tradeTemplate{
			sector:     SectorUtilities,
			display:    "Utilities (Defensive)",
			action:     ActionAccumulate,
			confidence: Medium,
			timeframe:  "8-16 weeks",
			rationale: fmt.Sprintf("High weather volatility (σ=%s°F) in %s creates demand uncertainty. Utilities offer defensive positioning with potential upside from extreme demand events.",
				fixed(stats.TempVolatility, 1), name),
			catalyst:       "Weather volatility persistence",
			risk:           Low,
			expectedReturn: "+3% to +8%",
		})
	}

	if len(b.trades) == 0 {
		b.add(tradeTemplate{
			sector:     SectorBroadMarket,
			display:    "Broad Market",
			action:     ActionHold,
			confidence: Low,
			timeframe:  "12-52 weeks",
			rationale: fmt.Sprintf("Weather conditions near historical norms for %s (temp anomaly: %s°F, precip: %s%% of normal). Limited weather-driven alpha opportunities. Focus on fundamental analysis.",
				name, signed(anomaly), fixed(ratio*100, 0)),
			catalyst:       "Monitor for pattern changes",
			risk:           Low,
			expectedReturn: "Market rate (+6-10% annually)",
		})
		b.add(tradeTemplate{
			sector:     SectorAgriculture,
			display:    "Agriculture (Diversified)",
			action:     ActionWatch,
			confidence: Low,
			timeframe:  "8-24 weeks",
			rationale: fmt.Sprintf("Near-normal weather patterns in %s suggest stable agricultural production outlook. Maintain watchlist position for potential pattern shifts.",
				name),
			catalyst:       "Weather pattern deviation",
			risk:           Medium,
			expectedReturn: "Conditional on weather shifts",
		})
	}

	if len(b.trades) < 2 {
		b.add(tradeTemplate{
			sector:     SectorBroadMarket,
			display:    name + " Market",
			action:     ActionHold,
			confidence: Medium,
			timeframe:  "26-52 weeks",
			rationale: fmt.Sprintf("Current weather patterns suggest monitoring %s markets for weather-sensitive sectors. Broad market exposure provides diversification while awaiting clearer signals.",
				name),
			catalyst:       "Seasonal patterns",
			risk:           Low,
			expectedReturn: "Index returns (varies by market)",
		})
	}

	sort.SliceStable(b.trades, func(i, j int) bool {
		a, c := b.trades[i], b.trades[j]
		if ca, cc := confidenceRank[a.Confidence], confidenceRank[c.Confidence]; ca != cc {
			return ca < cc
		}
		return actionRank[a.Action] < actionRank[c.Action]
	})
	return b.trades
}

func floor(v float64) int {
	return int(math.Floor(v))
}

func returnRange(low, lowCap, high, highCap int) string {
	return fmt.Sprintf("+%d%% to +%d%%", min(low, lowCap), min(high, highCap))
}
