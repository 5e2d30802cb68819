package analysis

import (
	"strings"

	"github.com/i474232898/weather-trading-insights/internal/weather"
)

// RegionProfile is the market context a location trades in.
type RegionProfile struct {
	Region             string   `json:"region"`
	Market             string   `json:"market"`
	Currency           string   `json:"currency"`
	CommodityRelevance []string `json:"commodityRelevance"`
	Country            string   `json:"country,omitempty"`
}

// Relevant reports whether any of tags is in the profile's commodity set.
func (p RegionProfile) Relevant(tags ...string) bool {
	for _, have := range p.CommodityRelevance {
		for _, want := range tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

type box struct {
	minLon, maxLon float64
	minLat, maxLat float64
}

func (b *box) contains(lat, lon float64) bool {
	return b != nil && lon >= b.minLon && lon <= b.maxLon && lat >= b.minLat && lat <= b.maxLat
}

type regionRule struct {
	countries   []string
	bounds      *box
	region      string
	market      string
	currency    string
	commodities []string
}

func (r regionRule) matches(country string, lat, lon float64) bool {
	for _, c := range r.countries {
		if c == country {
			return true
		}
	}
	return r.bounds.contains(lat, lon)
}

// Evaluated in order; the first match wins. The UK entry can never match
// because the Europe allowlist already names the UK.
var regionRules = []regionRule{
	{
		countries:   []string{"united states", "usa", "us"},
		bounds:      &box{-130, -60, 25, 50},
		region:      "North America",
		market:      "US",
		currency:    "USD",
		commodities: []string{"corn", "soybeans", "wheat", "natural_gas", "oil"},
	},
	{
		countries:   []string{"canada"},
		bounds:      &box{-140, -50, 50, 85},
		region:      "North America",
		market:      "Canada",
		currency:    "CAD",
		commodities: []string{"wheat", "canola", "natural_gas", "oil", "lumber"},
	},
	{
		countries: []string{
			"germany", "france", "italy", "spain", "united kingdom", "uk",
			"netherlands", "belgium", "austria", "switzerland", "poland",
			"sweden", "norway", "denmark", "finland", "ireland", "portugal",
			"greece", "czech republic", "hungary",
		},
		bounds:      &box{-10, 40, 35, 70},
		region:      "Europe",
		market:      "EU",
		currency:    "EUR",
		commodities: []string{"wheat", "natural_gas", "wine", "olive_oil"},
	},
	{
		countries:   []string{"united kingdom", "uk"},
		region:      "Europe",
		market:      "UK",
		currency:    "GBP",
		commodities: []string{"wheat", "natural_gas", "barley"},
	},
	{
		countries:   []string{"japan"},
		bounds:      &box{129, 146, 31, 46},
		region:      "Asia Pacific",
		market:      "Japan",
		currency:    "JPY",
		commodities: []string{"rice", "natural_gas", "lng"},
	},
	{
		countries:   []string{"china"},
		bounds:      &box{73, 135, 18, 54},
		region:      "Asia Pacific",
		market:      "China",
		currency:    "CNY",
		commodities: []string{"rice", "soybeans", "wheat", "coal", "pork"},
	},
	{
		countries:   []string{"australia"},
		bounds:      &box{113, 154, -44, -10},
		region:      "Asia Pacific",
		market:      "Australia",
		currency:    "AUD",
		commodities: []string{"wheat", "iron_ore", "coal", "wool", "cattle"},
	},
	{
		countries:   []string{"india"},
		bounds:      &box{68, 97, 8, 37},
		region:      "Asia Pacific",
		market:      "India",
		currency:    "INR",
		commodities: []string{"rice", "wheat", "cotton", "sugar", "tea"},
	},
	{
		countries:   []string{"brazil"},
		bounds:      &box{-74, -34, -34, 5},
		region:      "Latin America",
		market:      "Brazil",
		currency:    "BRL",
		commodities: []string{"coffee", "soybeans", "sugar", "orange_juice", "cattle"},
	},
	{
		bounds:      &box{-120, -34, -56, 33},
		region:      "Latin America",
		market:      "LatAm",
		currency:    "USD",
		commodities: []string{"coffee", "sugar", "grains", "copper"},
	},
	{
		countries: []string{
			"saudi arabia", "uae", "united arab emirates", "qatar", "kuwait",
			"iran", "iraq", "israel",
		},
		bounds:      &box{25, 65, 12, 42},
		region:      "Middle East",
		market:      "MENA",
		currency:    "USD",
		commodities: []string{"oil", "natural_gas", "dates"},
	},
	{
		bounds:      &box{-20, 55, -35, 37},
		region:      "Africa",
		market:      "Africa",
		currency:    "USD",
		commodities: []string{"cocoa", "coffee", "oil", "gold", "cotton"},
	},
	{
		bounds:      &box{90, 140, -10, 25},
		region:      "Asia Pacific",
		market:      "SEA",
		currency:    "USD",
		commodities: []string{"rice", "palm_oil", "rubber", "coffee"},
	},
}

var globalRule = regionRule{
	region:      "Global",
	market:      "Global",
	currency:    "USD",
	commodities: []string{"oil", "gold", "grains"},
}

// ClassifyRegion maps a location to its market context. The country name is
// compared case-insensitively; coordinates are tested against inclusive boxes.
func ClassifyRegion(loc weather.Location) RegionProfile {
	country := strings.ToLower(loc.Country)

	rule := globalRule
	for _, r := range regionRules {
		if r.matches(country, loc.Latitude, loc.Longitude) {
			rule = r
			break
		}
	}

	commodities := make([]string, len(rule.commodities))
	copy(commodities, rule.commodities)

	return RegionProfile{
		Region:             rule.region,
		Market:             rule.market,
		Currency:           rule.currency,
		CommodityRelevance: commodities,
		Country:            loc.Country,
	}
}
