package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/weather-trading-insights/internal/weather"
)

func TestClassifyRegion(t *testing.T) {
	tests := []struct {
		name   string
		loc    weather.Location
		market string
		region string
	}{
		{"country allowlist", weather.Location{Country: "USA", Latitude: 64.8, Longitude: -147.7}, "US", "North America"},
		{"us bounding box", weather.Location{Latitude: 40, Longitude: -100}, "US", "North America"},
		{"inclusive corner", weather.Location{Latitude: 25, Longitude: -130}, "US", "North America"},
		{"canada box", weather.Location{Latitude: 55, Longitude: -100}, "Canada", "North America"},
		{"uk resolves to europe", weather.Location{Country: "United Kingdom", Latitude: 51.5, Longitude: -0.12}, "EU", "Europe"},
		{"japan box", weather.Location{Latitude: 35.7, Longitude: 139.7}, "Japan", "Asia Pacific"},
		{"australia", weather.Location{Country: "Australia", Latitude: -33.9, Longitude: 151.2}, "Australia", "Asia Pacific"},
		{"brazil", weather.Location{Country: "Brazil", Latitude: -23.5, Longitude: -46.6}, "Brazil", "Latin America"},
		{"mexico falls to latam", weather.Location{Country: "Mexico", Latitude: 19.4, Longitude: -99.1}, "LatAm", "Latin America"},
		{"middle east box", weather.Location{Latitude: 25.2, Longitude: 55.3}, "MENA", "Middle East"},
		{"africa box", weather.Location{Latitude: 6.5, Longitude: 3.4}, "Africa", "Africa"},
		{"southeast asia box", weather.Location{Latitude: 1.35, Longitude: 103.8}, "SEA", "Asia Pacific"},
		{"open pacific", weather.Location{Latitude: 0, Longitude: -160}, "Global", "Global"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := ClassifyRegion(tt.loc)
			assert.Equal(t, tt.market, profile.Market)
			assert.Equal(t, tt.region, profile.Region)
			assert.Equal(t, tt.loc.Country, profile.Country)
		})
	}
}

func TestClassifyRegionCommodities(t *testing.T) {
	brazil := ClassifyRegion(weather.Location{Country: "brazil"})
	assert.True(t, brazil.Relevant("coffee"))
	assert.False(t, brazil.Relevant("corn", "grains"))
	assert.Equal(t, "BRL", brazil.Currency)

	global := ClassifyRegion(weather.Location{Latitude: 0, Longitude: -160})
	assert.Equal(t, []string{"oil", "gold", "grains"}, global.CommodityRelevance)
}

func TestClassifyRegionReturnsIndependentCopies(t *testing.T) {
	first := ClassifyRegion(weather.Location{Country: "Japan"})
	first.CommodityRelevance[0] = "mutated"

	second := ClassifyRegion(weather.Location{Country: "Japan"})
	assert.Equal(t, "rice", second.CommodityRelevance[0])
}

func TestLookupInstrumentFallsBackToGlobal(t *testing.T) {
	inst, ok := LookupInstrument("US", SectorEnergy)
	assert.True(t, ok)
	assert.Equal(t, "XLE", inst.Ticker)
	assert.Empty(t, inst.Exchange)

	inst, ok = LookupInstrument("Japan", SectorAgriculture)
	assert.True(t, ok)
	assert.Equal(t, "DBA", inst.Ticker)

	inst, ok = LookupInstrument("MENA", SectorBroadMarket)
	assert.True(t, ok)
	assert.Equal(t, "VT", inst.Ticker)

	_, ok = LookupInstrument("LatAm", SectorCorn)
	assert.False(t, ok)
}
