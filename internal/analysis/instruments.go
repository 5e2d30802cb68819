package analysis

// Sector keys used by the trade rules and the instrument table.
const (
	SectorEnergy      = "energy"
	SectorNaturalGas  = "naturalGas"
	SectorUtilities   = "utilities"
	SectorAgriculture = "agriculture"
	SectorCorn        = "corn"
	SectorSoybeans    = "soybeans"
	SectorWheat       = "wheat"
	SectorCoffee      = "coffee"
	SectorSugar       = "sugar"
	SectorBroadMarket = "broadMarket"
	SectorRetail      = "retail"
)

const globalMarket = "Global"

// Instrument is a tradable vehicle for a sector in a market.
type Instrument struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Exchange string `json:"exchange,omitempty"`
}

var instrumentTable = map[string]map[string][]Instrument{
	"US": {
		SectorEnergy: {
			{Ticker: "XLE", Name: "Energy Select Sector SPDR Fund", Type: "ETF"},
			{Ticker: "VDE", Name: "Vanguard Energy ETF", Type: "ETF"},
		},
		SectorNaturalGas: {
			{Ticker: "UNG", Name: "United States Natural Gas Fund", Type: "ETF"},
			{Ticker: "BOIL", Name: "ProShares Ultra Bloomberg Natural Gas", Type: "ETF"},
		},
		SectorUtilities: {
			{Ticker: "XLU", Name: "Utilities Select Sector SPDR Fund", Type: "ETF"},
			{Ticker: "VPU", Name: "Vanguard Utilities ETF", Type: "ETF"},
		},
		SectorAgriculture: {
			{Ticker: "DBA", Name: "Invesco DB Agriculture Fund", Type: "ETF"},
			{Ticker: "MOO", Name: "VanEck Agribusiness ETF", Type: "ETF"},
		},
		SectorCorn:     {{Ticker: "CORN", Name: "Teucrium Corn Fund", Type: "ETF"}},
		SectorSoybeans: {{Ticker: "SOYB", Name: "Teucrium Soybean Fund", Type: "ETF"}},
		SectorWheat:    {{Ticker: "WEAT", Name: "Teucrium Wheat Fund", Type: "ETF"}},
		SectorBroadMarket: {
			{Ticker: "SPY", Name: "SPDR S&P 500 ETF", Type: "ETF"},
			{Ticker: "VTI", Name: "Vanguard Total Stock Market ETF", Type: "ETF"},
		},
		SectorRetail: {
			{Ticker: "XRT", Name: "SPDR S&P Retail ETF", Type: "ETF"},
			{Ticker: "RTH", Name: "VanEck Retail ETF", Type: "ETF"},
		},
	},
	"EU": {
		SectorEnergy: {
			{Ticker: "IEUR.DE", Name: "iShares STOXX Europe 600 Oil & Gas", Type: "ETF", Exchange: "Xetra"},
			{Ticker: "SX6P.DE", Name: "STOXX Europe 600 Oil & Gas", Type: "Index", Exchange: "Eurex"},
		},
		SectorNaturalGas: {
			{Ticker: "TTF", Name: "Dutch TTF Natural Gas Futures", Type: "Futures", Exchange: "ICE"},
			{Ticker: "MNGA.L", Name: "WisdomTree Natural Gas", Type: "ETC", Exchange: "LSE"},
		},
		SectorUtilities: {
			{Ticker: "EXH5.DE", Name: "iShares STOXX Europe 600 Utilities", Type: "ETF", Exchange: "Xetra"},
			{Ticker: "SX6E", Name: "STOXX Europe 600 Utilities", Type: "Index", Exchange: "Eurex"},
		},
		SectorAgriculture: {
			{Ticker: "APTS.L", Name: "iShares Agribusiness UCITS ETF", Type: "ETF", Exchange: "LSE"},
			{Ticker: "FAGR.PA", Name: "Lyxor MSCI World Agriculture", Type: "ETF", Exchange: "Euronext"},
		},
		SectorWheat: {
			{Ticker: "WEAT.L", Name: "WisdomTree Wheat", Type: "ETC", Exchange: "LSE"},
			{Ticker: "EBM", Name: "European Milling Wheat Futures", Type: "Futures", Exchange: "Euronext"},
		},
		SectorBroadMarket: {
			{Ticker: "MEUD.L", Name: "iShares Core MSCI Europe UCITS", Type: "ETF", Exchange: "LSE"},
			{Ticker: "VGK", Name: "Vanguard FTSE Europe ETF", Type: "ETF", Exchange: "NYSE"},
		},
	},
	"UK": {
		SectorEnergy: {
			{Ticker: "ISF.L", Name: "iShares Core FTSE 100 (Energy exposure)", Type: "ETF", Exchange: "LSE"},
			{Ticker: "BP.L", Name: "BP plc", Type: "Stock", Exchange: "LSE"},
		},
		SectorNaturalGas: {
			{Ticker: "NGAS.L", Name: "WisdomTree Natural Gas", Type: "ETC", Exchange: "LSE"},
			{Ticker: "NBP", Name: "UK NBP Natural Gas Futures", Type: "Futures", Exchange: "ICE"},
		},
		SectorUtilities: {
			{Ticker: "UKX", Name: "FTSE 100 Utilities Sector", Type: "Index", Exchange: "LSE"},
			{Ticker: "NG.L", Name: "National Grid plc", Type: "Stock", Exchange: "LSE"},
		},
		SectorBroadMarket: {
			{Ticker: "ISF.L", Name: "iShares Core FTSE 100", Type: "ETF", Exchange: "LSE"},
			{Ticker: "VUKE.L", Name: "Vanguard FTSE 100 UCITS ETF", Type: "ETF", Exchange: "LSE"},
		},
	},
	"Japan": {
		SectorEnergy: {
			{Ticker: "1605.T", Name: "INPEX Corporation", Type: "Stock", Exchange: "TSE"},
			{Ticker: "1662.T", Name: "JGC Holdings", Type: "Stock", Exchange: "TSE"},
		},
		SectorUtilities: {
			{Ticker: "9501.T", Name: "Tokyo Electric Power", Type: "Stock", Exchange: "TSE"},
			{Ticker: "9502.T", Name: "Chubu Electric Power", Type: "Stock", Exchange: "TSE"},
		},
		SectorBroadMarket: {
			{Ticker: "EWJ", Name: "iShares MSCI Japan ETF", Type: "ETF", Exchange: "NYSE"},
			{Ticker: "1306.T", Name: "TOPIX ETF", Type: "ETF", Exchange: "TSE"},
		},
	},
	"Australia": {
		SectorEnergy: {
			{Ticker: "XEJ.AX", Name: "S&P/ASX 200 Energy", Type: "ETF", Exchange: "ASX"},
			{Ticker: "WDS.AX", Name: "Woodside Energy", Type: "Stock", Exchange: "ASX"},
		},
		SectorUtilities: {
			{Ticker: "XUJ.AX", Name: "S&P/ASX 200 Utilities", Type: "ETF", Exchange: "ASX"},
			{Ticker: "AGL.AX", Name: "AGL Energy", Type: "Stock", Exchange: "ASX"},
		},
		SectorWheat: {
			{Ticker: "WM", Name: "ASX Wheat Futures", Type: "Futures", Exchange: "ASX"},
			{Ticker: "GNC.AX", Name: "GrainCorp Limited", Type: "Stock", Exchange: "ASX"},
		},
		SectorBroadMarket: {
			{Ticker: "STW.AX", Name: "SPDR S&P/ASX 200", Type: "ETF", Exchange: "ASX"},
			{Ticker: "VAS.AX", Name: "Vanguard Australian Shares", Type: "ETF", Exchange: "ASX"},
		},
	},
	"Brazil": {
		SectorCoffee: {
			{Ticker: "KC", Name: "Coffee C Futures", Type: "Futures", Exchange: "ICE"},
			{Ticker: "JO", Name: "iPath Bloomberg Coffee ETN", Type: "ETN", Exchange: "NYSE"},
		},
		SectorSoybeans: {
			{Ticker: "SOJA3.SA", Name: "Boa Safra Sementes", Type: "Stock", Exchange: "B3"},
			{Ticker: "SOYB", Name: "Teucrium Soybean Fund", Type: "ETF", Exchange: "NYSE"},
		},
		SectorSugar: {
			{Ticker: "SB", Name: "Sugar #11 Futures", Type: "Futures", Exchange: "ICE"},
			{Ticker: "CANE", Name: "Teucrium Sugar Fund", Type: "ETF", Exchange: "NYSE"},
		},
		SectorBroadMarket: {
			{Ticker: "EWZ", Name: "iShares MSCI Brazil ETF", Type: "ETF", Exchange: "NYSE"},
			{Ticker: "BOVA11.SA", Name: "iShares Ibovespa", Type: "ETF", Exchange: "B3"},
		},
	},
	"China": {
		SectorBroadMarket: {
			{Ticker: "FXI", Name: "iShares China Large-Cap ETF", Type: "ETF", Exchange: "NYSE"},
			{Ticker: "MCHI", Name: "iShares MSCI China ETF", Type: "ETF", Exchange: "NASDAQ"},
		},
		SectorAgriculture: {
			{Ticker: "CHAU", Name: "Direxion Daily CSI China Internet Bull", Type: "ETF", Exchange: "NYSE"},
		},
	},
	"India": {
		SectorBroadMarket: {
			{Ticker: "INDA", Name: "iShares MSCI India ETF", Type: "ETF", Exchange: "NASDAQ"},
			{Ticker: "PIN", Name: "Invesco India ETF", Type: "ETF", Exchange: "NYSE"},
		},
		SectorUtilities: {
			{Ticker: "NTPC.NS", Name: "NTPC Limited", Type: "Stock", Exchange: "NSE"},
			{Ticker: "POWERGRID.NS", Name: "Power Grid Corporation", Type: "Stock", Exchange: "NSE"},
		},
	},
	"Canada": {
		SectorEnergy: {
			{Ticker: "XEG.TO", Name: "iShares S&P/TSX Capped Energy", Type: "ETF", Exchange: "TSX"},
			{Ticker: "ENB.TO", Name: "Enbridge Inc", Type: "Stock", Exchange: "TSX"},
		},
		SectorNaturalGas: {
			{Ticker: "HNU.TO", Name: "BetaPro Natural Gas Bull", Type: "ETF", Exchange: "TSX"},
			{Ticker: "TRP.TO", Name: "TC Energy Corporation", Type: "Stock", Exchange: "TSX"},
		},
		SectorUtilities: {
			{Ticker: "XUT.TO", Name: "iShares S&P/TSX Capped Utilities", Type: "ETF", Exchange: "TSX"},
			{Ticker: "FTS.TO", Name: "Fortis Inc", Type: "Stock", Exchange: "TSX"},
		},
		SectorWheat: {
			{Ticker: "WCE", Name: "Winnipeg Commodity Exchange Wheat", Type: "Futures", Exchange: "ICE"},
		},
		SectorBroadMarket: {
			{Ticker: "XIU.TO", Name: "iShares S&P/TSX 60 Index", Type: "ETF", Exchange: "TSX"},
			{Ticker: "XIC.TO", Name: "iShares Core S&P/TSX", Type: "ETF", Exchange: "TSX"},
		},
	},
	globalMarket: {
		SectorEnergy: {
			{Ticker: "IXC", Name: "iShares Global Energy ETF", Type: "ETF", Exchange: "NYSE"},
		},
		SectorUtilities: {
			{Ticker: "JXI", Name: "iShares Global Utilities ETF", Type: "ETF", Exchange: "NYSE"},
		},
		SectorAgriculture: {
			{Ticker: "DBA", Name: "Invesco DB Agriculture Fund", Type: "ETF", Exchange: "NYSE"},
			{Ticker: "RJA", Name: "Elements Rogers Agriculture ETN", Type: "ETN", Exchange: "NYSE"},
		},
		SectorBroadMarket: {
			{Ticker: "VT", Name: "Vanguard Total World Stock ETF", Type: "ETF", Exchange: "NYSE"},
			{Ticker: "ACWI", Name: "iShares MSCI ACWI ETF", Type: "ETF", Exchange: "NASDAQ"},
		},
	},
}

// LookupInstrument returns the primary instrument for sector in market,
// falling back to the global table. ok is false when neither has one.
func LookupInstrument(market, sector string) (Instrument, bool) {
	if list := instrumentTable[market][sector]; len(list) > 0 {
		return list[0], true
	}
	if list := instrumentTable[globalMarket][sector]; len(list) > 0 {
		return list[0], true
	}
	return Instrument{}, false
}
