package domain

type Instrument string

// The tracked instrument set is closed. Base instruments map 1:1 to a
// provider ticker; derived instruments are computed from USD_JPY and
// USD_KRW and are never fetched directly.
const (
	EURUSD Instrument = "EUR_USD"
	USDJPY Instrument = "USD_JPY"
	GBPUSD Instrument = "GBP_USD"
	USDCAD Instrument = "USD_CAD"
	USDSEK Instrument = "USD_SEK"
	USDCHF Instrument = "USD_CHF"
	USDKRW Instrument = "USD_KRW"
	JPYKRW Instrument = "JPY_KRW"
	JXY    Instrument = "JXY"
)

var providerTickers = map[Instrument]string{
	EURUSD: "EURUSD=X",
	USDJPY: "JPY=X",
	GBPUSD: "GBPUSD=X",
	USDCAD: "CAD=X",
	USDSEK: "SEK=X",
	USDCHF: "CHF=X",
	USDKRW: "KRW=X",
}

var derived = map[Instrument]bool{
	JPYKRW: true,
	JXY:    true,
}

func (i Instrument) Valid() bool {
	_, base := providerTickers[i]
	return base || derived[i]
}

func (i Instrument) Derived() bool { return derived[i] }

// Ticker returns the provider symbol for a base instrument.
func (i Instrument) Ticker() (string, bool) {
	t, ok := providerTickers[i]
	return t, ok
}

// AllInstruments returns every tracked instrument, base pairs first.
func AllInstruments() []Instrument {
	return []Instrument{EURUSD, USDJPY, GBPUSD, USDCAD, USDSEK, USDCHF, USDKRW, JPYKRW, JXY}
}
