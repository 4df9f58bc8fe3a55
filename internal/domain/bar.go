package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily OHLC observation for an instrument. Prices carry six
// fractional digits, matching the exchange_rate_history schema. A Bar is
// written once and never updated.
type Bar struct {
	Instrument Instrument
	Date       time.Time // civil date, UTC midnight
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
	CreatedAt  time.Time
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
