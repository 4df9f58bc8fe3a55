package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a live, uncached exchange-rate observation.
type Rate struct {
	Instrument Instrument
	Price      decimal.Decimal
	AsOf       time.Time
	// Stale marks a rate served from the last stored close because the
	// live provider was unavailable.
	Stale bool
}
