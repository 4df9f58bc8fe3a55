package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LotCurrency string

const (
	LotUSD LotCurrency = "USD"
	LotJPY LotCurrency = "JPY"
)

func (c LotCurrency) Valid() bool { return c == LotUSD || c == LotJPY }

// Instrument returns the rate instrument a lot is valued against.
func (c LotCurrency) Instrument() Instrument {
	if c == LotJPY {
		return JPYKRW
	}
	return USDKRW
}

// Investment is one foreign-currency lot bought against KRW.
type Investment struct {
	ID           string
	Currency     LotCurrency
	Number       int
	PurchaseDate time.Time
	Amount       decimal.Decimal // in the lot currency
	Rate         decimal.Decimal // KRW per unit at purchase
	PurchaseKRW  decimal.Decimal
	ExchangeName string
	CreatedAt    time.Time
}
