package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellRecord is the realized side of a lot: a full or partial sale,
// with the KRW profit locked in at sell time.
type SellRecord struct {
	ID               string
	InvestmentID     string
	InvestmentNumber int
	Currency         LotCurrency
	SellDate         time.Time
	PurchaseRate     decimal.Decimal
	SellRate         decimal.Decimal
	Amount           decimal.Decimal
	SellKRW          decimal.Decimal
	ProfitKRW        decimal.Decimal
	ExchangeName     string
	CreatedAt        time.Time
}
