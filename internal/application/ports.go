package application

import (
	"context"
	"time"

	"fxfolio-service/internal/domain"

	"github.com/shopspring/decimal"
)

// BarStore is the history store: keyed, append-mostly daily OHLC bars.
type BarStore interface {
	// LatestDate returns the maximum stored date for the instrument,
	// or domain.ErrNoData when no rows exist.
	LatestDate(ctx context.Context, instrument domain.Instrument) (time.Time, error)
	// ReadRange returns stored bars with date in [from, to], ascending.
	// An empty result is not an error.
	ReadRange(ctx context.Context, instrument domain.Instrument, from, to time.Time) ([]domain.Bar, error)
	// UpsertMany writes bars in one batch; rows whose (instrument, date)
	// already exist are left untouched. Returns the number actually written.
	UpsertMany(ctx context.Context, bars []domain.Bar) (int64, error)
}

// MarketProvider is the external market-data source. Treated as untrusted:
// any call may fail and callers must degrade gracefully.
type MarketProvider interface {
	// FetchDaily returns daily bars for [from, to]. Exactly one attempt;
	// the caller's next invocation is the retry mechanism.
	FetchDaily(ctx context.Context, instrument domain.Instrument, from, to time.Time) ([]domain.Bar, error)
	// Quote returns the live rate. Never cached.
	Quote(ctx context.Context, instrument domain.Instrument) (domain.Rate, error)
}

type InvestmentRepo interface {
	Create(ctx context.Context, inv *domain.Investment) error
	List(ctx context.Context, currency domain.LotCurrency) ([]domain.Investment, error)
	GetByID(ctx context.Context, id string) (domain.Investment, error)
	UpdateAmount(ctx context.Context, id string, amount, purchaseKRW decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

type SellRecordRepo interface {
	Create(ctx context.Context, rec *domain.SellRecord) error
	List(ctx context.Context, currency domain.LotCurrency) ([]domain.SellRecord, error)
	Delete(ctx context.Context, id string) error
}

// HistoryFetcher is implemented by HistoryService and by the Redis
// memoization decorator wrapping it.
type HistoryFetcher interface {
	FetchWindow(ctx context.Context, months int, instruments []domain.Instrument) ([]HistoryResult, error)
}
