package provider

import (
	"context"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.MarketProvider.
var _ application.MarketProvider = (*Fake)(nil)

// Fake serves a flat series at a fixed price; the dev default when no real
// provider is configured.
type Fake struct {
	price decimal.Decimal
}

func NewFake(price float64) *Fake { return &Fake{price: decimal.NewFromFloat(price)} }

func (f *Fake) FetchDaily(_ context.Context, instrument domain.Instrument, from, to time.Time) ([]domain.Bar, error) {
	var out []domain.Bar
	for d := domain.Day(from); !d.After(domain.Day(to)); d = d.AddDate(0, 0, 1) {
		out = append(out, domain.Bar{
			Instrument: instrument,
			Date:       d,
			Open:       f.price,
			High:       f.price,
			Low:        f.price,
			Close:      f.price,
		})
	}
	return out, nil
}

func (f *Fake) Quote(_ context.Context, instrument domain.Instrument) (domain.Rate, error) {
	return domain.Rate{
		Instrument: instrument,
		Price:      f.price,
		AsOf:       time.Now().UTC(),
	}, nil
}
