package httpserver

import (
	"context"
	"sort"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var _ application.BarStore = (*fakeBarStore)(nil)
var _ application.MarketProvider = (*fakeProvider)(nil)
var _ application.InvestmentRepo = (*fakeInvestmentRepo)(nil)
var _ application.SellRecordRepo = (*fakeSellRecordRepo)(nil)

type barKey struct {
	inst domain.Instrument
	date time.Time
}

type fakeBarStore struct {
	bars map[barKey]domain.Bar
}

func (f *fakeBarStore) LatestDate(_ context.Context, inst domain.Instrument) (time.Time, error) {
	var latest time.Time
	found := false
	for k := range f.bars {
		if k.inst == inst && (!found || k.date.After(latest)) {
			latest = k.date
			found = true
		}
	}
	if !found {
		return time.Time{}, domain.ErrNoData
	}
	return latest, nil
}

func (f *fakeBarStore) ReadRange(_ context.Context, inst domain.Instrument, from, to time.Time) ([]domain.Bar, error) {
	var out []domain.Bar
	for k, b := range f.bars {
		if k.inst == inst && !k.date.Before(from) && !k.date.After(to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeBarStore) UpsertMany(_ context.Context, bars []domain.Bar) (int64, error) {
	if f.bars == nil {
		f.bars = map[barKey]domain.Bar{}
	}
	var written int64
	for _, b := range bars {
		k := barKey{inst: b.Instrument, date: domain.Day(b.Date)}
		if _, exists := f.bars[k]; exists {
			continue
		}
		f.bars[k] = b
		written++
	}
	return written, nil
}

type fakeProvider struct {
	price decimal.Decimal
}

func (f *fakeProvider) FetchDaily(_ context.Context, inst domain.Instrument, from, to time.Time) ([]domain.Bar, error) {
	var out []domain.Bar
	for d := domain.Day(from); !d.After(domain.Day(to)); d = d.AddDate(0, 0, 1) {
		out = append(out, domain.Bar{Instrument: inst, Date: d, Open: f.price, High: f.price, Low: f.price, Close: f.price})
	}
	return out, nil
}

func (f *fakeProvider) Quote(_ context.Context, inst domain.Instrument) (domain.Rate, error) {
	return domain.Rate{Instrument: inst, Price: f.price, AsOf: time.Now().UTC()}, nil
}

type fakeInvestmentRepo struct {
	lots map[string]domain.Investment
	next int
}

func (f *fakeInvestmentRepo) Create(_ context.Context, inv *domain.Investment) error {
	if f.lots == nil {
		f.lots = map[string]domain.Investment{}
	}
	f.next++
	inv.ID = uuid.NewString()
	inv.Number = f.next
	inv.CreatedAt = time.Now()
	f.lots[inv.ID] = *inv
	return nil
}

func (f *fakeInvestmentRepo) List(_ context.Context, currency domain.LotCurrency) ([]domain.Investment, error) {
	var out []domain.Investment
	for _, inv := range f.lots {
		if currency == "" || inv.Currency == currency {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeInvestmentRepo) GetByID(_ context.Context, id string) (domain.Investment, error) {
	inv, ok := f.lots[id]
	if !ok {
		return domain.Investment{}, application.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvestmentRepo) UpdateAmount(_ context.Context, id string, amount, purchaseKRW decimal.Decimal) error {
	inv, ok := f.lots[id]
	if !ok {
		return application.ErrNotFound
	}
	inv.Amount = amount
	inv.PurchaseKRW = purchaseKRW
	f.lots[id] = inv
	return nil
}

func (f *fakeInvestmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.lots[id]; !ok {
		return application.ErrNotFound
	}
	delete(f.lots, id)
	return nil
}

type fakeSellRecordRepo struct {
	recs map[string]domain.SellRecord
}

func (f *fakeSellRecordRepo) Create(_ context.Context, rec *domain.SellRecord) error {
	if f.recs == nil {
		f.recs = map[string]domain.SellRecord{}
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	f.recs[rec.ID] = *rec
	return nil
}

func (f *fakeSellRecordRepo) List(_ context.Context, currency domain.LotCurrency) ([]domain.SellRecord, error) {
	var out []domain.SellRecord
	for _, rec := range f.recs {
		if currency == "" || rec.Currency == currency {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SellDate.Before(out[j].SellDate) })
	return out, nil
}

func (f *fakeSellRecordRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.recs[id]; !ok {
		return application.ErrNotFound
	}
	delete(f.recs, id)
	return nil
}
