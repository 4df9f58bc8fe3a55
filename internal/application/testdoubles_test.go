package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fxfolio-service/internal/domain"

	"github.com/shopspring/decimal"
)

type fakeClock struct {
	t time.Time
}

func (f fakeClock) Now() time.Time { return f.t }

type barKey struct {
	inst domain.Instrument
	date time.Time
}

type fakeBarStore struct {
	bars map[barKey]domain.Bar
	// errs force failures per method for store-outage scenarios.
	latestErr error
	readErr   error
	upsertErr error

	upsertCalls [][]domain.Bar
}

func newFakeBarStore() *fakeBarStore {
	return &fakeBarStore{bars: map[barKey]domain.Bar{}}
}

func (f *fakeBarStore) seed(inst domain.Instrument, dates ...time.Time) {
	price := decimal.NewFromInt(1000)
	for _, d := range dates {
		d = domain.Day(d)
		f.bars[barKey{inst, d}] = domain.Bar{
			Instrument: inst, Date: d,
			Open: price, High: price, Low: price, Close: price,
		}
	}
}

func (f *fakeBarStore) LatestDate(_ context.Context, inst domain.Instrument) (time.Time, error) {
	if f.latestErr != nil {
		return time.Time{}, f.latestErr
	}
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
	if f.readErr != nil {
		return nil, f.readErr
	}
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
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upsertCalls = append(f.upsertCalls, bars)
	var written int64
	for _, b := range bars {
		k := barKey{b.Instrument, domain.Day(b.Date)}
		if _, exists := f.bars[k]; exists {
			continue
		}
		f.bars[k] = b
		written++
	}
	return written, nil
}

type fetchCall struct {
	inst     domain.Instrument
	from, to time.Time
}

type fakeProvider struct {
	price  decimal.Decimal
	err    error
	errFor map[domain.Instrument]error

	fetches []fetchCall
	quotes  []domain.Instrument
}

func newFakeProvider(price float64) *fakeProvider {
	return &fakeProvider{price: decimal.NewFromFloat(price)}
}

func (f *fakeProvider) failFor(inst domain.Instrument, err error) {
	if f.errFor == nil {
		f.errFor = map[domain.Instrument]error{}
	}
	f.errFor[inst] = err
}

func (f *fakeProvider) FetchDaily(_ context.Context, inst domain.Instrument, from, to time.Time) ([]domain.Bar, error) {
	f.fetches = append(f.fetches, fetchCall{inst: inst, from: domain.Day(from), to: domain.Day(to)})
	if f.err != nil {
		return nil, f.err
	}
	if err := f.errFor[inst]; err != nil {
		return nil, err
	}
	var out []domain.Bar
	for d := domain.Day(from); !d.After(domain.Day(to)); d = d.AddDate(0, 0, 1) {
		out = append(out, domain.Bar{
			Instrument: inst, Date: d,
			Open: f.price, High: f.price, Low: f.price, Close: f.price,
		})
	}
	return out, nil
}

func (f *fakeProvider) Quote(_ context.Context, inst domain.Instrument) (domain.Rate, error) {
	f.quotes = append(f.quotes, inst)
	if f.err != nil {
		return domain.Rate{}, f.err
	}
	if err := f.errFor[inst]; err != nil {
		return domain.Rate{}, err
	}
	return domain.Rate{Instrument: inst, Price: f.price, AsOf: time.Now().UTC()}, nil
}

func (f *fakeProvider) fetchesFor(inst domain.Instrument) []fetchCall {
	var out []fetchCall
	for _, c := range f.fetches {
		if c.inst == inst {
			out = append(out, c)
		}
	}
	return out
}

type fakeInvestmentRepo struct {
	lots map[string]domain.Investment
	next int

	deleted []string
	updated []string
}

func newFakeInvestmentRepo() *fakeInvestmentRepo {
	return &fakeInvestmentRepo{lots: map[string]domain.Investment{}}
}

func (f *fakeInvestmentRepo) Create(_ context.Context, inv *domain.Investment) error {
	f.next++
	if inv.ID == "" {
		inv.ID = fmt.Sprintf("inv-%d", f.next)
	}
	inv.Number = f.next
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
		return domain.Investment{}, ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvestmentRepo) UpdateAmount(_ context.Context, id string, amount, purchaseKRW decimal.Decimal) error {
	inv, ok := f.lots[id]
	if !ok {
		return ErrNotFound
	}
	inv.Amount = amount
	inv.PurchaseKRW = purchaseKRW
	f.lots[id] = inv
	f.updated = append(f.updated, id)
	return nil
}

func (f *fakeInvestmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.lots[id]; !ok {
		return ErrNotFound
	}
	delete(f.lots, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSellRecordRepo struct {
	recs      []domain.SellRecord
	createErr error
}

func (f *fakeSellRecordRepo) Create(_ context.Context, rec *domain.SellRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	rec.ID = "sell-1"
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *fakeSellRecordRepo) List(_ context.Context, currency domain.LotCurrency) ([]domain.SellRecord, error) {
	var out []domain.SellRecord
	for _, rec := range f.recs {
		if currency == "" || rec.Currency == currency {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeSellRecordRepo) Delete(_ context.Context, id string) error {
	for i, rec := range f.recs {
		if rec.ID == id {
			f.recs = append(f.recs[:i], f.recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
