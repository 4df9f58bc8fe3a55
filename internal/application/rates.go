package application

import (
	"context"
	"fmt"
	"time"

	"fxfolio-service/internal/domain"

	"go.uber.org/zap"
)

// RatesService is the live current-rate path. It always hits the provider
// (never the history cache); when the provider fails for an instrument the
// latest stored close is served instead, flagged stale.
type RatesService struct {
	provider MarketProvider
	store    BarStore
	clock    Clock
	log      *zap.Logger
}

func NewRatesService(provider MarketProvider, store BarStore, opts ...RatesOption) *RatesService {
	s := &RatesService{provider: provider, store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

type RatesOption func(*RatesService)

func WithRatesClock(c Clock) RatesOption { return func(s *RatesService) { s.clock = c } }
func WithRatesLogger(l *zap.Logger) RatesOption { return func(s *RatesService) { s.log = l } }

// CurrentRates resolves live rates for the requested instruments. Derived
// instruments are computed from the live USD_JPY and USD_KRW rates.
func (s *RatesService) CurrentRates(ctx context.Context, instruments []domain.Instrument) ([]domain.Rate, error) {
	if len(instruments) == 0 {
		instruments = domain.AllInstruments()
	}
	needBase := map[domain.Instrument]bool{}
	for _, inst := range instruments {
		if !inst.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrBadRequest, inst)
		}
		if inst.Derived() {
			needBase[domain.USDJPY] = true
			needBase[domain.USDKRW] = true
		} else {
			needBase[inst] = true
		}
	}

	base := map[domain.Instrument]domain.Rate{}
	for inst := range needBase {
		r, err := s.liveOrStored(ctx, inst)
		if err != nil {
			return nil, err
		}
		base[inst] = r
	}

	out := make([]domain.Rate, 0, len(instruments))
	for _, inst := range instruments {
		if !inst.Derived() {
			out = append(out, base[inst])
			continue
		}
		out = append(out, deriveRate(inst, base[domain.USDJPY], base[domain.USDKRW]))
	}
	return out, nil
}

func (s *RatesService) liveOrStored(ctx context.Context, inst domain.Instrument) (domain.Rate, error) {
	r, err := s.provider.Quote(ctx, inst)
	if err == nil {
		return r, nil
	}
	s.log.Warn("live_quote_failed", zap.String("instrument", string(inst)), zap.Error(err))

	latest, serr := s.store.LatestDate(ctx, inst)
	if serr != nil {
		// No live rate and no stored baseline: nothing meaningful to serve.
		return domain.Rate{}, fmt.Errorf("quote %s: %w", inst, err)
	}
	bars, serr := s.store.ReadRange(ctx, inst, latest, latest)
	if serr != nil || len(bars) == 0 {
		return domain.Rate{}, fmt.Errorf("quote %s: %w", inst, err)
	}
	last := bars[len(bars)-1]
	return domain.Rate{Instrument: inst, Price: last.Close, AsOf: last.Date, Stale: true}, nil
}

func deriveRate(inst domain.Instrument, usdJPY, usdKRW domain.Rate) domain.Rate {
	out := domain.Rate{Instrument: inst, Stale: usdJPY.Stale || usdKRW.Stale}
	switch inst {
	case domain.JXY:
		out.Price = hundred.DivRound(usdJPY.Price, derivedScale)
		out.AsOf = usdJPY.AsOf
	case domain.JPYKRW:
		out.Price = usdKRW.Price.DivRound(usdJPY.Price, derivedScale)
		out.AsOf = laterTime(usdJPY, usdKRW)
	}
	return out
}

func laterTime(a, b domain.Rate) time.Time {
	if a.AsOf.After(b.AsOf) {
		return a.AsOf
	}
	return b.AsOf
}
