package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fxfolio-service/internal/domain"

	"go.uber.org/zap"
)

type RefreshStatus string

const (
	// StatusCached: latest stored date >= today, zero provider calls.
	StatusCached RefreshStatus = "cached"
	// StatusIncremental: only the suffix after the latest stored date was fetched.
	StatusIncremental RefreshStatus = "incremental"
	// StatusFull: nothing was stored, the whole window was fetched.
	StatusFull RefreshStatus = "full"
	// StatusStale: the provider failed, serving stored data only.
	StatusStale RefreshStatus = "stale"
)

// HistoryResult is one instrument's merged window plus how it was obtained.
type HistoryResult struct {
	Instrument domain.Instrument `json:"instrument"`
	Status     RefreshStatus     `json:"status"`
	Bars       []domain.Bar      `json:"bars"`
	// Error carries the provider failure message when Status is stale.
	Error string `json:"error,omitempty"`
}

// windowSlackDays widens the lookback start so month boundaries and market
// holidays at the window edge never truncate the series.
const windowSlackDays = 7

// HistoryService is the cache-aware fetcher: it serves lookback windows of
// daily bars, hitting the provider only for dates the store does not have.
type HistoryService struct {
	store    BarStore
	provider MarketProvider
	clock    Clock
	log      *zap.Logger
}

type HistoryOption func(*HistoryService)

func WithClock(c Clock) HistoryOption { return func(s *HistoryService) { s.clock = c } }
func WithLogger(l *zap.Logger) HistoryOption { return func(s *HistoryService) { s.log = l } }

func NewHistoryService(store BarStore, provider MarketProvider, opts ...HistoryOption) *HistoryService {
	s := &HistoryService{store: store, provider: provider}
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

var _ HistoryFetcher = (*HistoryService)(nil)

// FetchWindow returns the requested lookback window for each instrument.
// Instruments are handled independently: a provider failure for one yields a
// stale result for that instrument and does not affect the others. Store
// failures abort the whole call.
func (s *HistoryService) FetchWindow(ctx context.Context, months int, instruments []domain.Instrument) ([]HistoryResult, error) {
	if months <= 0 {
		months = 12
	}
	if len(instruments) == 0 {
		instruments = domain.AllInstruments()
	}
	for _, inst := range instruments {
		if !inst.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrBadRequest, inst)
		}
	}

	today := domain.Day(s.clock.Now())
	start := today.AddDate(0, -months, -windowSlackDays)

	// Derived instruments are computed from USD_JPY and USD_KRW, so those
	// bases are resolved even when not requested themselves.
	needBase := map[domain.Instrument]bool{}
	wantDerived := false
	for _, inst := range instruments {
		if inst.Derived() {
			wantDerived = true
		} else {
			needBase[inst] = true
		}
	}
	if wantDerived {
		needBase[domain.USDJPY] = true
		needBase[domain.USDKRW] = true
	}

	base := map[domain.Instrument]HistoryResult{}
	for inst := range needBase {
		res, err := s.fetchBase(ctx, inst, start, today)
		if err != nil {
			return nil, err
		}
		base[inst] = res
	}

	out := make([]HistoryResult, 0, len(instruments))
	for _, inst := range instruments {
		if !inst.Derived() {
			out = append(out, base[inst])
			continue
		}
		res, err := s.deriveOne(ctx, inst, base[domain.USDJPY], base[domain.USDKRW], today)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// fetchBase runs the per-instrument decision procedure: latest stored date
// decides between no fetch, an incremental suffix fetch, and a full pull.
func (s *HistoryService) fetchBase(ctx context.Context, inst domain.Instrument, start, today time.Time) (HistoryResult, error) {
	latest, err := s.store.LatestDate(ctx, inst)
	fullPull := false
	switch {
	case err == nil:
	case isNoData(err):
		fullPull = true
	default:
		return HistoryResult{}, fmt.Errorf("%w: latest date for %s: %v", ErrStoreUnavailable, inst, err)
	}

	stored, err := s.store.ReadRange(ctx, inst, start, today)
	if err != nil {
		return HistoryResult{}, fmt.Errorf("%w: read %s: %v", ErrStoreUnavailable, inst, err)
	}

	var from time.Time
	switch {
	case fullPull:
		from = start
	case !latest.Before(today):
		// Already current: serve entirely from the store.
		return HistoryResult{Instrument: inst, Status: StatusCached, Bars: stored}, nil
	default:
		from = latest.AddDate(0, 0, 1)
	}

	fetched, err := s.provider.FetchDaily(ctx, inst, from, today)
	if err != nil {
		s.log.Warn("provider_fetch_failed",
			zap.String("instrument", string(inst)),
			zap.Time("from", from),
			zap.Time("to", today),
			zap.Error(err),
		)
		return HistoryResult{Instrument: inst, Status: StatusStale, Bars: stored, Error: err.Error()}, nil
	}

	if len(fetched) > 0 {
		written, err := s.store.UpsertMany(ctx, fetched)
		if err != nil {
			return HistoryResult{}, fmt.Errorf("%w: upsert %s: %v", ErrStoreUnavailable, inst, err)
		}
		s.log.Info("history_refreshed",
			zap.String("instrument", string(inst)),
			zap.Int("fetched", len(fetched)),
			zap.Int64("written", written),
		)
	}

	status := StatusIncremental
	if fullPull {
		status = StatusFull
	}
	return HistoryResult{Instrument: inst, Status: status, Bars: mergeBars(stored, fetched, start, today)}, nil
}

// deriveOne builds a derived instrument's window from the already-merged
// base windows and persists it with the same idempotent upsert as fetched
// bars. Its status follows its own stored coverage unless a base is stale.
func (s *HistoryService) deriveOne(ctx context.Context, inst domain.Instrument, usdJPY, usdKRW HistoryResult, today time.Time) (HistoryResult, error) {
	bars := DeriveBars(inst, usdJPY.Bars, usdKRW.Bars)

	if usdJPY.Status == StatusStale || usdKRW.Status == StatusStale {
		msg := usdJPY.Error
		if msg == "" {
			msg = usdKRW.Error
		}
		return HistoryResult{Instrument: inst, Status: StatusStale, Bars: bars, Error: msg}, nil
	}

	latest, err := s.store.LatestDate(ctx, inst)
	status := StatusIncremental
	switch {
	case err == nil && !latest.Before(today):
		status = StatusCached
	case isNoData(err):
		status = StatusFull
	case err != nil:
		return HistoryResult{}, fmt.Errorf("%w: latest date for %s: %v", ErrStoreUnavailable, inst, err)
	}

	if status != StatusCached && len(bars) > 0 {
		if _, err := s.store.UpsertMany(ctx, bars); err != nil {
			return HistoryResult{}, fmt.Errorf("%w: upsert %s: %v", ErrStoreUnavailable, inst, err)
		}
	}
	return HistoryResult{Instrument: inst, Status: status, Bars: bars}, nil
}

// mergeBars assembles the window returned to the caller: stored prefix plus
// freshly fetched suffix, clipped to [start, end]. On a date collision the
// fresh value wins in this view; the persisted row keeps the first write.
func mergeBars(stored, fresh []domain.Bar, start, end time.Time) []domain.Bar {
	byDate := make(map[time.Time]domain.Bar, len(stored)+len(fresh))
	for _, b := range stored {
		byDate[domain.Day(b.Date)] = b
	}
	for _, b := range fresh {
		byDate[domain.Day(b.Date)] = b
	}
	out := make([]domain.Bar, 0, len(byDate))
	for d, b := range byDate {
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func isNoData(err error) bool {
	return errors.Is(err, domain.ErrNoData)
}
