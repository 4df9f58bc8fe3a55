package worker

import (
	"context"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"
	"go.uber.org/zap"
)

var _ application.Worker = (*Refresher)(nil)

// Refresher keeps the history store warm: on an interval it runs the
// cache-aware window fetch for every instrument, so interactive requests
// mostly hit already-current data.
type Refresher struct {
	History application.HistoryFetcher

	Interval time.Duration
	Months   int
	Log      *zap.Logger
}

func (w *Refresher) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.Interval <= 0 {
		w.Interval = time.Hour
	}
	if w.Months <= 0 {
		w.Months = 12
	}

	t := time.NewTicker(w.Interval)
	defer t.Stop()

	log.Info("refresher_started", zap.Duration("interval", w.Interval), zap.Int("months", w.Months))
	w.tick(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("refresher_stopped")
			return
		case <-t.C:
			w.tick(ctx, log)
		}
	}
}

func (w *Refresher) tick(ctx context.Context, log *zap.Logger) {
	results, err := w.History.FetchWindow(ctx, w.Months, domain.AllInstruments())
	if err != nil {
		log.Warn("refresh_failed", zap.Error(err))
		return
	}
	for _, res := range results {
		if res.Status == application.StatusStale {
			log.Warn("refresh_stale",
				zap.String("instrument", string(res.Instrument)),
				zap.String("error", res.Error),
			)
			continue
		}
		log.Info("refresh_done",
			zap.String("instrument", string(res.Instrument)),
			zap.String("status", string(res.Status)),
			zap.Int("bars", len(res.Bars)),
		)
	}
}
