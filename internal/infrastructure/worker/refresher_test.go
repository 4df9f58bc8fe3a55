package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"fxfolio-service/internal/application"
	"fxfolio-service/internal/domain"

	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls atomic.Int64
}

func (f *countingFetcher) FetchWindow(_ context.Context, _ int, _ []domain.Instrument) ([]application.HistoryResult, error) {
	f.calls.Add(1)
	return []application.HistoryResult{{Instrument: domain.USDKRW, Status: application.StatusCached}}, nil
}

func TestRefresher_TicksUntilCancelled(t *testing.T) {
	f := &countingFetcher{}
	w := &Refresher{History: f, Interval: 10 * time.Millisecond, Months: 1}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return f.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
