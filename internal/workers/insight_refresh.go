package workers

import (
	"context"
	"time"

	"stocksense/internal/domain/market"
	"stocksense/internal/marketdata"
	"stocksense/pkg/errors"
)

// InsightRefreshWorker re-derives the cached market picture: the
// provider snapshot plus the IEX mover lists. API reads are served
// from the cache so a slow upstream never blocks a request.
type InsightRefreshWorker struct {
	*BaseWorker
	provider market.Provider
	iex      *marketdata.IEXClient
	cache    *marketdata.Cache
}

func NewInsightRefreshWorker(provider market.Provider, iex *marketdata.IEXClient, cache *marketdata.Cache, interval time.Duration) *InsightRefreshWorker {
	return &InsightRefreshWorker{
		BaseWorker: NewBaseWorker("insight_refresh", interval, true),
		provider:   provider,
		iex:        iex,
		cache:      cache,
	}
}

func (w *InsightRefreshWorker) Run(ctx context.Context) error {
	start := time.Now()

	snap, err := w.provider.Snapshot(ctx)
	if err != nil {
		w.RecordError(err, time.Since(start))
		return errors.Wrap(err, "failed to refresh market snapshot")
	}
	w.cache.SetSnapshot(snap)

	for _, list := range []marketdata.MoverList{
		marketdata.MoversGainers,
		marketdata.MoversLosers,
		marketdata.MoversMostActive,
	} {
		w.cache.SetMovers(list, w.iex.Movers(ctx, list))
	}

	w.RecordRun(time.Since(start))
	w.Log().Debugw("market insight cache refreshed",
		"instruments", len(snap.Instruments),
		"trend", snap.Condition.Trend,
	)
	return nil
}
