package workers

import (
	"context"
	"time"

	"stocksense/internal/domain/user"
	"stocksense/internal/marketdata"
)

var defaultNewsSectors = []string{"Technology", "Finance", "Energy"}

// ProfileSource supplies the current user profile
type ProfileSource interface {
	Profile(ctx context.Context) (*user.Profile, error)
}

// NewsRefreshWorker refreshes the cached news digest. Sector news
// follows the user's preferred sectors, falling back to a default set
// until the profile has any.
type NewsRefreshWorker struct {
	*BaseWorker
	news     *marketdata.NewsClient
	profiles ProfileSource
	cache    *marketdata.Cache
}

func NewNewsRefreshWorker(news *marketdata.NewsClient, profiles ProfileSource, cache *marketdata.Cache, interval time.Duration) *NewsRefreshWorker {
	return &NewsRefreshWorker{
		BaseWorker: NewBaseWorker("news_refresh", interval, true),
		news:       news,
		profiles:   profiles,
		cache:      cache,
	}
}

func (w *NewsRefreshWorker) Run(ctx context.Context) error {
	start := time.Now()

	sectors := defaultNewsSectors
	if profile, err := w.profiles.Profile(ctx); err == nil && len(profile.PreferredSectors) > 0 {
		sectors = profile.PreferredSectors
	}

	digest := marketdata.NewsDigest{
		Breaking:  w.news.Breaking(ctx),
		Political: w.news.Political(ctx),
		Sector:    w.news.SectorNews(ctx, sectors),
	}
	w.cache.SetNews(digest)

	w.RecordRun(time.Since(start))
	w.Log().Debugw("news cache refreshed",
		"sectors", sectors,
		"breaking", digest.Breaking.Source,
	)
	return nil
}
