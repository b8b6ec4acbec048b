package marketdata

import (
	"sync"
	"time"

	"stocksense/internal/domain/market"
)

// NewsDigest is the cached news picture served to API readers
type NewsDigest struct {
	Breaking    Result[[]Article]            `json:"breaking"`
	Political   Result[[]Article]            `json:"political"`
	Sector      Result[map[string][]Article] `json:"sector"`
	RefreshedAt time.Time                    `json:"refreshedAt"`
}

// Cache holds the latest provider results so API reads never block on
// upstream calls. Refresh workers write, handlers read.
type Cache struct {
	mu          sync.RWMutex
	snapshot    *market.Snapshot
	movers      map[MoverList]Result[[]Quote]
	news        NewsDigest
	snapshotAt  time.Time
	moversAt    time.Time
}

func NewCache() *Cache {
	return &Cache{
		movers: make(map[MoverList]Result[[]Quote]),
	}
}

// SetSnapshot stores the latest market snapshot
func (c *Cache) SetSnapshot(snap *market.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snap
	c.snapshotAt = time.Now()
}

// Snapshot returns the cached snapshot, or nil before the first refresh
func (c *Cache) Snapshot() (*market.Snapshot, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, c.snapshotAt
}

// SetMovers stores one mover list
func (c *Cache) SetMovers(list MoverList, res Result[[]Quote]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.movers[list] = res
	c.moversAt = time.Now()
}

// Movers returns the cached mover list
func (c *Cache) Movers(list MoverList) (Result[[]Quote], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.movers[list]
	return res, ok
}

// SetNews stores the refreshed news digest
func (c *Cache) SetNews(digest NewsDigest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	digest.RefreshedAt = time.Now()
	c.news = digest
}

// News returns the cached news digest
func (c *Cache) News() NewsDigest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.news
}
