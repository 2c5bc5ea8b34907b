package source

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/kilianp07/velomagg/core/model"
)

const cacheKeyLayout = "2006-01-02T15:04:05"

// RunCache memoizes time series for the lifetime of one analysis run.
// Entries never expire; create a new RunCache for every run and drop it
// afterwards. Station snapshots are not cached.
type RunCache struct {
	src    DataSource
	series *cache.Cache
	hits   int
	misses int
}

// NewRunCache wraps src with an empty cache.
func NewRunCache(src DataSource) *RunCache {
	return &RunCache{
		src: src,
		// no expiration and no janitor: the cache dies with the run
		series: cache.New(cache.NoExpiration, 0),
	}
}

// FetchStations delegates to the wrapped source.
func (c *RunCache) FetchStations(ctx context.Context) ([]model.Station, error) {
	return c.src.FetchStations(ctx)
}

// FetchTimeSeries returns the cached series or fetches and stores it.
// Failed fetches are not cached.
func (c *RunCache) FetchTimeSeries(ctx context.Context, stationID, attr string, from, to time.Time) ([]model.Sample, error) {
	key := cacheKey(stationID, attr, from, to)
	if v, ok := c.series.Get(key); ok {
		c.hits++
		return v.([]model.Sample), nil
	}
	c.misses++
	samples, err := c.src.FetchTimeSeries(ctx, stationID, attr, from, to)
	if err != nil {
		return nil, err
	}
	c.series.Set(key, samples, cache.NoExpiration)
	return samples, nil
}

// Stats returns the number of cache hits and misses so far.
func (c *RunCache) Stats() (hits, misses int) { return c.hits, c.misses }

// Len returns the number of cached series.
func (c *RunCache) Len() int { return c.series.ItemCount() }

func cacheKey(stationID, attr string, from, to time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s", stationID, attr, from.Format(cacheKeyLayout), to.Format(cacheKeyLayout))
}
