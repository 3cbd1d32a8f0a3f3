// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/dagsim/cache/lru"
	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/utils/wrappers"
)

type snapshotKey struct {
	tick   uint64
	nodeID ids.NodeID
	format string
}

// snapshotCache holds encoded replies of archived graphs.
type snapshotCache struct {
	cache *lru.Cache[snapshotKey, response]

	hits   prometheus.Counter
	misses prometheus.Counter
	size   prometheus.Gauge
}

func newSnapshotCache(size int, registerer prometheus.Registerer) (*snapshotCache, error) {
	if size <= 0 {
		size = DefaultSnapshotCacheSize
	}
	c := &snapshotCache{
		cache: lru.NewCache[snapshotKey, response](size),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "api",
			Name:      "snapshot_cache_hits",
			Help:      "Number of archived graphs served from the cache",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "api",
			Name:      "snapshot_cache_misses",
			Help:      "Number of archived graphs read from the archive",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "api",
			Name:      "snapshot_cache_size",
			Help:      "Number of cached archived graphs",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(c.hits),
		registerer.Register(c.misses),
		registerer.Register(c.size),
	)
	return c, errs.Err
}

func (c *snapshotCache) get(key snapshotKey) (response, bool) {
	resp, ok := c.cache.Get(key)
	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return resp, ok
}

func (c *snapshotCache) put(key snapshotKey, resp response) {
	c.cache.Put(key, resp)
	c.size.Set(float64(c.cache.Len()))
}
