package bazaar

import (
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// SnapshotCache is a thread-safe TTL cache for the full market snapshot.
// A singleflight.Group prevents duplicate in-flight fetches when several
// callers miss at the same time.
type SnapshotCache struct {
	mu    sync.RWMutex
	snap  *Snapshot
	ttl   time.Duration
	group singleflight.Group
}

// NewSnapshotCache creates an empty cache with the given freshness window.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl}
}

// Get returns the cached snapshot if it is still fresh.
func (sc *SnapshotCache) Get() (*Snapshot, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.snap == nil || time.Since(sc.snap.FetchedAt) > sc.ttl {
		return nil, false
	}
	return sc.snap, true
}

// Put stores a snapshot.
func (sc *SnapshotCache) Put(snap *Snapshot) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.snap = snap
}

// Fetch returns the cached snapshot when fresh, otherwise runs fetch and
// caches its result. Concurrent misses are coalesced into one fetch.
func (sc *SnapshotCache) Fetch(fetch func() (*Snapshot, error)) (*Snapshot, error) {
	if snap, ok := sc.Get(); ok {
		return snap, nil
	}

	result, err, _ := sc.group.Do("snapshot", func() (interface{}, error) {
		// Re-check under singleflight: a racing caller may have refreshed.
		if snap, ok := sc.Get(); ok {
			return snap, nil
		}
		snap, err := fetch()
		if err != nil {
			return nil, err
		}
		sc.Put(snap)
		log.Printf("[DEBUG] SnapshotCache MISS (%d products)", len(snap.Products))
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Snapshot), nil
}
