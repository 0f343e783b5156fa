package sync

import (
	"sync"

	"org-sync-backend/pkg/snapshot"
)

// Cache holds the latest known snapshot per organization. Entries are
// replaced whole; readers keep whatever pointer they grabbed and never
// see a half-applied change.
type Cache struct {
	mu    sync.RWMutex
	snaps map[string]*snapshot.Snapshot
}

func NewCache() *Cache {
	return &Cache{snaps: map[string]*snapshot.Snapshot{}}
}

// Get returns the cached snapshot for the org, or nil.
func (c *Cache) Get(orgID string) *snapshot.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snaps[orgID]
}

func (c *Cache) Set(orgID string, snap *snapshot.Snapshot) {
	c.mu.Lock()
	c.snaps[orgID] = snap
	c.mu.Unlock()
}

func (c *Cache) Delete(orgID string) {
	c.mu.Lock()
	delete(c.snaps, orgID)
	c.mu.Unlock()
}

// Orgs lists the org ids with a cached snapshot.
func (c *Cache) Orgs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.snaps))
	for id := range c.snaps {
		ids = append(ids, id)
	}
	return ids
}
