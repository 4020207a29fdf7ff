package cache

import (
	"sync"

	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// PilotCache caches remote pilot identities fetched from the web frontend
// to avoid a network round trip on every snapshot publication.
type PilotCache struct {
	mu     sync.RWMutex
	pilots map[string]core.RemotePilot
}

// NewPilotCache creates a new PilotCache
func NewPilotCache() *PilotCache {
	return &PilotCache{
		pilots: make(map[string]core.RemotePilot),
	}
}

// Get retrieves a pilot by station serial
func (c *PilotCache) Get(serial string) (core.RemotePilot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pilot, ok := c.pilots[serial]
	return pilot, ok
}

// Set stores a pilot by station serial
func (c *PilotCache) Set(serial string, pilot core.RemotePilot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pilots[serial] = pilot
}

// Delete removes a pilot by station serial
func (c *PilotCache) Delete(serial string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pilots, serial)
}

// Reset clears all pilots from the cache
func (c *PilotCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pilots = make(map[string]core.RemotePilot)
}
