package normalize

import (
	"strings"
	"sync"
)

// placeholderPrefix marks names this package synthesized itself. Synthesized
// names never displace a real one in the cache or on a calendar.
const placeholderPrefix = "Asset "

// NameCache remembers the best display name seen for each asset id. Backend
// joins are inconsistent: some records carry a full asset object, others only
// the id. The cache lets later id-only records reuse a real name instead of a
// placeholder. It is owned by the caller so normalization stays a pure
// function of its inputs plus this explicit state; the cache itself is safe
// for concurrent use since refreshes and draft inserts share it.
type NameCache struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewNameCache() *NameCache {
	return &NameCache{names: make(map[string]string)}
}

// Lookup returns the best known name for the asset id, if any.
func (c *NameCache) Lookup(assetID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[assetID]
	return name, ok
}

// Remember stores a name for the asset id unless it is empty or a synthesized
// placeholder.
func (c *NameCache) Remember(assetID, name string) {
	if assetID == "" || name == "" || IsPlaceholderName(name) {
		return
	}
	c.mu.Lock()
	c.names[assetID] = name
	c.mu.Unlock()
}

// IsPlaceholderName reports whether a display name was synthesized from an
// asset code or id rather than taken from backend data.
func IsPlaceholderName(name string) bool {
	return strings.HasPrefix(name, placeholderPrefix)
}
