// Package cache implements the short-lived result cache that sits between
// the search orchestrator and the upstream geodata providers. The cache is
// advisory only: any malfunction degrades to a miss and is never surfaced
// to callers.
package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"smartlocations_backend/internal/geo"
)

// DefaultTTL is how long a search result stays valid.
const DefaultTTL = 10 * time.Minute

// Store is the injectable cache component consumed by the orchestrator.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the payload stored under key, or false when the key is
	// absent or expired.
	Get(key string) ([]byte, bool)
	// Put stores payload under key for ttl. A non-positive ttl means DefaultTTL.
	Put(key string, payload []byte, ttl time.Duration)
	// Sweep removes expired entries. Implementations with server-side
	// expiry may treat this as a no-op.
	Sweep()
}

// Key builds the composite cache key for a search. Coordinates are rounded
// to three decimal places (roughly a 100 m grid) so nearly identical
// positions share an entry, and filter tokens are sorted so tag order does
// not affect key identity.
func Key(origin geo.Coordinate, tokens []string, radiusKm float64, limit int) string {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)

	return fmt.Sprintf("%.3f,%.3f:%s:radius=%g:limit=%d",
		origin.Lat, origin.Lon, strings.Join(sorted, ","), radiusKm, limit)
}
