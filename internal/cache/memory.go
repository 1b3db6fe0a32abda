package cache

import (
	"context"
	"sync"
	"time"

	"smartlocations_backend/platform/logger"
)

type memoryEntry struct {
	payload  []byte
	inserted time.Time
	ttl      time.Duration
}

// Memory is the default in-process cache: a mutex-guarded map with lazy
// expiry on read and a periodic background sweep. Entries do not survive
// process restart, which is fine for a request-time shim.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
	log     *logger.Logger
}

// NewMemory creates an empty in-process cache.
func NewMemory(log *logger.Logger) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		log:     log,
	}
}

// Get implements Store. Expired entries are evicted on lookup.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if m.now().Sub(entry.inserted) > entry.ttl {
		m.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have
		// replaced the entry since the read above.
		if current, still := m.entries[key]; still && m.now().Sub(current.inserted) > current.ttl {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}

	return entry.payload, true
}

// Put implements Store.
func (m *Memory) Put(key string, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{
		payload:  payload,
		inserted: m.now(),
		ttl:      ttl,
	}
	m.mu.Unlock()
}

// Sweep removes all entries older than their own TTL. This bounds memory
// growth under long process uptime.
func (m *Memory) Sweep() {
	now := m.now()

	m.mu.Lock()
	for key, entry := range m.entries {
		if now.Sub(entry.inserted) > entry.ttl {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

// Len returns the number of entries currently held, including expired ones
// not yet swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// RunSweeper sweeps the store on a fixed interval until ctx is cancelled.
// A panic mid-sweep is recovered and logged: it only risks slower memory
// reclamation, never a process crash.
func RunSweeper(ctx context.Context, store Store, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(store, log)
		}
	}
}

func sweepOnce(store Store, log *logger.Logger) {
	defer func() {
		if r := recover(); r != nil && log != nil {
			log.Warn("cache sweep panicked", "panic", r)
		}
	}()
	store.Sweep()
}
