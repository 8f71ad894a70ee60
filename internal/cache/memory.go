package cache

import (
	"sync"
	"time"

	"ghtrend/internal/trending"
)

// DefaultTTL is how long a memory entry stays fresh unless overridden per Set.
const DefaultTTL = 10 * time.Minute

// Entry is one cached trending snapshot plus its freshness bookkeeping.
type Entry struct {
	Data     []trending.Repository
	StoredAt time.Time
	TTL      time.Duration
}

// MemoryStats reports the current key population, computed on demand.
type MemoryStats struct {
	Total   int
	Valid   int
	Expired int
}

// Memory is the in-process TTL tier. Entries are replaced whole on Set;
// growth is bounded by #languages x #periods so there is no eviction beyond
// TTL. The clock is a field so expiry is testable without sleeping.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]Entry
	defaultTTL time.Duration
	now        func() time.Time
}

func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Memory{
		entries:    make(map[string]Entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the raw entry regardless of freshness.
func (m *Memory) Get(language string, period trending.Period) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[trending.Key(language, period)]
	return e, ok
}

// Set replaces any existing entry for the key, stamping StoredAt now.
// A ttl <= 0 means the cache default.
func (m *Memory) Set(language string, period trending.Period, data []trending.Repository, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[trending.Key(language, period)] = Entry{
		Data:     data,
		StoredAt: m.now(),
		TTL:      ttl,
	}
}

// IsValid reports whether the entry is still fresh. A positive ttlOverride
// replaces the entry's own TTL for this check only.
func (m *Memory) IsValid(e Entry, ttlOverride time.Duration) bool {
	ttl := e.TTL
	if ttlOverride > 0 {
		ttl = ttlOverride
	}
	return m.now().Sub(e.StoredAt) < ttl
}

// GetValid is the get+freshness composition most callers want.
func (m *Memory) GetValid(language string, period trending.Period, ttlOverride time.Duration) ([]trending.Repository, bool) {
	e, ok := m.Get(language, period)
	if !ok || !m.IsValid(e, ttlOverride) {
		return nil, false
	}
	return e.Data, true
}

// Clear drops all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
}

// ClearExpired drops only entries past their TTL.
func (m *Memory) ClearExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if m.now().Sub(e.StoredAt) >= e.TTL {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s MemoryStats
	for _, e := range m.entries {
		s.Total++
		if m.now().Sub(e.StoredAt) < e.TTL {
			s.Valid++
		} else {
			s.Expired++
		}
	}
	return s
}
