package cache

import (
	"sort"
	"sync"
	"time"
)

const (
	// DefaultTTL matches the knowledge service's guidance for result reuse.
	DefaultTTL = 5 * time.Minute
	// DefaultMaxEntries bounds memory for long-lived shared clients.
	DefaultMaxEntries = 1000
)

type entry struct {
	value    any
	storedAt time.Time
}

// Store is a bounded, time-expiring key/value store. Expiry is checked lazily
// on access; when an insert would push the store past its size bound, the
// oldest tenth of entries by insertion time is evicted first. Safe for
// concurrent use.
type Store struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]entry

	now func() time.Time
}

// New builds a store; non-positive maxEntries falls back to the default.
// A non-positive TTL makes every entry expire immediately.
func New(ttl time.Duration, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]entry),
		now:        time.Now,
	}
}

// Get returns the stored value, or false if the key is absent or its entry has
// outlived the TTL. Expired entries are removed on the spot.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.storedAt) >= s.ttl {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// Put stores a value under key with the current timestamp, evicting the oldest
// entries first if the insert would exceed the size bound.
func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictOldest()
	}
	s.entries[key] = entry{value: value, storedAt: s.now()}
}

// Len reports the number of resident entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictOldest removes the oldest tenth of entries (at least one) by insertion
// time. Caller holds the lock.
func (s *Store) evictOldest() {
	type aged struct {
		key      string
		storedAt time.Time
	}

	all := make([]aged, 0, len(s.entries))
	for k, e := range s.entries {
		all = append(all, aged{key: k, storedAt: e.storedAt})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].storedAt.Before(all[j].storedAt)
	})

	victims := s.maxEntries / 10
	if victims < 1 {
		victims = 1
	}
	if victims > len(all) {
		victims = len(all)
	}
	for _, a := range all[:victims] {
		delete(s.entries, a.key)
	}
}
