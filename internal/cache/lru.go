package cache

import "sync"

// lru is the in-process L1 cache: a map plus an access-order slice, evicted
// oldest-first once capacity is reached. Grounded on the reference
// implementation's local_cache/local_access_order pair, same shape as
// pkg/chunking/semantic.go's embeddingCache.
type lru struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	order    []string
	capacity int
}

func newLRU(capacity int) *lru {
	if capacity <= 0 {
		capacity = 1000
	}
	return &lru{entries: make(map[string]*Entry), capacity: capacity}
}

func (l *lru) get(key string) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if ok {
		e.AccessCount++
		e.HitCount++
		l.touch(key)
	}
	return e, ok
}

func (l *lru) put(key string, entry *Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[key]; exists {
		l.removeFromOrder(key)
	}
	l.entries[key] = entry
	l.order = append(l.order, key)

	for len(l.entries) > l.capacity {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.entries, oldest)
	}
}

func (l *lru) touch(key string) {
	l.removeFromOrder(key)
	l.order = append(l.order, key)
}

func (l *lru) removeFromOrder(key string) {
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}

// all returns a snapshot of every entry currently in L1, for the similarity
// fallback scan.
func (l *lru) all() []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	return out
}

func (l *lru) remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[key]; exists {
		delete(l.entries, key)
		l.removeFromOrder(key)
	}
}

func (l *lru) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *lru) keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}
