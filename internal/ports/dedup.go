package ports

import (
	"sync"
	"time"
)

// deduper remembers keys for a while so the same reading isn't logged twice.
type deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
	now  func() time.Time
}

func newDeduper(ttl time.Duration, max int) *deduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if max <= 0 {
		max = 50000
	}
	return &deduper{ttl: ttl, max: max, seen: make(map[string]time.Time), now: time.Now}
}

// firstSeen reports whether key is new, and remembers it.
func (d *deduper) firstSeen(key string) bool {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[key]; ok && now.Before(exp) {
		return false
	}
	d.seen[key] = now.Add(d.ttl)

	if len(d.seen) > d.max {
		for k, exp := range d.seen {
			if now.After(exp) {
				delete(d.seen, k)
			}
		}
	}
	return true
}

// forget drops key so the next firstSeen reports it as new again.
func (d *deduper) forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}
