package models

import "time"

// CacheEntry is a stored upstream response plus its freshness window.
// The substrate evicts the entry after Fresh+Stale; between Fresh and
// Fresh+Stale the entry is served stale while a refresh runs off-path.
type CacheEntry struct {
	Body        []byte        `json:"body"`
	ContentType string        `json:"content_type"`
	StoredAt    time.Time     `json:"stored_at"`
	Fresh       time.Duration `json:"fresh"`
	Stale       time.Duration `json:"stale"`
}

func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

func (e *CacheEntry) IsFresh(now time.Time) bool {
	return e.Age(now) <= e.Fresh
}

func (e *CacheEntry) IsStale(now time.Time) bool {
	age := e.Age(now)
	return age > e.Fresh && age <= e.Fresh+e.Stale
}

// Lifetime is the eviction TTL the substrate applies to the entry.
func (e *CacheEntry) Lifetime() time.Duration {
	return e.Fresh + e.Stale
}
