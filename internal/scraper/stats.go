package scraper

import "sync/atomic"

// Stats tracks the running counts a scrape reports. Read concurrently by
// the status server, so all counters are atomic.
type Stats struct {
	Attempted atomic.Int64
	Skipped   atomic.Int64
	Dropped   atomic.Int64
	Scraped   atomic.Int64
	Synced    atomic.Int64
}

// Snapshot is the JSON shape exposed on the status endpoint.
type Snapshot struct {
	Attempted int64 `json:"attempted"`
	Skipped   int64 `json:"skipped"`
	Dropped   int64 `json:"dropped"`
	Scraped   int64 `json:"scraped"`
	Synced    int64 `json:"synced"`
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Attempted: s.Attempted.Load(),
		Skipped:   s.Skipped.Load(),
		Dropped:   s.Dropped.Load(),
		Scraped:   s.Scraped.Load(),
		Synced:    s.Synced.Load(),
	}
}
