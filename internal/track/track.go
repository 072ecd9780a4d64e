// Package track keeps in-memory usage statistics for the service.
package track

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QueryRecord describes one processed request.
type QueryRecord struct {
	ID         string        `json:"id"`
	Endpoint   string        `json:"endpoint"`
	SourceType string        `json:"source_type,omitempty"`
	Snapshot   string        `json:"snapshot,omitempty"`
	RootNode   string        `json:"root_node,omitempty"`
	NodeCount  int           `json:"node_count,omitempty"`
	CacheHit   bool          `json:"cache_hit"`
	Duration   time.Duration `json:"-"`
	DurationMS float64       `json:"duration_ms"`
	StartedAt  time.Time     `json:"started_at"`
	Failed     bool          `json:"failed,omitempty"`
}

// RootCount pairs a root vertex with how often it was queried.
type RootCount struct {
	Root  string `json:"root"`
	Count int    `json:"count"`
}

// UsageReport is the aggregate view served by the usage endpoint.
type UsageReport struct {
	TotalQueries int            `json:"total_queries"`
	ErrorCount   int            `json:"error_count"`
	CacheHits    int            `json:"cache_hits"`
	ByEndpoint   map[string]int `json:"by_endpoint"`
	PopularRoots []RootCount    `json:"popular_roots"`
	Recent       []QueryRecord  `json:"recent"`
}

const recentLimit = 50

// Tracker records queries. Safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	records   []QueryRecord
	endpoints map[string]int
	roots     map[string]int
	errors    int
	cacheHits int
}

func NewTracker() *Tracker {
	return &Tracker{
		endpoints: make(map[string]int),
		roots:     make(map[string]int),
	}
}

// Record stores one query and returns its assigned id.
func (t *Tracker) Record(rec QueryRecord) string {
	rec.ID = uuid.NewString()
	rec.DurationMS = float64(rec.Duration.Microseconds()) / 1000.0
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = append(t.records, rec)
	t.endpoints[rec.Endpoint]++
	if rec.RootNode != "" && !rec.Failed {
		t.roots[rec.RootNode]++
	}
	if rec.Failed {
		t.errors++
	}
	if rec.CacheHit {
		t.cacheHits++
	}
	return rec.ID
}

// Report builds the aggregate usage view. Recent queries come newest
// first, capped at a fixed window.
func (t *Tracker) Report() UsageReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	byEndpoint := make(map[string]int, len(t.endpoints))
	for k, v := range t.endpoints {
		byEndpoint[k] = v
	}

	roots := make([]RootCount, 0, len(t.roots))
	for root, count := range t.roots {
		roots = append(roots, RootCount{Root: root, Count: count})
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Count != roots[j].Count {
			return roots[i].Count > roots[j].Count
		}
		return roots[i].Root < roots[j].Root
	})
	if len(roots) > 10 {
		roots = roots[:10]
	}

	n := len(t.records)
	limit := n
	if limit > recentLimit {
		limit = recentLimit
	}
	recent := make([]QueryRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		recent = append(recent, t.records[i])
	}

	return UsageReport{
		TotalQueries: n,
		ErrorCount:   t.errors,
		CacheHits:    t.cacheHits,
		ByEndpoint:   byEndpoint,
		PopularRoots: roots,
		Recent:       recent,
	}
}
