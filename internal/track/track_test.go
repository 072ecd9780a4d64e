package track

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordAndReport(t *testing.T) {
	tr := NewTracker()

	id := tr.Record(QueryRecord{
		Endpoint: "process_graph",
		Snapshot: "2024-01-01",
		RootNode: "A",
		CacheHit: true,
		Duration: 1500 * time.Microsecond,
	})
	assert.NotEmpty(t, id)

	tr.Record(QueryRecord{Endpoint: "process_graph", RootNode: "A"})
	tr.Record(QueryRecord{Endpoint: "process_graph", RootNode: "B"})
	tr.Record(QueryRecord{Endpoint: "export", Failed: true})

	report := tr.Report()
	assert.Equal(t, 4, report.TotalQueries)
	assert.Equal(t, 1, report.ErrorCount)
	assert.Equal(t, 1, report.CacheHits)
	assert.Equal(t, 3, report.ByEndpoint["process_graph"])
	assert.Equal(t, 1, report.ByEndpoint["export"])

	require.Len(t, report.PopularRoots, 2)
	assert.Equal(t, RootCount{Root: "A", Count: 2}, report.PopularRoots[0])
	assert.Equal(t, RootCount{Root: "B", Count: 1}, report.PopularRoots[1])

	// Newest first.
	require.Len(t, report.Recent, 4)
	assert.Equal(t, "export", report.Recent[0].Endpoint)
	assert.Equal(t, 1.5, report.Recent[3].DurationMS)
}

func TestTrackerRecentWindow(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < recentLimit+20; i++ {
		tr.Record(QueryRecord{Endpoint: fmt.Sprintf("q%d", i)})
	}

	report := tr.Report()
	assert.Equal(t, recentLimit+20, report.TotalQueries)
	require.Len(t, report.Recent, recentLimit)
	assert.Equal(t, fmt.Sprintf("q%d", recentLimit+19), report.Recent[0].Endpoint)
}

func TestTrackerConcurrent(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Record(QueryRecord{Endpoint: "process_graph", RootNode: "A"})
			}
		}()
	}
	wg.Wait()

	report := tr.Report()
	assert.Equal(t, 800, report.TotalQueries)
	assert.Equal(t, 800, report.PopularRoots[0].Count)
}
