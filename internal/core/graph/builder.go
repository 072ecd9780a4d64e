package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/model"
)

// DefaultWeight replaces non-numeric or non-positive vertex weights.
// This is a lossy normalization: a zero, negative or NaN weight becomes
// 1.0, never 0, so a malformed row still contributes to weight sums.
const DefaultWeight = 1.0

// Build constructs a graph from vertex and edge rows. When snapshot is
// non-empty both tables are filtered to it first. Build fails with a
// structural error rather than returning a partial graph: every edge
// endpoint must exist as a vertex, self-loops are rejected, and the
// result must be a single weakly-connected component with at least one
// vertex. Offending edges are collected and reported as one batch.
func Build(vertexRows []model.VertexRow, edgeRows []model.EdgeRow, snapshot string) (*Graph, error) {
	g := &Graph{
		snapshot: snapshot,
		weights:  make(map[string]float64),
		succ:     make(map[string][]string),
		pred:     make(map[string][]string),
	}

	sawSnapshot := false
	for _, row := range vertexRows {
		if snapshot != "" {
			if strings.TrimSpace(row.Snapshot) != snapshot {
				continue
			}
			sawSnapshot = true
		}
		id := strings.TrimSpace(row.Vertex)
		if id == "" {
			continue
		}
		if _, exists := g.weights[id]; !exists {
			g.order = append(g.order, id)
		}
		g.weights[id] = normalizeWeight(row.Weight)
	}

	if snapshot != "" && !sawSnapshot {
		return nil, errs.NotFound("snapshot", snapshot)
	}
	if len(g.order) == 0 {
		return nil, &errs.GraphStructureError{Msg: "no vertices after filtering"}
	}

	missing := make(map[string]bool)
	selfLoops := make(map[string]bool)
	seen := make(map[model.Edge]bool)
	for _, row := range edgeRows {
		if snapshot != "" && strings.TrimSpace(row.Snapshot) != snapshot {
			continue
		}
		from := strings.TrimSpace(row.VertexFrom)
		to := strings.TrimSpace(row.VertexTo)
		if from == "" || to == "" {
			continue
		}
		if !g.HasVertex(from) {
			missing[from] = true
		}
		if !g.HasVertex(to) {
			missing[to] = true
		}
		if missing[from] || missing[to] {
			continue
		}
		if from == to {
			selfLoops[from] = true
			continue
		}
		// Simple digraph: repeated edge rows collapse to one edge.
		e := model.Edge{From: from, To: to}
		if seen[e] {
			continue
		}
		seen[e] = true
		g.succ[from] = append(g.succ[from], to)
		g.pred[to] = append(g.pred[to], from)
		g.edgeCount++
	}

	if len(missing) > 0 {
		ids := make([]string, 0, len(missing))
		for id := range missing {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return nil, &errs.GraphStructureError{
			Msg:             "edges reference vertices absent from the snapshot",
			MissingVertices: ids,
		}
	}
	if len(selfLoops) > 0 {
		ids := make([]string, 0, len(selfLoops))
		for id := range selfLoops {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return nil, &errs.GraphStructureError{
			Msg:       "self-loops detected",
			SelfLoops: ids,
		}
	}

	if n := g.weakComponentCount(); n > 1 {
		return nil, &errs.GraphStructureError{
			Msg:            fmt.Sprintf("graph has %d weakly-connected components, expected 1", n),
			ComponentCount: n,
		}
	}

	return g, nil
}

func normalizeWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return DefaultWeight
	}
	return w
}

// weakComponentCount counts connected components with edge direction
// ignored, via BFS over the undirected view.
func (g *Graph) weakComponentCount() int {
	visited := make(map[string]bool, len(g.order))
	count := 0
	for _, start := range g.order {
		if visited[start] {
			continue
		}
		count++
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range g.succ[u] {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
			for _, v := range g.pred[u] {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
		}
	}
	return count
}
