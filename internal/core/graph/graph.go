// Package graph builds and holds one directed, vertex-weighted graph per
// snapshot. Graphs are never mixed across snapshots.
package graph

import (
	"github.com/weftlabs/strata/internal/core/model"
)

// Graph is a directed graph with weighted vertices, built once from
// tabular rows and read-only afterwards. Vertex enumeration order is the
// insertion order of the source rows, which downstream tie-breaks rely on.
type Graph struct {
	snapshot  string
	order     []string
	weights   map[string]float64
	succ      map[string][]string
	pred      map[string][]string
	edgeCount int
}

// Snapshot returns the snapshot key this graph was built for, or the
// empty string when no filter was applied.
func (g *Graph) Snapshot() string { return g.snapshot }

// Vertices returns the vertex ids in insertion order. The returned slice
// is shared; callers must not mutate it.
func (g *Graph) Vertices() []string { return g.order }

// NumVertices returns the vertex count.
func (g *Graph) NumVertices() int { return len(g.order) }

// NumEdges returns the directed edge count.
func (g *Graph) NumEdges() int { return g.edgeCount }

// HasVertex reports whether id is a vertex of the graph.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.weights[id]
	return ok
}

// Weight returns the weight of a vertex, or 0 for an unknown id.
func (g *Graph) Weight(id string) float64 { return g.weights[id] }

// Successors returns the direct successors of id in insertion order.
func (g *Graph) Successors(id string) []string { return g.succ[id] }

// Predecessors returns the direct predecessors of id.
func (g *Graph) Predecessors(id string) []string { return g.pred[id] }

// OutDegree returns the number of outgoing edges of id.
func (g *Graph) OutDegree(id string) int { return len(g.succ[id]) }

// InDegree returns the number of incoming edges of id.
func (g *Graph) InDegree(id string) int { return len(g.pred[id]) }

// Edges returns every directed edge, ordered by source insertion order.
func (g *Graph) Edges() []model.Edge {
	edges := make([]model.Edge, 0, g.edgeCount)
	for _, u := range g.order {
		for _, v := range g.succ[u] {
			edges = append(edges, model.Edge{From: u, To: v})
		}
	}
	return edges
}
