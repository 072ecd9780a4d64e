// Package subgraph extracts bounded-depth descendant subgraphs from a
// built snapshot graph.
package subgraph

import (
	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/graph"
	"github.com/weftlabs/strata/internal/core/model"
)

// Unbounded requests the full descendant closure of the root.
const Unbounded = -1

// Subgraph is an induced, independent copy over a visited vertex set of a
// graph. Later mutation of the source graph cannot affect it. Vertices
// are enumerated in BFS visit order from the root.
type Subgraph struct {
	root      string
	order     []string
	weights   map[string]float64
	succ      map[string][]string
	pred      map[string][]string
	edgeCount int
}

// Root returns the vertex the extraction started from.
func (s *Subgraph) Root() string { return s.root }

// Vertices returns the vertex ids in BFS visit order. The returned slice
// is shared; callers must not mutate it.
func (s *Subgraph) Vertices() []string { return s.order }

// NumVertices returns the vertex count.
func (s *Subgraph) NumVertices() int { return len(s.order) }

// NumEdges returns the directed edge count.
func (s *Subgraph) NumEdges() int { return s.edgeCount }

// HasVertex reports whether id belongs to the subgraph.
func (s *Subgraph) HasVertex(id string) bool {
	_, ok := s.weights[id]
	return ok
}

// Weight returns the weight of a vertex, or 0 for an unknown id.
func (s *Subgraph) Weight(id string) float64 { return s.weights[id] }

// Successors returns the direct successors of id within the subgraph.
func (s *Subgraph) Successors(id string) []string { return s.succ[id] }

// Predecessors returns the direct predecessors of id within the subgraph.
func (s *Subgraph) Predecessors(id string) []string { return s.pred[id] }

// OutDegree returns the outgoing edge count of id.
func (s *Subgraph) OutDegree(id string) int { return len(s.succ[id]) }

// InDegree returns the incoming edge count of id.
func (s *Subgraph) InDegree(id string) int { return len(s.pred[id]) }

// Edges returns every directed edge of the subgraph.
func (s *Subgraph) Edges() []model.Edge {
	edges := make([]model.Edge, 0, s.edgeCount)
	for _, u := range s.order {
		for _, v := range s.succ[u] {
			edges = append(edges, model.Edge{From: u, To: v})
		}
	}
	return edges
}

// Result folds the subgraph into its weight aggregates.
func (s *Subgraph) Result() model.SubgraphResult {
	weights := make(map[string]float64, len(s.order))
	total := 0.0
	for _, id := range s.order {
		w := s.weights[id]
		weights[id] = w
		total += w
	}
	return model.SubgraphResult{
		Root:           s.root,
		NodeWeight:     s.weights[s.root],
		SubgraphWeight: total,
		Nodes:          append([]string(nil), s.order...),
		Edges:          s.Edges(),
		NodeWeights:    weights,
	}
}

// ResolveRoot picks the traversal root. An explicit non-empty id wins and
// must exist in the graph. Otherwise vertices with in-degree 0 are
// preferred; among those (or among all vertices if none exist) the one
// with maximum out-degree wins, ties broken by the graph's vertex
// enumeration order. The tie-break is deterministic but otherwise
// arbitrary.
func ResolveRoot(g *graph.Graph, explicit string) (string, error) {
	if explicit != "" {
		if !g.HasVertex(explicit) {
			return "", errs.NotFound("root vertex", explicit)
		}
		return explicit, nil
	}

	candidates := make([]string, 0, g.NumVertices())
	for _, id := range g.Vertices() {
		if g.InDegree(id) == 0 {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		candidates = g.Vertices()
	}

	best := candidates[0]
	for _, id := range candidates[1:] {
		if g.OutDegree(id) > g.OutDegree(best) {
			best = id
		}
	}
	return best, nil
}

// Extract performs a level-synchronous breadth-first traversal over
// forward edges from root, up to maxDepth levels (Unbounded for the full
// descendant closure), and returns the induced copy over the visited set.
// maxDepth 0 yields only the root and no edges.
func Extract(g *graph.Graph, root string, maxDepth int) (*Subgraph, error) {
	if !g.HasVertex(root) {
		return nil, errs.NotFound("root vertex", root)
	}
	if maxDepth < 0 && maxDepth != Unbounded {
		return nil, errs.InvalidParameter("max_depth", "must be a non-negative integer, got %d", maxDepth)
	}

	visited := map[string]bool{root: true}
	order := []string{root}
	frontier := []string{root}
	depth := 0

	for len(frontier) > 0 && (maxDepth == Unbounded || depth < maxDepth) {
		var next []string
		for _, u := range frontier {
			for _, v := range g.Successors(u) {
				if !visited[v] {
					visited[v] = true
					order = append(order, v)
					next = append(next, v)
				}
			}
		}
		frontier = next
		depth++
	}

	s := &Subgraph{
		root:    root,
		order:   order,
		weights: make(map[string]float64, len(order)),
		succ:    make(map[string][]string, len(order)),
		pred:    make(map[string][]string, len(order)),
	}
	for _, u := range order {
		s.weights[u] = g.Weight(u)
	}
	for _, u := range order {
		for _, v := range g.Successors(u) {
			if visited[v] {
				s.succ[u] = append(s.succ[u], v)
				s.pred[v] = append(s.pred[v], u)
				s.edgeCount++
			}
		}
	}
	return s, nil
}
