// Package metrics computes node-level and network-level structural
// metrics over an extracted subgraph. Numerically fragile computations
// never fail the request: each runs behind an explicit fallback chain
// that always yields a defined value.
package metrics

import (
	"github.com/weftlabs/strata/internal/core/model"
	"github.com/weftlabs/strata/internal/core/subgraph"
)

// Engine computes the metrics battery. The zero value is not usable;
// construct with NewEngine.
type Engine struct {
	// MaxPowerIterations caps the power-iteration eigenvector tier.
	// Exceeding the cap is recoverable: the chain falls through to
	// degree centrality.
	MaxPowerIterations int

	// Tolerance is the convergence threshold for iterative methods.
	Tolerance float64
}

// NewEngine returns an engine with the default iteration cap and
// tolerance.
func NewEngine() *Engine {
	return &Engine{
		MaxPowerIterations: 1000,
		Tolerance:          1e-6,
	}
}

// Compute returns one NodeMetrics per subgraph vertex, in the subgraph's
// vertex order, plus the network rollups. It never fails: undefined or
// non-converging metrics resolve to their documented defaults.
func (e *Engine) Compute(sg *subgraph.Subgraph) ([]model.NodeMetrics, model.NetworkMetrics) {
	order := sg.Vertices()
	n := len(order)
	if n == 0 {
		return nil, model.NetworkMetrics{}
	}

	betweenness := e.betweenness(sg)
	closeness := e.closeness(sg)
	eigen := e.eigenvector(sg)
	clustering := localClustering(sg)

	nodes := make([]model.NodeMetrics, 0, n)
	clusteringSum := 0.0
	degreeSum := 0
	for _, id := range order {
		deg := sg.InDegree(id) + sg.OutDegree(id)
		degreeSum += deg
		clusteringSum += clustering[id]
		nodes = append(nodes, model.NodeMetrics{
			Node:              id,
			Weight:            sg.Weight(id),
			SubgraphWeight:    descendantWeight(sg, id),
			Degree:            deg,
			Betweenness:       betweenness[id],
			Closeness:         closeness[id],
			Eigenvector:       eigen.values[id],
			ClusteringCoeff:   clustering[id],
			EigenvectorMethod: eigen.method,
		})
	}

	network := model.NetworkMetrics{
		TotalNodes:          n,
		TotalEdges:          sg.NumEdges(),
		AverageDegree:       float64(degreeSum) / float64(n),
		Density:             density(n, sg.NumEdges()),
		AverageClustering:   clusteringSum / float64(n),
		AverageShortestPath: e.averageShortestPath(sg),
	}
	return nodes, network
}

// descendantWeight sums the weights of id and all its descendants within
// the subgraph. This is a local definition: the traversal stays inside
// the extraction, not the original graph.
func descendantWeight(sg *subgraph.Subgraph, id string) float64 {
	visited := map[string]bool{id: true}
	queue := []string{id}
	total := 0.0
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		total += sg.Weight(u)
		for _, v := range sg.Successors(u) {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	return total
}

// density is edges / (nodes * (nodes-1)) for a simple directed graph.
func density(nodes, edges int) float64 {
	if nodes < 2 {
		return 0
	}
	return float64(edges) / float64(nodes*(nodes-1))
}

// averageShortestPath is only defined when the subgraph is strongly
// connected and has at least two vertices; otherwise it is nil. The
// connectivity check runs up front so the all-pairs computation is never
// attempted on a disconnected subgraph.
func (e *Engine) averageShortestPath(sg *subgraph.Subgraph) *float64 {
	n := sg.NumVertices()
	if n < 2 || !stronglyConnected(sg) {
		return nil
	}
	total := 0
	for _, s := range sg.Vertices() {
		for _, d := range bfsDistances(sg, s) {
			total += d
		}
	}
	avg := float64(total) / float64(n*(n-1))
	return &avg
}
