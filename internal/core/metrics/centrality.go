package metrics

import (
	"github.com/weftlabs/strata/internal/core/subgraph"
)

// betweenness computes weighted betweenness centrality (Brandes
// accumulation over Dijkstra shortest paths), normalized by
// (n-1)(n-2) for a directed graph. Degenerate subgraphs with fewer than
// three vertices default every value to 0.0.
func (e *Engine) betweenness(sg *subgraph.Subgraph) map[string]float64 {
	order := sg.Vertices()
	n := len(order)
	scores := make(map[string]float64, n)
	for _, id := range order {
		scores[id] = 0
	}
	if n < 3 {
		return scores
	}

	for _, s := range order {
		_, sigma, preds, settled := dijkstra(sg, s, sg.Successors)

		delta := make(map[string]float64, len(settled))
		for i := len(settled) - 1; i >= 0; i-- {
			w := settled[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				scores[w] += delta[w]
			}
		}
	}

	scale := 1.0 / float64((n-1)*(n-2))
	for id := range scores {
		scores[id] *= scale
	}
	return scores
}

// closeness computes weighted closeness centrality over incoming
// distances, with the reachable-share scaling so partially reachable
// vertices are not overvalued:
//
//	closeness(v) = (r-1)/Σd * (r-1)/(n-1)
//
// where r is the number of vertices that reach v (v included) and Σd the
// sum of their distances. Vertices nothing reaches default to 0.0.
func (e *Engine) closeness(sg *subgraph.Subgraph) map[string]float64 {
	order := sg.Vertices()
	n := len(order)
	scores := make(map[string]float64, n)
	for _, v := range order {
		scores[v] = 0
		if n < 2 {
			continue
		}
		dist, _, _, _ := dijkstra(sg, v, sg.Predecessors)
		total := 0.0
		for _, d := range dist {
			total += d
		}
		if total <= 0 {
			continue
		}
		reached := float64(len(dist) - 1) // dist includes v at 0
		scores[v] = reached / total * (reached / float64(n-1))
	}
	return scores
}

// degreeCentrality is normalized total degree, deg(v)/(n-1). It is
// always defined, which makes it the terminal tier of the eigenvector
// fallback chain.
func degreeCentrality(sg *subgraph.Subgraph) map[string]float64 {
	order := sg.Vertices()
	n := len(order)
	scores := make(map[string]float64, n)
	for _, id := range order {
		if n < 2 {
			scores[id] = 0
			continue
		}
		scores[id] = float64(sg.InDegree(id)+sg.OutDegree(id)) / float64(n-1)
	}
	return scores
}
