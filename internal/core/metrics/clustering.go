package metrics

import (
	"github.com/weftlabs/strata/internal/core/subgraph"
)

// localClustering computes the directed local clustering coefficient per
// vertex (Fagiolo's generalization): the count of directed triangles
// through the vertex over the number that could exist given its degree,
// discounting reciprocal edges. Vertices where the measure is undefined
// (degree below two) default to 0.0.
func localClustering(sg *subgraph.Subgraph) map[string]float64 {
	scores := make(map[string]float64, sg.NumVertices())
	for _, v := range sg.Vertices() {
		scores[v] = clusteringOf(sg, v)
	}
	return scores
}

func clusteringOf(sg *subgraph.Subgraph, v string) float64 {
	succ := memberSet(sg.Successors(v))
	pred := memberSet(sg.Predecessors(v))

	dtot := len(sg.Successors(v)) + len(sg.Predecessors(v))
	dbidir := 0
	for u := range succ {
		if pred[u] {
			dbidir++
		}
	}
	denom := dtot*(dtot-1) - 2*dbidir
	if denom <= 0 {
		return 0
	}

	neighbors := make([]string, 0, len(succ)+len(pred))
	seen := make(map[string]bool, len(succ)+len(pred))
	for u := range succ {
		if !seen[u] {
			seen[u] = true
			neighbors = append(neighbors, u)
		}
	}
	for u := range pred {
		if !seen[u] {
			seen[u] = true
			neighbors = append(neighbors, u)
		}
	}

	// Triangle mass: sum over ordered neighbor pairs (j,k) of
	// b(v,j)*b(j,k)*b(k,v), where b counts edges in both directions.
	triangles := 0
	for _, j := range neighbors {
		bj := edgeMass(sg, v, j)
		for _, k := range neighbors {
			if j == k {
				continue
			}
			m := edgeMass(sg, j, k)
			if m == 0 {
				continue
			}
			triangles += bj * m * edgeMass(sg, k, v)
		}
	}
	return float64(triangles) / float64(2*denom)
}

// edgeMass counts the directed edges between a and b in either
// direction: 0, 1 or 2.
func edgeMass(sg *subgraph.Subgraph, a, b string) int {
	mass := 0
	for _, v := range sg.Successors(a) {
		if v == b {
			mass++
			break
		}
	}
	for _, v := range sg.Successors(b) {
		if v == a {
			mass++
			break
		}
	}
	return mass
}

func memberSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
