package metrics

import (
	"container/heap"

	"github.com/weftlabs/strata/internal/core/subgraph"
)

// Every edge has unit length: the data model carries vertex weights, not
// edge weights, so shortest-path distance is hop count. The Dijkstra
// machinery is kept so centrality stays correct if edge lengths ever
// stop being uniform.
func edgeLength(from, to string) float64 { return 1.0 }

// bfsDistances returns hop distances from src to every reachable vertex,
// excluding src itself.
func bfsDistances(sg *subgraph.Subgraph, src string) map[string]int {
	dist := map[string]int{src: 0}
	queue := []string{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range sg.Successors(u) {
			if _, seen := dist[v]; !seen {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
	delete(dist, src)
	return dist
}

// stronglyConnected reports whether every vertex reaches every other.
// One forward and one reverse traversal from an arbitrary vertex suffice.
func stronglyConnected(sg *subgraph.Subgraph) bool {
	order := sg.Vertices()
	if len(order) == 0 {
		return false
	}
	reach := func(neighbors func(string) []string) int {
		visited := map[string]bool{order[0]: true}
		queue := []string{order[0]}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range neighbors(u) {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
		}
		return len(visited)
	}
	n := len(order)
	return reach(sg.Successors) == n && reach(sg.Predecessors) == n
}

// distItem is one priority-queue entry for Dijkstra.
type distItem struct {
	id   string
	dist float64
}

type distQueue []distItem

func (q distQueue) Len() int            { return len(q) }
func (q distQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q distQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x any)         { *q = append(*q, x.(distItem)) }
func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// dijkstra computes weighted shortest paths from src, following either
// successors or predecessors. It returns final distances, the number of
// shortest paths per vertex, the shortest-path predecessors, and the
// vertices in non-decreasing settle order (for Brandes accumulation).
func dijkstra(sg *subgraph.Subgraph, src string, neighbors func(string) []string) (
	dist map[string]float64, sigma map[string]float64, preds map[string][]string, settled []string,
) {
	dist = make(map[string]float64)
	sigma = map[string]float64{src: 1}
	preds = make(map[string][]string)
	seen := map[string]float64{src: 0}

	q := &distQueue{{id: src, dist: 0}}
	heap.Init(q)

	for q.Len() > 0 {
		item := heap.Pop(q).(distItem)
		u := item.id
		if _, done := dist[u]; done {
			continue
		}
		dist[u] = item.dist
		settled = append(settled, u)

		for _, v := range neighbors(u) {
			if _, done := dist[v]; done {
				continue
			}
			d := item.dist + edgeLength(u, v)
			prev, known := seen[v]
			switch {
			case !known || d < prev:
				seen[v] = d
				sigma[v] = sigma[u]
				preds[v] = []string{u}
				heap.Push(q, distItem{id: v, dist: d})
			case d == prev:
				sigma[v] += sigma[u]
				preds[v] = append(preds[v], u)
			}
		}
	}
	return dist, sigma, preds, settled
}
