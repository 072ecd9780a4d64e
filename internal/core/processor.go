// Package core orchestrates one processing pipeline: tabular rows in,
// per-snapshot graphs, bounded-depth extraction, metrics, result record
// out. Every call works on private state, so independent requests can
// run concurrently against separate processors, and a shared processor
// is safe behind its internal lock.
package core

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/graph"
	"github.com/weftlabs/strata/internal/core/metrics"
	"github.com/weftlabs/strata/internal/core/model"
	"github.com/weftlabs/strata/internal/core/subgraph"
)

// Unbounded requests the full descendant closure.
const Unbounded = subgraph.Unbounded

type cacheKey struct {
	snapshot string
	vertex   string
}

// Processor owns a loaded dataset: one graph per snapshot plus a
// write-once cache of full-closure subgraph results keyed by
// (snapshot, vertex). The cache is invalidated wholesale on every
// reload, never partially updated.
type Processor struct {
	log    *zap.Logger
	engine *metrics.Engine

	mu     sync.RWMutex
	graphs map[string]*graph.Graph
	cache  map[cacheKey]model.SubgraphResult
}

// NewProcessor builds a processor around the given logger and metrics
// engine. Both are owned by the caller.
func NewProcessor(log *zap.Logger, engine *metrics.Engine) *Processor {
	return &Processor{
		log:    log,
		engine: engine,
		graphs: make(map[string]*graph.Graph),
		cache:  make(map[cacheKey]model.SubgraphResult),
	}
}

// Load validates and partitions the tables by snapshot, builds every
// snapshot graph, and replaces the previously loaded dataset. A
// validation or structural failure in any snapshot fails the whole load
// and leaves the previous dataset in place.
func (p *Processor) Load(vertexRows []model.VertexRow, edgeRows []model.EdgeRow) error {
	if len(vertexRows) == 0 {
		return errs.Validation("vertex table is empty")
	}

	vertexSnaps := make(map[string]bool)
	for i, row := range vertexRows {
		key := strings.TrimSpace(row.Snapshot)
		if key == "" {
			return errs.Validation("vertex row %d is missing its snapshot key", i)
		}
		vertexSnaps[key] = true
	}
	edgeSnaps := make(map[string]bool)
	for i, row := range edgeRows {
		key := strings.TrimSpace(row.Snapshot)
		if key == "" {
			return errs.Validation("edge row %d is missing its snapshot key", i)
		}
		edgeSnaps[key] = true
	}
	if len(edgeRows) > 0 {
		shared := false
		for key := range edgeSnaps {
			if vertexSnaps[key] {
				shared = true
				break
			}
		}
		if !shared {
			return errs.Validation("no matching snapshots between vertex and edge data")
		}
	}

	keys := make([]string, 0, len(vertexSnaps))
	for key := range vertexSnaps {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	graphs := make(map[string]*graph.Graph, len(keys))
	for _, key := range keys {
		g, err := graph.Build(vertexRows, edgeRows, key)
		if err != nil {
			return err
		}
		graphs[key] = g
	}

	p.mu.Lock()
	p.graphs = graphs
	p.invalidateLocked()
	p.mu.Unlock()

	p.log.Info("dataset loaded",
		zap.Int("snapshots", len(graphs)),
		zap.Int("vertex_rows", len(vertexRows)),
		zap.Int("edge_rows", len(edgeRows)),
	)
	return nil
}

// invalidateLocked wipes the closure cache. Callers hold p.mu.
func (p *Processor) invalidateLocked() {
	p.cache = make(map[cacheKey]model.SubgraphResult)
}

// Snapshots returns the loaded snapshot keys in sorted order.
func (p *Processor) Snapshots() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.graphs))
	for key := range p.graphs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Process runs one extraction-and-metrics pass. An empty snapshot is
// accepted only when exactly one snapshot is loaded; an empty rootNode
// defers to default root resolution. maxDepth is Unbounded or a
// non-negative depth. The second return reports whether the full-closure
// cache already held the subgraph result.
func (p *Processor) Process(snapshot, rootNode string, maxDepth int) (model.ResultRecord, bool, error) {
	g, key, err := p.snapshotGraph(snapshot)
	if err != nil {
		return model.ResultRecord{}, false, err
	}

	root, err := subgraph.ResolveRoot(g, strings.TrimSpace(rootNode))
	if err != nil {
		return model.ResultRecord{}, false, err
	}

	sg, err := subgraph.Extract(g, root, maxDepth)
	if err != nil {
		return model.ResultRecord{}, false, err
	}

	var res model.SubgraphResult
	cacheHit := false
	if maxDepth == Unbounded {
		res, cacheHit = p.rememberClosure(key, root, sg)
	} else {
		res = sg.Result()
	}

	nodes, network := p.engine.Compute(sg)
	record := Assemble(res, nodes, network)

	p.log.Debug("processed subgraph",
		zap.String("snapshot", key),
		zap.String("root", root),
		zap.Int("nodes", network.TotalNodes),
		zap.Int("edges", network.TotalEdges),
		zap.Bool("cache_hit", cacheHit),
	)
	return record, cacheHit, nil
}

// ExportRows dumps the full-closure aggregates of every vertex of the
// requested snapshot, or of all loaded snapshots when snapshot is empty.
// Results are memoized across vertices, so shared descendants are
// extracted once.
func (p *Processor) ExportRows(snapshot string) ([]model.ExportRow, error) {
	// Keys and graphs are resolved under one lock so a concurrent reload
	// cannot leave a key without its graph.
	var keys []string
	targets := make(map[string]*graph.Graph)
	if strings.TrimSpace(snapshot) != "" {
		g, key, err := p.snapshotGraph(snapshot)
		if err != nil {
			return nil, err
		}
		keys = []string{key}
		targets[key] = g
	} else {
		p.mu.RLock()
		for key, g := range p.graphs {
			keys = append(keys, key)
			targets[key] = g
		}
		p.mu.RUnlock()
		if len(keys) == 0 {
			return nil, errs.Validation("no dataset loaded")
		}
		sort.Strings(keys)
	}

	var rows []model.ExportRow
	for _, key := range keys {
		g := targets[key]
		for _, id := range g.Vertices() {
			res, err := p.closureResult(key, id, g)
			if err != nil {
				return nil, err
			}
			rows = append(rows, model.ExportRow{
				Snapshot:        key,
				Node:            id,
				NodeWeight:      res.NodeWeight,
				SubgraphWeight:  res.SubgraphWeight,
				DescendantCount: len(res.Nodes) - 1,
			})
		}
	}
	return rows, nil
}

// closureResult returns the memoized full-closure result for a vertex,
// extracting it only on a cache miss.
func (p *Processor) closureResult(snapshot, vertex string, g *graph.Graph) (model.SubgraphResult, error) {
	k := cacheKey{snapshot: snapshot, vertex: vertex}
	p.mu.RLock()
	res, ok := p.cache[k]
	p.mu.RUnlock()
	if ok {
		return res, nil
	}
	sg, err := subgraph.Extract(g, vertex, Unbounded)
	if err != nil {
		return model.SubgraphResult{}, err
	}
	res, _ = p.rememberClosure(snapshot, vertex, sg)
	return res, nil
}

// rememberClosure returns the cached full-closure result for the vertex,
// or folds the extracted subgraph into one and stores it. Entries are
// write-once: a concurrent first writer wins and later results are
// discarded in favor of the stored one.
func (p *Processor) rememberClosure(snapshot, vertex string, sg *subgraph.Subgraph) (model.SubgraphResult, bool) {
	k := cacheKey{snapshot: snapshot, vertex: vertex}
	p.mu.RLock()
	res, ok := p.cache[k]
	p.mu.RUnlock()
	if ok {
		return res, true
	}

	res = sg.Result()
	p.mu.Lock()
	if stored, ok := p.cache[k]; ok {
		res = stored
	} else {
		p.cache[k] = res
	}
	p.mu.Unlock()
	return res, false
}

// snapshotGraph resolves the target snapshot. An empty key is only
// unambiguous when a single snapshot is loaded.
func (p *Processor) snapshotGraph(snapshot string) (*graph.Graph, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.graphs) == 0 {
		return nil, "", errs.Validation("no dataset loaded")
	}

	key := strings.TrimSpace(snapshot)
	if key == "" {
		if len(p.graphs) > 1 {
			return nil, "", errs.InvalidParameter("snapshot", "required when %d snapshots are loaded", len(p.graphs))
		}
		for k := range p.graphs {
			key = k
		}
	}
	g, ok := p.graphs[key]
	if !ok {
		return nil, "", errs.NotFound("snapshot", key)
	}
	return g, key, nil
}
