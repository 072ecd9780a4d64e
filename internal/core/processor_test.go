package core

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/metrics"
	"github.com/weftlabs/strata/internal/core/model"
)

const (
	snapA = "2024-01-01"
	snapB = "2024-01-02"
)

func testRows() ([]model.VertexRow, []model.EdgeRow) {
	vertices := []model.VertexRow{
		{Vertex: "A", Weight: 10, Snapshot: snapA},
		{Vertex: "B", Weight: 5, Snapshot: snapA},
		{Vertex: "C", Weight: 3, Snapshot: snapA},
		{Vertex: "X", Weight: 7, Snapshot: snapB},
		{Vertex: "Y", Weight: 2, Snapshot: snapB},
	}
	edges := []model.EdgeRow{
		{VertexFrom: "A", VertexTo: "B", Snapshot: snapA},
		{VertexFrom: "A", VertexTo: "C", Snapshot: snapA},
		{VertexFrom: "X", VertexTo: "Y", Snapshot: snapB},
	}
	return vertices, edges
}

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	return NewProcessor(zap.NewNop(), metrics.NewEngine())
}

func TestProcessor_LoadAndSnapshots(t *testing.T) {
	p := newTestProcessor(t)
	vertices, edges := testRows()
	require.NoError(t, p.Load(vertices, edges))
	assert.Equal(t, []string{snapA, snapB}, p.Snapshots())
}

func TestProcessor_ProcessExampleScenario(t *testing.T) {
	p := newTestProcessor(t)
	vertices, edges := testRows()
	require.NoError(t, p.Load(vertices, edges))

	record, _, err := p.Process(snapA, "A", 1)
	require.NoError(t, err)
	assert.Equal(t, "A", record.RootNode)
	assert.Equal(t, 10.0, record.NodeWeight)
	assert.Equal(t, 18.0, record.SubgraphWeight)
	assert.Len(t, record.Nodes, 3)
	assert.Len(t, record.Edges, 2)
	assert.Equal(t, 3, record.NetworkMetrics.TotalNodes)
	assert.Equal(t, 2, record.NetworkMetrics.TotalEdges)
	assert.InDelta(t, 1.0/3.0, record.NetworkMetrics.Density, 1e-12)

	record, _, err = p.Process(snapA, "A", 0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, record.SubgraphWeight)
	assert.Len(t, record.Nodes, 1)
	assert.Empty(t, record.Edges)
}

func TestProcessor_DefaultRoot(t *testing.T) {
	p := newTestProcessor(t)
	vertices, edges := testRows()
	require.NoError(t, p.Load(vertices, edges))

	record, _, err := p.Process(snapB, "", Unbounded)
	require.NoError(t, err)
	assert.Equal(t, "X", record.RootNode)
}

func TestProcessor_SnapshotRequiredWhenAmbiguous(t *testing.T) {
	p := newTestProcessor(t)
	vertices, edges := testRows()
	require.NoError(t, p.Load(vertices, edges))

	_, _, err := p.Process("", "", Unbounded)
	var ip *errs.InvalidParameterError
	require.ErrorAs(t, err, &ip)
	assert.Equal(t, "snapshot", ip.Param)
}

func TestProcessor_SingleSnapshotIsImplicit(t *testing.T) {
	p := newTestProcessor(t)
	vertices := []model.VertexRow{
		{Vertex: "A", Weight: 1, Snapshot: snapA},
		{Vertex: "B", Weight: 2, Snapshot: snapA},
	}
	edges := []model.EdgeRow{{VertexFrom: "A", VertexTo: "B", Snapshot: snapA}}
	require.NoError(t, p.Load(vertices, edges))

	record, _, err := p.Process("", "", Unbounded)
	require.NoError(t, err)
	assert.Equal(t, "A", record.RootNode)
	assert.Equal(t, 3.0, record.SubgraphWeight)
}

func TestProcessor_Errors(t *testing.T) {
	p := newTestProcessor(t)

	_, _, err := p.Process(snapA, "", Unbounded)
	var ve *errs.DataValidationError
	require.ErrorAs(t, err, &ve) // nothing loaded yet

	vertices, edges := testRows()
	require.NoError(t, p.Load(vertices, edges))

	_, _, err = p.Process("2030-01-01", "", Unbounded)
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)

	_, _, err = p.Process(snapA, "ghost", Unbounded)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.Key)

	_, _, err = p.Process(snapA, "A", -7)
	var ip *errs.InvalidParameterError
	require.ErrorAs(t, err, &ip)
}

func TestProcessor_LoadRejectsDisjointSnapshots(t *testing.T) {
	p := newTestProcessor(t)
	vertices := []model.VertexRow{{Vertex: "A", Weight: 1, Snapshot: snapA}}
	edges := []model.EdgeRow{{VertexFrom: "A", VertexTo: "B", Snapshot: snapB}}

	err := p.Load(vertices, edges)
	var ve *errs.DataValidationError
	require.ErrorAs(t, err, &ve)
}

func TestProcessor_LoadFailsOnDisconnectedSnapshot(t *testing.T) {
	// Second snapshot splits into two components; the whole load fails
	// with the component count.
	p := newTestProcessor(t)
	vertices := []model.VertexRow{
		{Vertex: "A", Weight: 1, Snapshot: snapA},
		{Vertex: "B", Weight: 1, Snapshot: snapA},
		{Vertex: "P", Weight: 1, Snapshot: snapB},
		{Vertex: "Q", Weight: 1, Snapshot: snapB},
		{Vertex: "R", Weight: 1, Snapshot: snapB},
		{Vertex: "S", Weight: 1, Snapshot: snapB},
	}
	edges := []model.EdgeRow{
		{VertexFrom: "A", VertexTo: "B", Snapshot: snapA},
		{VertexFrom: "P", VertexTo: "Q", Snapshot: snapB},
		{VertexFrom: "R", VertexTo: "S", Snapshot: snapB},
	}

	err := p.Load(vertices, edges)
	var se *errs.GraphStructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.ComponentCount)
}

func TestProcessor_CacheAndInvalidation(t *testing.T) {
	p := newTestProcessor(t)
	vertices, edges := testRows()
	require.NoError(t, p.Load(vertices, edges))

	_, hit, err := p.Process(snapA, "A", Unbounded)
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = p.Process(snapA, "A", Unbounded)
	require.NoError(t, err)
	assert.True(t, hit)

	// Reload wipes the cache wholesale.
	require.NoError(t, p.Load(vertices, edges))
	_, hit, err = p.Process(snapA, "A", Unbounded)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestProcessor_CacheReflectsReloadedWeights(t *testing.T) {
	p := newTestProcessor(t)
	vertices, edges := testRows()
	require.NoError(t, p.Load(vertices, edges))

	record, _, err := p.Process(snapA, "A", Unbounded)
	require.NoError(t, err)
	assert.Equal(t, 18.0, record.SubgraphWeight)

	vertices[1].Weight = 50 // B: 5 -> 50
	require.NoError(t, p.Load(vertices, edges))

	record, _, err = p.Process(snapA, "A", Unbounded)
	require.NoError(t, err)
	assert.Equal(t, 63.0, record.SubgraphWeight)
}

func TestProcessor_ExportRows(t *testing.T) {
	p := newTestProcessor(t)
	vertices, edges := testRows()
	require.NoError(t, p.Load(vertices, edges))

	rows, err := p.ExportRows(snapA)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, model.ExportRow{
		Snapshot: snapA, Node: "A", NodeWeight: 10, SubgraphWeight: 18, DescendantCount: 2,
	}, rows[0])
	assert.Equal(t, model.ExportRow{
		Snapshot: snapA, Node: "B", NodeWeight: 5, SubgraphWeight: 5, DescendantCount: 0,
	}, rows[1])

	all, err := p.ExportRows("")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = p.ExportRows("2030-01-01")
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestAssemble_FieldIdentities(t *testing.T) {
	res := model.SubgraphResult{
		Root:           "A",
		NodeWeight:     10,
		SubgraphWeight: 18,
		Edges:          []model.Edge{{From: "A", To: "B"}},
	}
	record := Assemble(res, []model.NodeMetrics{{Node: "A"}}, model.NetworkMetrics{TotalNodes: 1})

	// External consumers key off exact field names.
	raw, err := json.Marshal(record)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, field := range []string{"root_node", "node_weight", "subgraph_weight", "nodes", "edges", "network_metrics"} {
		assert.Contains(t, decoded, field)
	}
	network := decoded["network_metrics"].(map[string]any)
	for _, field := range []string{"total_nodes", "total_edges", "average_degree", "density", "average_clustering", "average_shortest_path"} {
		assert.Contains(t, network, field)
	}
	assert.Nil(t, network["average_shortest_path"])
}

func TestProcessor_ExportRowsDuringReload(t *testing.T) {
	p := newTestProcessor(t)
	vertices, edges := testRows()
	require.NoError(t, p.Load(vertices, edges))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			assert.NoError(t, p.Load(vertices, edges))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			rows, err := p.ExportRows("")
			assert.NoError(t, err)
			assert.Len(t, rows, 5)
		}
	}()
	wg.Wait()
}
