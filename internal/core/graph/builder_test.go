package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/model"
)

const snap = "2024-01-01"

func vertexRows() []model.VertexRow {
	return []model.VertexRow{
		{Vertex: "A", Weight: 10, Snapshot: snap},
		{Vertex: "B", Weight: 5, Snapshot: snap},
		{Vertex: "C", Weight: 3, Snapshot: snap},
	}
}

func edgeRows() []model.EdgeRow {
	return []model.EdgeRow{
		{VertexFrom: "A", VertexTo: "B", Snapshot: snap},
		{VertexFrom: "A", VertexTo: "C", Snapshot: snap},
	}
}

func TestBuild_Basic(t *testing.T) {
	g, err := Build(vertexRows(), edgeRows(), snap)
	require.NoError(t, err)

	assert.Equal(t, 3, g.NumVertices())
	assert.Equal(t, 2, g.NumEdges())
	assert.Equal(t, []string{"A", "B", "C"}, g.Vertices())
	assert.Equal(t, 10.0, g.Weight("A"))
	assert.Equal(t, []string{"B", "C"}, g.Successors("A"))
	assert.Equal(t, []string{"A"}, g.Predecessors("B"))
	assert.Equal(t, 0, g.InDegree("A"))
	assert.Equal(t, 2, g.OutDegree("A"))
}

func TestBuild_TrimsAndDropsEmptyIDs(t *testing.T) {
	vertices := []model.VertexRow{
		{Vertex: "  A ", Weight: 1, Snapshot: snap},
		{Vertex: "   ", Weight: 2, Snapshot: snap},
		{Vertex: "B", Weight: 1, Snapshot: snap},
	}
	edges := []model.EdgeRow{
		{VertexFrom: " A", VertexTo: "B ", Snapshot: snap},
		{VertexFrom: "", VertexTo: "B", Snapshot: snap},
	}

	g, err := Build(vertices, edges, snap)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, g.Vertices())
	assert.Equal(t, 1, g.NumEdges())
}

func TestBuild_WeightNormalization(t *testing.T) {
	// Non-positive and non-numeric weights take the documented lossy
	// default of 1.0, never 0.
	vertices := []model.VertexRow{
		{Vertex: "A", Weight: 0, Snapshot: snap},
		{Vertex: "B", Weight: -4, Snapshot: snap},
		{Vertex: "C", Weight: math.NaN(), Snapshot: snap},
		{Vertex: "D", Weight: 2.5, Snapshot: snap},
	}
	edges := []model.EdgeRow{
		{VertexFrom: "A", VertexTo: "B", Snapshot: snap},
		{VertexFrom: "A", VertexTo: "C", Snapshot: snap},
		{VertexFrom: "A", VertexTo: "D", Snapshot: snap},
	}

	g, err := Build(vertices, edges, snap)
	require.NoError(t, err)
	assert.Equal(t, DefaultWeight, g.Weight("A"))
	assert.Equal(t, DefaultWeight, g.Weight("B"))
	assert.Equal(t, DefaultWeight, g.Weight("C"))
	assert.Equal(t, 2.5, g.Weight("D"))
}

func TestBuild_SnapshotFilter(t *testing.T) {
	vertices := append(vertexRows(),
		model.VertexRow{Vertex: "X", Weight: 7, Snapshot: "2024-01-02"},
	)
	edges := edgeRows()

	g, err := Build(vertices, edges, snap)
	require.NoError(t, err)
	assert.False(t, g.HasVertex("X"))
	assert.Equal(t, snap, g.Snapshot())
}

func TestBuild_UnknownSnapshot(t *testing.T) {
	_, err := Build(vertexRows(), edgeRows(), "2030-01-01")
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "snapshot", nf.Kind)
}

func TestBuild_MissingEndpointsReportedAsBatch(t *testing.T) {
	edges := append(edgeRows(),
		model.EdgeRow{VertexFrom: "C", VertexTo: "ghost1", Snapshot: snap},
		model.EdgeRow{VertexFrom: "ghost2", VertexTo: "B", Snapshot: snap},
	)

	_, err := Build(vertexRows(), edges, snap)
	var se *errs.GraphStructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"ghost1", "ghost2"}, se.MissingVertices)
}

func TestBuild_SelfLoopRejected(t *testing.T) {
	edges := append(edgeRows(),
		model.EdgeRow{VertexFrom: "B", VertexTo: "B", Snapshot: snap},
	)

	_, err := Build(vertexRows(), edges, snap)
	var se *errs.GraphStructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"B"}, se.SelfLoops)
}

func TestBuild_MultipleComponents(t *testing.T) {
	vertices := append(vertexRows(),
		model.VertexRow{Vertex: "D", Weight: 1, Snapshot: snap},
		model.VertexRow{Vertex: "E", Weight: 1, Snapshot: snap},
	)
	edges := append(edgeRows(),
		model.EdgeRow{VertexFrom: "D", VertexTo: "E", Snapshot: snap},
	)

	_, err := Build(vertices, edges, snap)
	var se *errs.GraphStructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.ComponentCount)
}

func TestBuild_EmptyVertexSet(t *testing.T) {
	_, err := Build(nil, nil, "")
	var se *errs.GraphStructureError
	require.ErrorAs(t, err, &se)
}

func TestBuild_DuplicateEdgesCollapse(t *testing.T) {
	edges := append(edgeRows(), edgeRows()...)
	g, err := Build(vertexRows(), edges, snap)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumEdges())
}

func TestBuild_DuplicateVertexLastWeightWins(t *testing.T) {
	vertices := append(vertexRows(),
		model.VertexRow{Vertex: "A", Weight: 99, Snapshot: snap},
	)
	g, err := Build(vertices, edgeRows(), snap)
	require.NoError(t, err)
	assert.Equal(t, 99.0, g.Weight("A"))
	assert.Equal(t, []string{"A", "B", "C"}, g.Vertices())
}
