package source

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/model"
)

func cypherRecord(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func TestVertexRowsFromRecords(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []*neo4j.Record{
		cypherRecord([]string{"vertex", "weight", "snapshot"}, "A", int64(10), day),
		cypherRecord([]string{"vertex", "weight", "snapshot"}, " B ", 2.5, "2024-01-01"),
	}

	rows, err := vertexRowsFromRecords(records)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.VertexRow{Vertex: "A", Weight: 10, Snapshot: "2024-01-01"}, rows[0])
	assert.Equal(t, model.VertexRow{Vertex: "B", Weight: 2.5, Snapshot: "2024-01-01"}, rows[1])
}

func TestVertexRowsFromRecordsMissingWeight(t *testing.T) {
	records := []*neo4j.Record{
		cypherRecord([]string{"vertex", "snapshot"}, "A", "2024-01-01"),
	}

	_, err := vertexRowsFromRecords(records)
	var verr *errs.DataValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), `"weight"`)
}

func TestVertexRowsFromRecordsMissingColumns(t *testing.T) {
	_, err := vertexRowsFromRecords([]*neo4j.Record{
		cypherRecord([]string{"weight", "snapshot"}, 1.0, "s1"),
	})
	var verr *errs.DataValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), `"vertex"`)

	_, err = vertexRowsFromRecords([]*neo4j.Record{
		cypherRecord([]string{"vertex", "weight"}, "A", 1.0),
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), `"snapshot"`)
}

func TestEdgeRowsFromRecords(t *testing.T) {
	rows, err := edgeRowsFromRecords([]*neo4j.Record{
		cypherRecord([]string{"vertex_from", "vertex_to", "snapshot"}, "A", "B", "s1"),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.EdgeRow{VertexFrom: "A", VertexTo: "B", Snapshot: "s1"}, rows[0])

	_, err = edgeRowsFromRecords([]*neo4j.Record{
		cypherRecord([]string{"vertex_from", "snapshot"}, "A", "s1"),
	})
	var verr *errs.DataValidationError
	require.ErrorAs(t, err, &verr)

	_, err = edgeRowsFromRecords([]*neo4j.Record{
		cypherRecord([]string{"vertex_from", "vertex_to"}, "A", "B"),
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), `"snapshot"`)
}
