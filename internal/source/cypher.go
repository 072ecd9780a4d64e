package source

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/model"
)

// CypherLoader runs the configured vertex and edge queries against a
// Neo4j-compatible graph store. Each query must return records keyed by
// the standard column names (vertex, weight, snapshot / vertex_from,
// vertex_to, snapshot).
type CypherLoader struct {
	spec Spec
	log  *zap.Logger
}

func (l *CypherLoader) Load(ctx context.Context) ([]model.VertexRow, []model.EdgeRow, error) {
	driver, err := neo4j.NewDriverWithContext(l.spec.URI, neo4j.BasicAuth(l.spec.User, l.spec.Password, ""))
	if err != nil {
		return nil, nil, fmt.Errorf("connect graph store: %w", err)
	}
	defer driver.Close(ctx)

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, nil, fmt.Errorf("verify graph store connectivity: %w", err)
	}

	vertexRecords, err := l.run(ctx, driver, l.spec.VertexCypher)
	if err != nil {
		return nil, nil, fmt.Errorf("vertex query: %w", err)
	}
	edgeRecords, err := l.run(ctx, driver, l.spec.EdgeCypher)
	if err != nil {
		return nil, nil, fmt.Errorf("edge query: %w", err)
	}

	vertices, err := vertexRowsFromRecords(vertexRecords)
	if err != nil {
		return nil, nil, err
	}
	edges, err := edgeRowsFromRecords(edgeRecords)
	if err != nil {
		return nil, nil, err
	}

	l.log.Debug("loaded tables from graph store",
		zap.Int("vertices", len(vertices)),
		zap.Int("edges", len(edges)))
	return vertices, edges, nil
}

// vertexRowsFromRecords maps query records onto vertex rows. All three
// columns are mandatory; an absent key is a validation failure, never a
// silent default.
func vertexRowsFromRecords(records []*neo4j.Record) ([]model.VertexRow, error) {
	rows := make([]model.VertexRow, 0, len(records))
	for _, rec := range records {
		id, ok := rec.Get(colVertex)
		if !ok {
			return nil, errs.Validation("vertex query must return a %q column", colVertex)
		}
		weight, ok := rec.Get(colWeight)
		if !ok {
			return nil, errs.Validation("vertex query must return a %q column", colWeight)
		}
		snap, ok := rec.Get(colSnapshot)
		if !ok {
			return nil, errs.Validation("vertex query must return a %q column", colSnapshot)
		}
		rows = append(rows, model.VertexRow{
			Vertex:   coerceID(id),
			Weight:   coerceWeight(weight),
			Snapshot: coerceSnapshot(snap),
		})
	}
	return rows, nil
}

func edgeRowsFromRecords(records []*neo4j.Record) ([]model.EdgeRow, error) {
	rows := make([]model.EdgeRow, 0, len(records))
	for _, rec := range records {
		from, okFrom := rec.Get(colVertexFrom)
		to, okTo := rec.Get(colVertexTo)
		if !okFrom || !okTo {
			return nil, errs.Validation("edge query must return %q and %q columns", colVertexFrom, colVertexTo)
		}
		snap, ok := rec.Get(colSnapshot)
		if !ok {
			return nil, errs.Validation("edge query must return a %q column", colSnapshot)
		}
		rows = append(rows, model.EdgeRow{
			VertexFrom: coerceID(from),
			VertexTo:   coerceID(to),
			Snapshot:   coerceSnapshot(snap),
		})
	}
	return rows, nil
}

func (l *CypherLoader) run(ctx context.Context, driver neo4j.DriverWithContext, query string) ([]*neo4j.Record, error) {
	result, err := neo4j.ExecuteQuery(ctx, driver, query, nil, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}
