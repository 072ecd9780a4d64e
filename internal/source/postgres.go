package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/model"
)

// DBPool is the slice of pgxpool.Pool the loader needs. Tests inject a
// pgxmock pool through it.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// SQLLoader runs the configured vertex and edge queries against Postgres.
type SQLLoader struct {
	spec Spec
	log  *zap.Logger

	// Pool overrides DSN-based connection when set.
	Pool DBPool
}

func (l *SQLLoader) Load(ctx context.Context) ([]model.VertexRow, []model.EdgeRow, error) {
	pool := l.Pool
	if pool == nil {
		p, err := pgxpool.New(ctx, l.spec.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		defer p.Close()
		pool = p
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	vertices, err := l.queryVertices(ctx, pool)
	if err != nil {
		return nil, nil, err
	}
	edges, err := l.queryEdges(ctx, pool)
	if err != nil {
		return nil, nil, err
	}
	l.log.Debug("loaded tables from postgres",
		zap.Int("vertices", len(vertices)),
		zap.Int("edges", len(edges)))
	return vertices, edges, nil
}

func (l *SQLLoader) queryVertices(ctx context.Context, pool DBPool) ([]model.VertexRow, error) {
	rows, err := pool.Query(ctx, l.spec.VertexSQL)
	if err != nil {
		return nil, fmt.Errorf("vertex query: %w", err)
	}
	defer rows.Close()

	idx, err := columnIndex(rows, "vertex table", colVertex, colWeight, colSnapshot)
	if err != nil {
		return nil, err
	}
	var out []model.VertexRow
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("vertex row: %w", err)
		}
		out = append(out, model.VertexRow{
			Vertex:   coerceID(vals[idx[colVertex]]),
			Weight:   coerceWeight(vals[idx[colWeight]]),
			Snapshot: coerceSnapshot(vals[idx[colSnapshot]]),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vertex rows: %w", err)
	}
	return out, nil
}

func (l *SQLLoader) queryEdges(ctx context.Context, pool DBPool) ([]model.EdgeRow, error) {
	rows, err := pool.Query(ctx, l.spec.EdgeSQL)
	if err != nil {
		return nil, fmt.Errorf("edge query: %w", err)
	}
	defer rows.Close()

	idx, err := columnIndex(rows, "edge table", colVertexFrom, colVertexTo, colSnapshot)
	if err != nil {
		return nil, err
	}
	var out []model.EdgeRow
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("edge row: %w", err)
		}
		out = append(out, model.EdgeRow{
			VertexFrom: coerceID(vals[idx[colVertexFrom]]),
			VertexTo:   coerceID(vals[idx[colVertexTo]]),
			Snapshot:   coerceSnapshot(vals[idx[colSnapshot]]),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("edge rows: %w", err)
	}
	return out, nil
}

// columnIndex maps the required column names to result positions,
// matching case-insensitively so quoted and unquoted SQL both work.
func columnIndex(rows pgx.Rows, table string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(required))
	for i, fd := range rows.FieldDescriptions() {
		idx[strings.ToLower(fd.Name)] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errs.Validation("%s query is missing columns: %s", table, strings.Join(missing, ", "))
	}
	return idx, nil
}
