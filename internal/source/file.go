package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/model"
)

// FileLoader reads both tables from headered CSV files. Column order is
// free; header names select the fields.
type FileLoader struct {
	spec Spec
}

func (l *FileLoader) Load(ctx context.Context) ([]model.VertexRow, []model.EdgeRow, error) {
	vertices, err := l.loadVertices()
	if err != nil {
		return nil, nil, err
	}
	edges, err := l.loadEdges()
	if err != nil {
		return nil, nil, err
	}
	return vertices, edges, nil
}

func (l *FileLoader) loadVertices() ([]model.VertexRow, error) {
	records, idx, err := readCSV(l.spec.VertexFile, "vertex file", colVertex, colWeight, colSnapshot)
	if err != nil {
		return nil, err
	}
	out := make([]model.VertexRow, 0, len(records))
	for _, rec := range records {
		out = append(out, model.VertexRow{
			Vertex:   coerceID(rec[idx[colVertex]]),
			Weight:   coerceWeight(rec[idx[colWeight]]),
			Snapshot: coerceSnapshot(rec[idx[colSnapshot]]),
		})
	}
	return out, nil
}

func (l *FileLoader) loadEdges() ([]model.EdgeRow, error) {
	records, idx, err := readCSV(l.spec.EdgeFile, "edge file", colVertexFrom, colVertexTo, colSnapshot)
	if err != nil {
		return nil, err
	}
	out := make([]model.EdgeRow, 0, len(records))
	for _, rec := range records {
		out = append(out, model.EdgeRow{
			VertexFrom: coerceID(rec[idx[colVertexFrom]]),
			VertexTo:   coerceID(rec[idx[colVertexTo]]),
			Snapshot:   coerceSnapshot(rec[idx[colSnapshot]]),
		})
	}
	return out, nil
}

// readCSV returns the data records plus a header index for the required
// columns.
func readCSV(path, table string, required ...string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", table, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, nil, errs.Validation("%s %q has no header row", table, path)
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errs.Validation("%s is missing columns: %s", table, strings.Join(missing, ", "))
	}
	return rows[1:], idx, nil
}
