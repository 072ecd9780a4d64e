// Package source loads vertex and edge tables from one of several data
// backends. The source kind is an explicit discriminant on the request,
// never inferred by probing fields.
package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/model"
)

// Type discriminates the source variants.
type Type string

const (
	TypeSQL    Type = "sql"
	TypeCypher Type = "cypher"
	TypeFile   Type = "file"
	TypeInline Type = "inline"
)

// Spec is the tagged source configuration carried on a request. Exactly
// the fields of the selected Type are consulted.
type Spec struct {
	Type Type `json:"type"`

	// sql
	DSN       string `json:"dsn,omitempty"`
	VertexSQL string `json:"vertex_sql,omitempty"`
	EdgeSQL   string `json:"edge_sql,omitempty"`

	// cypher
	URI          string `json:"uri,omitempty"`
	User         string `json:"user,omitempty"`
	Password     string `json:"password,omitempty"`
	VertexCypher string `json:"vertex_cypher,omitempty"`
	EdgeCypher   string `json:"edge_cypher,omitempty"`

	// file
	VertexFile string `json:"vertex_file,omitempty"`
	EdgeFile   string `json:"edge_file,omitempty"`

	// inline
	VertexData []model.VertexRow `json:"vertex_data,omitempty"`
	EdgeData   []model.EdgeRow   `json:"edge_data,omitempty"`
}

// Validate checks that the fields of the selected variant are present.
func (s Spec) Validate() error {
	switch s.Type {
	case TypeSQL:
		if s.DSN == "" || s.VertexSQL == "" || s.EdgeSQL == "" {
			return errs.Validation("sql source requires dsn, vertex_sql and edge_sql")
		}
	case TypeCypher:
		if s.URI == "" || s.VertexCypher == "" || s.EdgeCypher == "" {
			return errs.Validation("cypher source requires uri, vertex_cypher and edge_cypher")
		}
	case TypeFile:
		if s.VertexFile == "" || s.EdgeFile == "" {
			return errs.Validation("file source requires vertex_file and edge_file")
		}
	case TypeInline:
		if len(s.VertexData) == 0 {
			return errs.Validation("inline source requires vertex_data")
		}
	default:
		return errs.Validation("unknown source type %q", string(s.Type))
	}
	return nil
}

// Loader fetches both tables from a backend.
type Loader interface {
	Load(ctx context.Context) (vertices []model.VertexRow, edges []model.EdgeRow, err error)
}

// NewLoader builds the loader for a validated spec.
func NewLoader(spec Spec, log *zap.Logger) (Loader, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	switch spec.Type {
	case TypeSQL:
		return &SQLLoader{spec: spec, log: log.Named("source.sql")}, nil
	case TypeCypher:
		return &CypherLoader{spec: spec, log: log.Named("source.cypher")}, nil
	case TypeFile:
		return &FileLoader{spec: spec}, nil
	default:
		return &InlineLoader{spec: spec}, nil
	}
}

// InlineLoader serves rows embedded in the request body.
type InlineLoader struct {
	spec Spec
}

func (l *InlineLoader) Load(context.Context) ([]model.VertexRow, []model.EdgeRow, error) {
	return l.spec.VertexData, l.spec.EdgeData, nil
}
