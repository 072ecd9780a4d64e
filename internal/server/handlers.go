package server

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/weftlabs/strata/internal/core"
	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/source"
	"github.com/weftlabs/strata/internal/track"
)

// ProcessGraphRequest drives a full load-and-process cycle. Source is
// optional; when absent the previously loaded tables are reused.
// MaxDepth is bound as a raw JSON number so a fractional depth is
// reported as an invalid parameter rather than a decode failure.
type ProcessGraphRequest struct {
	Source   *source.Spec `json:"source,omitempty"`
	Snapshot string       `json:"snapshot,omitempty"`
	RootNode string       `json:"root_node,omitempty"`
	MaxDepth *json.Number `json:"max_depth,omitempty"`
}

func (s *Server) ProcessGraph(c *gin.Context) {
	start := time.Now()
	var req ProcessGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWith(c, errs.Validation("invalid request body: %v", err))
		return
	}

	maxDepth := core.Unbounded
	if req.MaxDepth != nil {
		d, err := strconv.Atoi(req.MaxDepth.String())
		if err != nil {
			s.abortWith(c, errs.InvalidParameter("max_depth", "must be an integer, got %s", req.MaxDepth.String()))
			return
		}
		if d < 0 {
			s.abortWith(c, errs.InvalidParameter("max_depth", "must not be negative, got %d", d))
			return
		}
		maxDepth = d
	}

	sourceType := sourceTypeOf(req.Source)
	if req.Source != nil {
		if err := s.loadSource(c, *req.Source); err != nil {
			s.tracker.Record(track.QueryRecord{
				Endpoint:   "process_graph",
				SourceType: sourceType,
				Snapshot:   req.Snapshot,
				RootNode:   req.RootNode,
				Duration:   time.Since(start),
				Failed:     true,
			})
			s.abortWith(c, err)
			return
		}
	}

	record, cacheHit, err := s.proc.Process(req.Snapshot, req.RootNode, maxDepth)
	s.tracker.Record(track.QueryRecord{
		Endpoint:   "process_graph",
		SourceType: sourceType,
		Snapshot:   req.Snapshot,
		RootNode:   record.RootNode,
		NodeCount:  len(record.Nodes),
		CacheHit:   cacheHit,
		Duration:   time.Since(start),
		Failed:     err != nil,
	})
	if err != nil {
		s.abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ExportRequest selects a snapshot to dump, either as JSON rows or CSV.
type ExportRequest struct {
	Source   *source.Spec `json:"source,omitempty"`
	Snapshot string       `json:"snapshot,omitempty"`
	Format   string       `json:"format,omitempty"`
}

func (s *Server) Export(c *gin.Context) {
	start := time.Now()
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWith(c, errs.Validation("invalid request body: %v", err))
		return
	}
	format := req.Format
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		s.abortWith(c, errs.InvalidParameter("format", "must be json or csv, got %q", format))
		return
	}

	sourceType := sourceTypeOf(req.Source)
	if req.Source != nil {
		if err := s.loadSource(c, *req.Source); err != nil {
			s.tracker.Record(track.QueryRecord{
				Endpoint:   "export",
				SourceType: sourceType,
				Snapshot:   req.Snapshot,
				Duration:   time.Since(start),
				Failed:     true,
			})
			s.abortWith(c, err)
			return
		}
	}

	rows, err := s.proc.ExportRows(req.Snapshot)
	s.tracker.Record(track.QueryRecord{
		Endpoint:   "export",
		SourceType: sourceType,
		Snapshot:   req.Snapshot,
		NodeCount:  len(rows),
		Duration:   time.Since(start),
		Failed:     err != nil,
	})
	if err != nil {
		s.abortWith(c, err)
		return
	}

	if format == "json" {
		c.JSON(http.StatusOK, gin.H{"rows": rows})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="export.csv"`)
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"snapshot", "node", "node_weight", "subgraph_weight", "descendant_count"})
	for _, row := range rows {
		_ = w.Write([]string{
			row.Snapshot,
			row.Node,
			strconv.FormatFloat(row.NodeWeight, 'g', -1, 64),
			strconv.FormatFloat(row.SubgraphWeight, 'g', -1, 64),
			strconv.Itoa(row.DescendantCount),
		})
	}
	w.Flush()
	// The writer keeps the first underlying error; headers are already
	// sent, so a truncated response can only be reported out of band.
	if err := w.Error(); err != nil {
		s.log.Error("csv export write failed", zap.Error(err))
	}
}

func (s *Server) Snapshots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"snapshots": s.proc.Snapshots()})
}

func (s *Server) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Report())
}

// loadSource builds the loader for the request's source spec and feeds
// the tables into the processor.
func (s *Server) loadSource(c *gin.Context, spec source.Spec) error {
	loader, err := source.NewLoader(spec, s.log)
	if err != nil {
		return err
	}
	vertices, edges, err := loader.Load(c.Request.Context())
	if err != nil {
		return err
	}
	return s.proc.Load(vertices, edges)
}

func sourceTypeOf(spec *source.Spec) string {
	if spec == nil {
		return ""
	}
	return string(spec.Type)
}
