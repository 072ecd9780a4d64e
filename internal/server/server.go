// Package server exposes the graph processor over HTTP.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weftlabs/strata/internal/config"
	"github.com/weftlabs/strata/internal/core"
	"github.com/weftlabs/strata/internal/core/errs"
	"github.com/weftlabs/strata/internal/core/metrics"
	"github.com/weftlabs/strata/internal/track"
)

type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	proc    *core.Processor
	tracker *track.Tracker
}

func New(cfg *config.Config, log *zap.Logger) *Server {
	engine := metrics.NewEngine()
	engine.MaxPowerIterations = cfg.Engine.MaxPowerIterations
	engine.Tolerance = cfg.Engine.Tolerance

	return &Server{
		cfg:     cfg,
		log:     log,
		proc:    core.NewProcessor(log, engine),
		tracker: track.NewTracker(),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	if s.cfg.Server.Mode != "" {
		gin.SetMode(s.cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)

	api := r.Group("/api/v1")
	api.POST("/process_graph", s.ProcessGraph)
	api.POST("/export", s.Export)
	api.GET("/snapshots", s.Snapshots)
	api.GET("/usage", s.Usage)

	return r
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.log.Info("listening", zap.String("addr", addr))
	return s.SetupRouter().Run(addr)
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		s.log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// abortWith maps the error taxonomy onto HTTP statuses and writes the
// standard error envelope.
func (s *Server) abortWith(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	kind := "internal"

	var verr *errs.DataValidationError
	var perr *errs.InvalidParameterError
	var nerr *errs.NotFoundError
	var gerr *errs.GraphStructureError
	switch {
	case errors.As(err, &verr):
		status, kind = http.StatusBadRequest, "data_validation"
	case errors.As(err, &perr):
		status, kind = http.StatusBadRequest, "invalid_parameter"
	case errors.As(err, &nerr):
		status, kind = http.StatusNotFound, "not_found"
	case errors.As(err, &gerr):
		status, kind = http.StatusUnprocessableEntity, "graph_structure"
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
