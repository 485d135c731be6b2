// Package api contains the HTTP handlers for the workflow service.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/stepguide/backend/internal/services"
	"github.com/stepguide/backend/internal/store"
	"github.com/stepguide/backend/internal/workflow"
)

// Server holds the dependencies for the API server.
type Server struct {
	store      store.Store
	generation *services.GenerationService
	logger     *slog.Logger

	generateCount metric.Int64Counter
	saveCount     metric.Int64Counter
}

// NewServer creates a new Server.
func NewServer(st store.Store, generation *services.GenerationService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	meter := otel.Meter("github.com/stepguide/backend/internal/api")
	generateCount, _ := meter.Int64Counter("workflow.generate.requests",
		metric.WithDescription("Workflow generation requests by outcome"))
	saveCount, _ := meter.Int64Counter("workflow.save.requests",
		metric.WithDescription("Workflow save requests by outcome"))

	return &Server{
		store:         st,
		generation:    generation,
		logger:        logger,
		generateCount: generateCount,
		saveCount:     saveCount,
	}
}

// Register mounts every route on the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.POST("/api/generate-workflow", s.GenerateWorkflow)
	e.POST("/api/workflows", s.CreateWorkflow)
	e.GET("/api/workflows", s.ListWorkflows)
	e.GET("/api/workflows/:id", s.GetWorkflow)
	e.DELETE("/api/workflows/:id", s.DeleteWorkflow)
	e.PATCH("/api/workflows/:id", s.PatchWorkflow)
}

// Health reports service liveness.
// (GET /health)
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// httpError maps domain errors for the storage endpoints: validation
// failures are the caller's fault, storage misses are 404, and anything else
// is a server-side failure whose cause is logged but not exposed.
func (s *Server) httpError(c echo.Context, err error) error {
	var vErr *workflow.ValidationError
	switch {
	case errors.As(err, &vErr):
		return echo.NewHTTPError(http.StatusBadRequest, vErr.Reason)
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Workflow not found")
	default:
		s.logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) countGenerate(ctx context.Context, outcome string) {
	s.generateCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (s *Server) countSave(ctx context.Context, outcome string) {
	s.saveCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
