package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stepguide/backend/internal/store"
	"github.com/stepguide/backend/internal/workflow"
	"github.com/stepguide/backend/pkg/models"
)

// CreateWorkflow normalizes and persists a workflow payload. Loose shapes
// are accepted; the normalizer decides what is usable. Posting an existing
// workflowId replaces that record but keeps its creation time.
// (POST /api/workflows)
func (s *Server) CreateWorkflow(c echo.Context) error {
	ctx := c.Request().Context()

	var payload map[string]any
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	identity := identityFromPayload(payload)
	if identity.WorkflowID != "" {
		existing, err := s.store.Get(ctx, identity.WorkflowID)
		switch {
		case err == nil:
			identity.CreatedAt = existing.CreatedAt
			if identity.UUID == "" {
				identity.UUID = existing.UUID
			}
		case !errors.Is(err, store.ErrNotFound):
			return s.httpError(c, err)
		}
	}

	wf, err := workflow.Normalize(payload, identity, "")
	if err != nil {
		s.countSave(ctx, "invalid")
		return s.httpError(c, err)
	}

	saved, err := s.store.Put(ctx, wf)
	if err != nil {
		s.countSave(ctx, "error")
		return s.httpError(c, err)
	}

	s.countSave(ctx, "ok")
	s.logger.Info("workflow saved", "workflow_id", saved.WorkflowID, "name", saved.Name, "steps", len(saved.Steps))
	return c.JSON(http.StatusCreated, saved)
}

// ListWorkflows returns summaries for every stored workflow, most recently
// updated first.
// (GET /api/workflows)
func (s *Server) ListWorkflows(c echo.Context) error {
	items, err := s.store.List(c.Request().Context())
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetWorkflow returns one stored workflow with its full step sequence.
// (GET /api/workflows/:id)
func (s *Server) GetWorkflow(c echo.Context) error {
	wf, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, wf)
}

// DeleteWorkflow removes one stored workflow.
// (DELETE /api/workflows/:id)
func (s *Server) DeleteWorkflow(c echo.Context) error {
	if err := s.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// PatchWorkflow merges a partial update (name and/or steps) into an existing
// workflow and re-normalizes the merged result. Identity and creation time
// are preserved; UpdatedAt moves.
// (PATCH /api/workflows/:id)
func (s *Server) PatchWorkflow(c echo.Context) error {
	ctx := c.Request().Context()

	existing, err := s.store.Get(ctx, c.Param("id"))
	if err != nil {
		return s.httpError(c, err)
	}

	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	merged := map[string]any{
		"name":  existing.Name,
		"steps": stepsAsPayload(existing.Steps),
	}
	if v, ok := patch["name"]; ok {
		merged["name"] = v
	}
	if v, ok := patch["steps"]; ok {
		merged["steps"] = v
	}

	wf, err := workflow.Normalize(merged, &workflow.Identity{
		WorkflowID: existing.WorkflowID,
		UUID:       existing.UUID,
		CreatedAt:  existing.CreatedAt,
	}, existing.Name)
	if err != nil {
		return s.httpError(c, err)
	}

	saved, err := s.store.Put(ctx, wf)
	if err != nil {
		return s.httpError(c, err)
	}

	s.logger.Info("workflow updated", "workflow_id", saved.WorkflowID, "steps", len(saved.Steps))
	return c.JSON(http.StatusOK, saved)
}

// identityFromPayload lifts caller-supplied identity fields out of a loose
// payload; whatever is absent gets synthesized during normalization.
func identityFromPayload(payload map[string]any) *workflow.Identity {
	identity := &workflow.Identity{}
	if v, ok := payload["workflowId"].(string); ok {
		identity.WorkflowID = workflow.SanitizeID(v)
	}
	if v, ok := payload["uuid"].(string); ok {
		identity.UUID = workflow.SanitizeID(v)
	}
	if v, ok := payload["createdAt"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			identity.CreatedAt = ts
		}
	}
	return identity
}

// stepsAsPayload rebuilds the loose step representation so an unchanged step
// list can flow back through the normalizer during a partial update.
func stepsAsPayload(steps []models.Step) []any {
	out := make([]any, 0, len(steps))
	for _, st := range steps {
		entry := map[string]any{
			"id":    st.ID,
			"title": st.Title,
		}
		if st.Description != "" {
			entry["description"] = st.Description
		}
		if st.DurationSec > 0 {
			entry["durationSec"] = st.DurationSec
		}
		if st.Page > 0 {
			entry["page"] = st.Page
		}
		out = append(out, entry)
	}
	return out
}
