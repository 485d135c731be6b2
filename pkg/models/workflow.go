// Package models defines the canonical workflow shapes shared by the API
// server, the store, and the playback runtime.
package models

import (
	"time"
)

// Step is one actionable unit within a workflow. DurationSec and Page are
// optional: zero means "no timer" and "no page alignment" respectively, and
// both are omitted from JSON instead of being serialized as 0.
type Step struct {
	ID          string `json:"id"`    // Stable opaque identifier, survives reordering
	Order       int    `json:"order"` // 1-based position within the workflow
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DurationSec int    `json:"durationSec,omitempty"` // Countdown seconds, > 0 when present
	Page        int    `json:"page,omitempty"`        // 1-based source document page
}

// Workflow is the canonical persisted record: an ordered step sequence plus
// identity and timestamps. WorkflowID is the primary identifier; UUID is a
// secondary share token. Order values always form a contiguous 1..N sequence
// and step IDs are unique within one workflow.
type Workflow struct {
	WorkflowID string    `json:"workflowId"`
	UUID       string    `json:"uuid"`
	Name       string    `json:"name"`
	Steps      []Step    `json:"steps"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// WorkflowSummary is the listing projection of a stored workflow: identity,
// name and timestamps, never the step payload.
type WorkflowSummary struct {
	WorkflowID string    `json:"workflowId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// GeneratedWorkflow is the draft returned by the generation endpoint:
// normalized steps plus an optional title. It carries no identity and is not
// persisted until the client saves it.
type GeneratedWorkflow struct {
	Title string `json:"title,omitempty"`
	Steps []Step `json:"steps"`
}

// Summary returns the listing projection of the workflow.
func (w *Workflow) Summary() *WorkflowSummary {
	return &WorkflowSummary{
		WorkflowID: w.WorkflowID,
		Name:       w.Name,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

// Clone returns a deep copy of the workflow so callers can mutate their copy
// without racing anyone holding the original.
func (w *Workflow) Clone() *Workflow {
	cp := *w
	cp.Steps = append([]Step(nil), w.Steps...)
	return &cp
}
