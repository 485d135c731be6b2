// Package store persists canonical workflow records, one JSON document per
// workflow, keyed by the sanitized workflow identifier. Writes replace the
// whole document; concurrent writers race with last-write-wins semantics,
// which is acceptable for a single-operator tool.
package store

import (
	"context"
	"errors"

	"github.com/stepguide/backend/pkg/models"
)

// ErrNotFound reports a workflow identifier with no stored record. Handlers
// map it to a 404 with errors.Is.
var ErrNotFound = errors.New("workflow not found")

// Store is the workflow record store.
type Store interface {
	// Put replaces the record stored under the workflow's identifier,
	// creating it when absent, and returns the persisted record.
	Put(ctx context.Context, wf *models.Workflow) (*models.Workflow, error)
	// Get retrieves a workflow by identifier.
	Get(ctx context.Context, id string) (*models.Workflow, error)
	// List returns summaries for every stored workflow, most recently
	// updated first.
	List(ctx context.Context) ([]*models.WorkflowSummary, error)
	// Delete removes a workflow by identifier.
	Delete(ctx context.Context, id string) error
}
