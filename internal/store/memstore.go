package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stepguide/backend/internal/workflow"
	"github.com/stepguide/backend/pkg/models"
)

// MemStore is a fully in-memory Store, safe for concurrent use. It backs
// tests and ephemeral deployments; records vanish on restart.
type MemStore struct {
	mu        sync.RWMutex
	workflows map[string]*models.Workflow
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{workflows: make(map[string]*models.Workflow)}
}

func (m *MemStore) Put(_ context.Context, wf *models.Workflow) (*models.Workflow, error) {
	key := workflow.SanitizeID(wf.WorkflowID)
	if key == "" {
		return nil, fmt.Errorf("workflow identifier %q is empty after sanitization", wf.WorkflowID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflows[key] = wf.Clone()
	return wf, nil
}

func (m *MemStore) Get(_ context.Context, id string) (*models.Workflow, error) {
	key := workflow.SanitizeID(id)

	m.mu.RLock()
	defer m.mu.RUnlock()
	wf, ok := m.workflows[key]
	if !ok {
		return nil, ErrNotFound
	}
	return wf.Clone(), nil
}

func (m *MemStore) List(_ context.Context) ([]*models.WorkflowSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]*models.WorkflowSummary, 0, len(m.workflows))
	for _, wf := range m.workflows {
		summaries = append(summaries, wf.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func (m *MemStore) Delete(_ context.Context, id string) error {
	key := workflow.SanitizeID(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[key]; !ok {
		return ErrNotFound
	}
	delete(m.workflows, key)
	return nil
}
