package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stepguide/backend/internal/workflow"
	"github.com/stepguide/backend/pkg/models"
)

// FileStore keeps one pretty-printed JSON document per workflow under a base
// directory, named <sanitized-id>.json. The byte layout of the documents is
// not a compatibility contract. Writes go through a temp file and a rename
// so readers never observe a half-written record.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the base directory if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// path maps an identifier to its document path. Identifiers that sanitize
// to nothing address no record at all.
func (s *FileStore) path(id string) (string, bool) {
	key := workflow.SanitizeID(id)
	if key == "" {
		return "", false
	}
	return filepath.Join(s.dir, key+".json"), true
}

func (s *FileStore) Put(_ context.Context, wf *models.Workflow) (*models.Workflow, error) {
	path, ok := s.path(wf.WorkflowID)
	if !ok {
		return nil, fmt.Errorf("workflow identifier %q is empty after sanitization", wf.WorkflowID)
	}

	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal workflow %s: %w", wf.WorkflowID, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".workflow-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write workflow %s: %w", wf.WorkflowID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write workflow %s: %w", wf.WorkflowID, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write workflow %s: %w", wf.WorkflowID, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("store workflow %s: %w", wf.WorkflowID, err)
	}
	return wf, nil
}

func (s *FileStore) Get(_ context.Context, id string) (*models.Workflow, error) {
	path, ok := s.path(id)
	if !ok {
		return nil, ErrNotFound
	}
	wf, err := s.read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return wf, err
}

func (s *FileStore) List(_ context.Context) ([]*models.WorkflowSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store directory: %w", err)
	}

	summaries := make([]*models.WorkflowSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		wf, err := s.read(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			// A corrupt document must not take down the listing.
			s.logger.Warn("skipping unreadable workflow record", "file", entry.Name(), "error", err)
			continue
		}
		summaries = append(summaries, wf.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	path, ok := s.path(id)
	if !ok {
		return ErrNotFound
	}
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) read(path string) (*models.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var wf models.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &wf, nil
}
