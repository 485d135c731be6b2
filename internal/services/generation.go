package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/stepguide/backend/internal/extract"
	"github.com/stepguide/backend/internal/workflow"
	"github.com/stepguide/backend/pkg/models"
)

// ErrGenerationDisabled reports that no generation credential is configured.
// Stored workflows stay fully usable; only generation is off.
var ErrGenerationDisabled = errors.New("workflow generation is not configured: missing API key")

// UpstreamError is a failure of the external generation service, carrying
// the upstream status code and message.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation service error (status %d): %s", e.Status, e.Message)
}

// GenerationService runs the extraction pipeline: model text from the
// document, a JSON object repaired out of that text, and a normalized
// workflow draft from the object. A failure at any stage fails the whole
// operation; nothing partial escapes.
type GenerationService struct {
	generator Generator
	logger    *slog.Logger
}

// NewGenerationService wires the pipeline. generator may be nil when no
// credential is configured; Generate then fails with ErrGenerationDisabled.
func NewGenerationService(generator Generator, logger *slog.Logger) *GenerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationService{generator: generator, logger: logger}
}

// Enabled reports whether a generator is configured.
func (s *GenerationService) Enabled() bool { return s.generator != nil }

// Generate turns a document into a workflow draft.
func (s *GenerationService) Generate(ctx context.Context, document []byte, filename string) (*models.GeneratedWorkflow, error) {
	if s.generator == nil {
		return nil, ErrGenerationDisabled
	}

	raw, err := s.generator.GenerateWorkflow(ctx, document, filename)
	if err != nil {
		return nil, err
	}

	parsed, err := extract.Repair(raw)
	if err != nil {
		// Raw model output can embed document content, so the dump stays
		// at debug; the HTTP layer logs the failure itself.
		s.logger.Debug("no JSON object recovered from model output", "filename", filename, "output", raw)
		return nil, err
	}

	draft, err := workflow.NormalizeDraft(parsed, fallbackTitle(filename))
	if err != nil {
		s.logger.Debug("model output failed validation", "filename", filename, "error", err)
		return nil, err
	}

	s.logger.Info("workflow generated", "filename", filename, "title", draft.Title, "steps", len(draft.Steps))
	return draft, nil
}

// fallbackTitle derives a readable workflow title from the uploaded
// filename for model output that carries none.
func fallbackTitle(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(base))
	if base == "" || base == "." {
		return "Untitled workflow"
	}
	return base
}
