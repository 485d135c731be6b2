// Package workflow narrows loosely-typed workflow payloads into the strict
// canonical shape. Input is whatever json.Unmarshal produced from a client
// request or from repaired model output: wrong types degrade to "absent" and
// only the rules below decide what is fatal.
package workflow

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stepguide/backend/pkg/models"
)

// MaxSteps caps the steps kept per workflow. Longer inputs are truncated,
// never rejected, so verbose model output degrades instead of failing.
const MaxSteps = 20

// ValidationError reports a payload that parsed but does not describe a
// usable workflow. Reason is specific enough to act on and is safe to show
// to clients.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Identity carries the stable fields preserved when an existing record is
// re-normalized. A nil Identity means a brand-new record.
type Identity struct {
	WorkflowID string
	UUID       string
	CreatedAt  time.Time
}

// Normalize validates an arbitrarily-shaped payload and produces the
// canonical Workflow: ordered steps with stable unique IDs, clamped optional
// fields, and full identity. Missing identity fields are synthesized;
// fallbackName substitutes for a missing workflow name and may be empty when
// the caller has nothing better, in which case a nameless payload fails.
//
// Normalizing the output of a previous Normalize is a no-op apart from
// UpdatedAt.
func Normalize(parsed any, identity *Identity, fallbackName string) (*models.Workflow, error) {
	name, steps, err := normalizeBody(parsed, fallbackName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wf := &models.Workflow{
		Name:      name,
		Steps:     steps,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if identity != nil {
		wf.WorkflowID = SanitizeID(identity.WorkflowID)
		wf.UUID = SanitizeID(identity.UUID)
		if !identity.CreatedAt.IsZero() {
			wf.CreatedAt = identity.CreatedAt
		}
	}
	if wf.WorkflowID == "" {
		wf.WorkflowID = uuid.New().String()
	}
	if wf.UUID == "" {
		wf.UUID = uuid.New().String()
	}
	return wf, nil
}

// NormalizeDraft applies the step and name rules without assigning identity
// or timestamps. It backs the generation endpoint, whose result stays
// client-side until saved.
func NormalizeDraft(parsed any, fallbackTitle string) (*models.GeneratedWorkflow, error) {
	title, steps, err := normalizeBody(parsed, fallbackTitle)
	if err != nil {
		return nil, err
	}
	return &models.GeneratedWorkflow{Title: title, Steps: steps}, nil
}

func normalizeBody(parsed any, fallbackName string) (string, []models.Step, error) {
	obj, ok := parsed.(map[string]any)
	if !ok || obj == nil {
		return "", nil, &ValidationError{Reason: "payload is not a JSON object"}
	}

	rawSteps, ok := obj["steps"].([]any)
	if !ok {
		return "", nil, &ValidationError{Reason: "steps is missing or not a list"}
	}

	entries := make([]any, 0, len(rawSteps))
	for _, entry := range rawSteps {
		if emptyEntry(entry) {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) > MaxSteps {
		entries = entries[:MaxSteps]
	}
	if len(entries) == 0 {
		return "", nil, &ValidationError{Reason: "workflow must have at least one step"}
	}

	steps := make([]models.Step, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		step, err := normalizeStep(entry, i+1)
		if err != nil {
			return "", nil, err
		}
		if _, dup := seen[step.ID]; step.ID == "" || dup {
			step.ID = uniqueStepID(i+1, seen)
		}
		seen[step.ID] = struct{}{}
		steps = append(steps, step)
	}

	name := stringField(obj, "name")
	if name == "" {
		name = stringField(obj, "title")
	}
	if name == "" {
		name = strings.TrimSpace(fallbackName)
	}
	if name == "" {
		return "", nil, &ValidationError{Reason: "workflow name is required"}
	}

	return name, steps, nil
}

// normalizeStep builds the canonical step at the given 1-based position. The
// ID comes back sanitized but possibly empty or duplicated; the caller owns
// uniqueness.
func normalizeStep(entry any, position int) (models.Step, error) {
	fields, _ := entry.(map[string]any)

	step := models.Step{Order: position}

	step.Title = stringField(fields, "title")
	if step.Title == "" {
		return models.Step{}, &ValidationError{Reason: fmt.Sprintf("step %d is missing a title", position)}
	}
	step.Description = stringField(fields, "description")

	// Values past MaxInt32 are out of range, not clamped; converting them
	// would overflow int.
	if v, ok := numberField(fields, "durationSec"); ok && v > 0 && v <= math.MaxInt32 {
		step.DurationSec = int(math.Round(v))
	}
	if v, ok := numberField(fields, "page"); ok && v >= 1 && v <= math.MaxInt32 {
		step.Page = int(math.Floor(v))
	}

	id := stringField(fields, "id")
	if id == "" {
		id = stringField(fields, "stepId")
	}
	step.ID = SanitizeID(id)

	return step, nil
}

// uniqueStepID synthesizes a positional ID not yet in seen. The plain form
// can collide with a caller-supplied ID from an earlier step, so it probes
// with a numeric suffix until free.
func uniqueStepID(position int, seen map[string]struct{}) string {
	id := fmt.Sprintf("step-%d", position)
	for n := 2; ; n++ {
		if _, taken := seen[id]; !taken {
			return id
		}
		id = fmt.Sprintf("step-%d-%d", position, n)
	}
}

// emptyEntry reports whether a step entry carries nothing to normalize:
// JSON null, an empty or blank string, false, or zero. Models emit these for
// sparse or padded step arrays.
func emptyEntry(entry any) bool {
	switch v := entry.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case float64:
		return v == 0
	default:
		return false
	}
}

// stringField returns the trimmed value of a string-typed field, or "" when
// the field is absent or not a string. Wrong-typed values are dropped rather
// than stringified.
func stringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	s, ok := fields[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// numberField extracts a finite numeric field. Decoded JSON always yields
// float64; int shows up in payloads assembled in-process.
func numberField(fields map[string]any, key string) (float64, bool) {
	if fields == nil {
		return 0, false
	}
	switch v := fields[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
