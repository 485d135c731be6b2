package workflow

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"name": "Router install",
		"steps": []any{
			map[string]any{"title": "Unbox the router", "durationSec": float64(5)},
			map[string]any{"title": "Connect the cables"},
		},
	}
}

func TestNormalizeOrdersAndTimers(t *testing.T) {
	wf, err := Normalize(validPayload(), nil, "")
	require.NoError(t, err)

	require.Len(t, wf.Steps, 2)
	assert.Equal(t, 1, wf.Steps[0].Order)
	assert.Equal(t, 5, wf.Steps[0].DurationSec)
	assert.Equal(t, 2, wf.Steps[1].Order)
	assert.Zero(t, wf.Steps[1].DurationSec)
}

func TestNormalizeAssignsIdentity(t *testing.T) {
	wf, err := Normalize(validPayload(), nil, "")
	require.NoError(t, err)

	assert.NotEmpty(t, wf.WorkflowID)
	assert.NotEmpty(t, wf.UUID)
	assert.Equal(t, "step-1", wf.Steps[0].ID)
	assert.Equal(t, "step-2", wf.Steps[1].ID)
	assert.False(t, wf.CreatedAt.IsZero())
	assert.False(t, wf.UpdatedAt.IsZero())
}

func TestNormalizePreservesIdentity(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	wf, err := Normalize(validPayload(), &Identity{
		WorkflowID: "wf-123",
		UUID:       "share-456",
		CreatedAt:  created,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "wf-123", wf.WorkflowID)
	assert.Equal(t, "share-456", wf.UUID)
	assert.Equal(t, created, wf.CreatedAt)
	assert.True(t, wf.UpdatedAt.After(created))
}

func TestNormalizeIdempotent(t *testing.T) {
	first, err := Normalize(validPayload(), nil, "")
	require.NoError(t, err)

	// Round-trip through JSON the way a stored record comes back.
	data, err := json.Marshal(first)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	second, err := Normalize(parsed, &Identity{
		WorkflowID: first.WorkflowID,
		UUID:       first.UUID,
		CreatedAt:  first.CreatedAt,
	}, "")
	require.NoError(t, err)

	second.UpdatedAt = first.UpdatedAt
	assert.Equal(t, first, second)
}

func TestNormalizeTruncatesSteps(t *testing.T) {
	steps := make([]any, 0, 30)
	for i := 0; i < 30; i++ {
		steps = append(steps, map[string]any{"title": fmt.Sprintf("Step %d", i+1)})
	}

	wf, err := Normalize(map[string]any{"name": "Long", "steps": steps}, nil, "")
	require.NoError(t, err)

	require.Len(t, wf.Steps, MaxSteps)
	for i, step := range wf.Steps {
		assert.Equal(t, i+1, step.Order)
	}
	assert.Equal(t, "Step 20", wf.Steps[MaxSteps-1].Title)
}

func TestNormalizeFiltersEmptyEntries(t *testing.T) {
	wf, err := Normalize(map[string]any{
		"name":  "Sparse",
		"steps": []any{nil, map[string]any{"title": "Real"}, false, "  ", float64(0)},
	}, nil, "")
	require.NoError(t, err)

	require.Len(t, wf.Steps, 1)
	assert.Equal(t, "Real", wf.Steps[0].Title)
	assert.Equal(t, 1, wf.Steps[0].Order)
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name   string
		parsed any
		reason string
	}{
		{"not an object", "plain text", "not a JSON object"},
		{"nil payload", nil, "not a JSON object"},
		{"steps missing", map[string]any{"name": "X"}, "missing or not a list"},
		{"steps wrong type", map[string]any{"name": "X", "steps": "oops"}, "missing or not a list"},
		{"steps empty", map[string]any{"name": "X", "steps": []any{}}, "at least one step"},
		{"steps all filtered", map[string]any{"name": "X", "steps": []any{nil, nil}}, "at least one step"},
		{"step without title", map[string]any{"name": "X", "steps": []any{map[string]any{"title": "  "}}}, "missing a title"},
		{"step title wrong type", map[string]any{"name": "X", "steps": []any{map[string]any{"title": float64(7)}}}, "missing a title"},
		// Step rules run before name rules, so the reported failure is
		// deterministic when both are broken.
		{"empty name and empty steps", map[string]any{"name": "", "steps": []any{}}, "at least one step"},
		{"no usable name", map[string]any{"steps": []any{map[string]any{"title": "A"}}}, "name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.parsed, nil, "")
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Reason, tt.reason)
		})
	}
}

func TestNormalizeNumericCoercion(t *testing.T) {
	wf, err := Normalize(map[string]any{
		"name": "Numbers",
		"steps": []any{
			map[string]any{"title": "Rounded", "durationSec": 4.6, "page": 2.9},
			map[string]any{"title": "Zero dropped", "durationSec": float64(0), "page": float64(0)},
			map[string]any{"title": "Negative dropped", "durationSec": float64(-5), "page": float64(-1)},
			map[string]any{"title": "Wrong type dropped", "durationSec": "90", "page": "4"},
			map[string]any{"title": "Non-finite dropped", "durationSec": math.Inf(1), "page": math.NaN()},
			map[string]any{"title": "Overflow dropped", "durationSec": 1e300, "page": 1e300},
		},
	}, nil, "")
	require.NoError(t, err)

	assert.Equal(t, 5, wf.Steps[0].DurationSec)
	assert.Equal(t, 2, wf.Steps[0].Page)
	for _, step := range wf.Steps[1:] {
		assert.Zero(t, step.DurationSec, step.Title)
		assert.Zero(t, step.Page, step.Title)
	}
}

func TestNormalizeSanitizesIDs(t *testing.T) {
	wf, err := Normalize(map[string]any{
		"name": "IDs",
		"steps": []any{
			map[string]any{"title": "A", "id": "../../etc/passwd"},
			map[string]any{"title": "B", "stepId": "step two!"},
			map[string]any{"title": "C", "id": "!!!"},
		},
	}, &Identity{WorkflowID: "wf/../123", UUID: "a b c"}, "")
	require.NoError(t, err)

	assert.Equal(t, "etcpasswd", wf.Steps[0].ID)
	assert.Equal(t, "steptwo", wf.Steps[1].ID)
	assert.Equal(t, "step-3", wf.Steps[2].ID, "nothing survives sanitization")
	assert.Equal(t, "wf123", wf.WorkflowID)
	assert.Equal(t, "abc", wf.UUID)
}

func TestNormalizeKeepsStepIDsOnReorder(t *testing.T) {
	wf, err := Normalize(map[string]any{
		"name": "Reorder",
		"steps": []any{
			map[string]any{"id": "step-2", "order": float64(2), "title": "Second"},
			map[string]any{"id": "step-1", "order": float64(1), "title": "First"},
		},
	}, nil, "")
	require.NoError(t, err)

	// Supplied order values are ignored; position wins, IDs travel.
	assert.Equal(t, "step-2", wf.Steps[0].ID)
	assert.Equal(t, 1, wf.Steps[0].Order)
	assert.Equal(t, "step-1", wf.Steps[1].ID)
	assert.Equal(t, 2, wf.Steps[1].Order)
}

func TestNormalizeDeduplicatesStepIDs(t *testing.T) {
	wf, err := Normalize(map[string]any{
		"name": "Dupes",
		"steps": []any{
			map[string]any{"id": "check", "title": "A"},
			map[string]any{"id": "check", "title": "B"},
			map[string]any{"id": "step-4", "title": "C"},
			map[string]any{"title": "D"},
		},
	}, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "check", wf.Steps[0].ID)
	assert.Equal(t, "step-2", wf.Steps[1].ID)
	assert.Equal(t, "step-4", wf.Steps[2].ID)
	assert.Equal(t, "step-4-2", wf.Steps[3].ID, "synthesized IDs probe past collisions")
}

func TestNormalizeNameFallbacks(t *testing.T) {
	steps := []any{map[string]any{"title": "Only"}}

	wf, err := Normalize(map[string]any{"name": "  ", "steps": steps}, nil, "manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, "manual.pdf", wf.Name)

	wf, err = Normalize(map[string]any{"title": "From title key", "steps": steps}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "From title key", wf.Name)
}

func TestNormalizeDraft(t *testing.T) {
	draft, err := NormalizeDraft(map[string]any{
		"title": "Draft",
		"steps": []any{map[string]any{"title": "A", "page": float64(3)}},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "Draft", draft.Title)
	require.Len(t, draft.Steps, 1)
	assert.Equal(t, 3, draft.Steps[0].Page)
	assert.Equal(t, "step-1", draft.Steps[0].ID)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "abc-DEF_123", SanitizeID("abc-DEF_123"))
	assert.Equal(t, "abc123", SanitizeID("a/b\\c 1.2.3"))
	assert.Equal(t, "", SanitizeID("!!!"))
	assert.Equal(t, "", SanitizeID(""))
}
