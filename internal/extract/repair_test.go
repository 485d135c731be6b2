package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleObject = `{"title":"Descale the machine","steps":[{"title":"Empty the tank","durationSec":30}]}`

func TestRepairRecoversObject(t *testing.T) {
	want := map[string]any{
		"title": "Descale the machine",
		"steps": []any{map[string]any{"title": "Empty the tank", "durationSec": float64(30)}},
	}

	cases := []struct {
		name string
		raw  string
	}{
		{"bare object", sampleObject},
		{"fenced with language tag", "```json\n" + sampleObject + "\n```"},
		{"fenced without language tag", "```\n" + sampleObject + "\n```"},
		{"fenced with padding", "\n\n```json\n" + sampleObject + "\n```\n\n"},
		{"prose around the object", "Sure! Here is the workflow you asked for:\n" + sampleObject + "\nLet me know if you need anything else."},
		{"prose and fences", "Here you go:\n```json\n" + sampleObject + "\n```\nEnjoy!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Repair(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRepairEscapesRawControlChars(t *testing.T) {
	raw := "{\"title\": \"Two\nlines\", \"steps\": [{\"title\": \"Tab\there\"}]}"

	got, err := Repair(raw)
	require.NoError(t, err)
	assert.Equal(t, "Two\nlines", got["title"])

	steps := got["steps"].([]any)
	assert.Equal(t, "Tab\there", steps[0].(map[string]any)["title"])
}

func TestRepairSlicedObjectWithRawNewlines(t *testing.T) {
	raw := "The manual describes this:\n{\"title\": \"Multi\nline\", \"steps\": [{\"title\": \"A\"}]}\nDone."

	got, err := Repair(raw)
	require.NoError(t, err)
	assert.Equal(t, "Multi\nline", got["title"])
}

func TestRepairFails(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I could not find any structured steps in this document."},
		{"array not object", "[1, 2, 3]"},
		{"unclosed object", `{"title": "broken`},
		{"scalar", `42`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Repair(tc.raw)
			assert.ErrorIs(t, err, ErrNoJSONObject)
		})
	}
}

func TestRepairKeepsEscapedSequences(t *testing.T) {
	// Already-escaped content must not be double-escaped.
	raw := `{"title": "Line\nbreak", "steps": [{"title": "Quote \" inside"}]}`

	got, err := Repair(raw)
	require.NoError(t, err)
	assert.Equal(t, "Line\nbreak", got["title"])
}
