// Package services contains the document-to-workflow generation pipeline:
// a Generator boundary over the external model API and the service that runs
// generation, extraction repair, and normalization as one operation.
package services

import "context"

// Generator turns a binary document into raw model text describing its
// workflow. Implementations are slow, fallible, and cost-bearing; callers
// must treat the returned text as untrusted.
type Generator interface {
	// GenerateWorkflow produces raw model text for the document. filename
	// is advisory context for the prompt and may be empty.
	GenerateWorkflow(ctx context.Context, document []byte, filename string) (string, error)
}
