package out

import (
	"context"

	"analyzer_server/core/domain"
)

// LLMClient is the uniform contract over all model backends: rendered prompt
// in, raw text reply out. Implementations must be safe for concurrent use.
type LLMClient interface {
	// Complete sends the prompt with a fixed system instruction and returns
	// the raw text of the model reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Provider identifies the backend for result labeling and logs.
	Provider() domain.AnalysisSource
}
