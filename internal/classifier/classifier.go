// Package classifier turns raw caller utterances into an Intent plus
// extracted entities, backed by a pluggable LLM provider with a
// deterministic rule-based fallback.
package classifier

import (
	"context"

	"github.com/carewave/voicedesk/internal/intents"
)

// Result is the outcome of classifying one utterance.
type Result struct {
	Intent                intents.Intent
	Confidence            float64
	Entities              map[string]any
	RequiredMissingFields []string
}

// Classifier maps raw text plus session context to a Result.
type Classifier interface {
	Classify(ctx context.Context, text string, sessionContext map[string]any) (Result, error)
}

func unclear() Result {
	return Result{Intent: intents.Unclear, Confidence: 0.3, Entities: map[string]any{}}
}
