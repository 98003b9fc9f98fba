package classifier

import (
	"context"

	"github.com/carewave/voicedesk/internal/apierr"
	"github.com/carewave/voicedesk/internal/common/logger"
)

// FallbackClassifier tries the LLM classifier first and silently falls
// back to the rule-based classifier when the LLM backend is unavailable
// or errors, per the classifier_unavailable error-handling policy.
type FallbackClassifier struct {
	primary  Classifier
	fallback Classifier
}

// NewFallbackClassifier composes primary (may be nil, meaning the LLM was
// never configured) with a rule-based fallback.
func NewFallbackClassifier(primary Classifier, fallback Classifier) *FallbackClassifier {
	return &FallbackClassifier{primary: primary, fallback: fallback}
}

// Classify implements Classifier.
func (c *FallbackClassifier) Classify(ctx context.Context, text string, sessionContext map[string]any) (Result, error) {
	if c.primary == nil {
		return c.fallback.Classify(ctx, text, sessionContext)
	}

	result, err := c.primary.Classify(ctx, text, sessionContext)
	if err != nil {
		logger.Default().WithError(err).Warn("llm classifier unavailable, falling back to rule-based classification")
		_ = apierr.New(apierr.KindClassifierUnavailable, "llm classifier unavailable")
		return c.fallback.Classify(ctx, text, sessionContext)
	}
	return result, nil
}
