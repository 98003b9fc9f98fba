package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/carewave/voicedesk/internal/intents"
)

const systemPrompt = `You are an intent classifier for a hospital voice receptionist.
Given the caller's utterance, respond with ONLY a JSON object of the form:
{"intent": "<ONE_OF_THE_CLOSED_SET>", "confidence": <0..1>, "entities": {...}, "required_missing_fields": [...]}
Do not include any other text.`

// LLMClassifier issues a single completion request to an external
// language model and parses the response as a fenced or bare JSON object.
type LLMClassifier struct {
	backend anyllmlib.Provider
	model   string
}

// NewLLMClassifier constructs an LLMClassifier for the named provider.
// providerName is one of: openai, anthropic, gemini, ollama.
func NewLLMClassifier(providerName, model, apiKey, baseURL string) (*LLMClassifier, error) {
	var opts []anyllmlib.Option
	if apiKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(baseURL))
	}

	backend, err := buildBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("classifier: build llm backend: %w", err)
	}

	return &LLMClassifier{backend: backend, model: model}, nil
}

func buildBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", providerName)
	}
}

type llmResponse struct {
	Intent                string         `json:"intent"`
	Confidence             float64        `json:"confidence"`
	Entities               map[string]any `json:"entities"`
	RequiredMissingFields []string        `json:"required_missing_fields"`
}

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// Classify sends the utterance to the configured LLM and parses its JSON
// reply. Any parse failure or empty response falls back to UNCLEAR at
// confidence 0.3, matching the rule classifier's own floor.
func (c *LLMClassifier) Classify(ctx context.Context, text string, sessionContext map[string]any) (Result, error) {
	prompt := text
	if len(sessionContext) > 0 {
		ctxBytes, err := json.Marshal(sessionContext)
		if err == nil {
			prompt = fmt.Sprintf("%s\n\nSession context: %s", text, string(ctxBytes))
		}
	}

	resp, err := c.backend.Completion(ctx, anyllmlib.CompletionParams{
		Model: c.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: systemPrompt},
			{Role: anyllmlib.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("classifier: llm completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return unclear(), nil
	}

	raw := resp.Choices[0].Message.ContentString()
	parsed, ok := parseLLMResponse(raw)
	if !ok {
		return unclear(), nil
	}
	return parsed, nil
}

func parseLLMResponse(raw string) (Result, bool) {
	body := strings.TrimSpace(raw)
	if m := fencedBlockPattern.FindStringSubmatch(body); len(m) == 2 {
		body = m[1]
	}
	if body == "" {
		return Result{}, false
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return Result{}, false
	}
	if parsed.Intent == "" {
		return Result{}, false
	}

	entities := parsed.Entities
	if entities == nil {
		entities = map[string]any{}
	}
	return Result{
		Intent:               intents.Intent(parsed.Intent),
		Confidence:            parsed.Confidence,
		Entities:              entities,
		RequiredMissingFields: parsed.RequiredMissingFields,
	}, true
}
