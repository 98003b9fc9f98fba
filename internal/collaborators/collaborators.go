// Package collaborators defines the speech-to-text, text-to-speech, and
// raw-LLM interfaces the orchestrator depends on but never implements
// itself — concrete providers live outside this module's scope and are
// wired in at startup.
package collaborators

import "context"

// STT transcribes caller audio into text.
type STT interface {
	Transcribe(ctx context.Context, audioBase64 string, sampleRate int) (transcript string, confidence float64, err error)
}

// TTS synthesizes a textual reply into audio.
type TTS interface {
	Synthesize(ctx context.Context, text string, speed, pitch float64) (audioBase64 string, durationSeconds float64, err error)
}

// LLM is the provider-agnostic contract the intent classifier's primary
// implementation sits on top of: a single prompt in, a raw completion
// string out. internal/classifier's LLMClassifier talks directly to
// any-llm-go rather than this interface; it exists for collaborators that
// only need bare text completion (e.g. summarization helpers).
type LLM interface {
	Classify(ctx context.Context, prompt string) (jsonString string, err error)
}
