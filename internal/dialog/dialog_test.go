package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewave/voicedesk/internal/classifier"
	"github.com/carewave/voicedesk/internal/intents"
	"github.com/carewave/voicedesk/internal/session"
	"github.com/carewave/voicedesk/internal/workflow"
)

type stubClassifier struct {
	result classifier.Result
	err    error
}

func (s stubClassifier) Classify(context.Context, string, map[string]any) (classifier.Result, error) {
	return s.result, s.err
}

func newTestKernel(t *testing.T, c classifier.Classifier) (*Kernel, string) {
	t.Helper()
	store := session.NewStore(5*time.Minute, 20)
	sid := store.Create("caller-1", session.ChannelPhone)
	k := &Kernel{
		Sessions:   store,
		Classifier: c,
		Engine:     workflow.NewEngine(),
	}
	return k, sid
}

func TestProcessTurnGreetingAnswersDirectly(t *testing.T) {
	k, sid := newTestKernel(t, stubClassifier{result: classifier.Result{
		Intent: intents.Greeting, Confidence: 0.99, Entities: map[string]any{},
	}})

	res, err := k.ProcessTurn(t.Context(), sid, "hello", "")
	require.NoError(t, err)
	assert.Equal(t, intents.Greeting, res.Intent)
	assert.NotEmpty(t, res.ResponseText)
}

func TestProcessTurnEmergencyOverridesClassifierIntent(t *testing.T) {
	k, sid := newTestKernel(t, stubClassifier{result: classifier.Result{
		Intent: intents.BookAppointment, Confidence: 0.9, Entities: map[string]any{},
	}})

	res, err := k.ProcessTurn(t.Context(), sid, "there's been an accident, he's bleeding badly", "")
	require.NoError(t, err)
	assert.True(t, res.Escalated)
}

func TestProcessTurnLowConfidenceAsksForClarification(t *testing.T) {
	k, sid := newTestKernel(t, stubClassifier{result: classifier.Result{
		Intent: intents.BookAppointment, Confidence: 0.1, Entities: map[string]any{},
	}})

	res, err := k.ProcessTurn(t.Context(), sid, "uh something about an appointment maybe", "")
	require.NoError(t, err)
	assert.False(t, res.Ended)
	assert.NotEmpty(t, res.ResponseText)
}

func TestProcessTurnUnknownSessionReturnsError(t *testing.T) {
	k, _ := newTestKernel(t, stubClassifier{})
	_, err := k.ProcessTurn(t.Context(), "nonexistent", "hello", "")
	require.Error(t, err)
}
