package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewave/voicedesk/internal/intents"
)

func TestParseLLMResponseBareJSON(t *testing.T) {
	res, ok := parseLLMResponse(`{"intent": "BOOK_APPOINTMENT", "confidence": 0.92, "entities": {"department": "Cardiology"}, "required_missing_fields": ["date"]}`)
	require.True(t, ok)
	assert.Equal(t, intents.BookAppointment, res.Intent)
	assert.Equal(t, 0.92, res.Confidence)
	assert.Equal(t, "Cardiology", res.Entities["department"])
	assert.Equal(t, []string{"date"}, res.RequiredMissingFields)
}

func TestParseLLMResponseFencedBlock(t *testing.T) {
	raw := "Here you go:\n```json\n{\"intent\": \"GREETING\", \"confidence\": 0.95, \"entities\": {}}\n```"
	res, ok := parseLLMResponse(raw)
	require.True(t, ok)
	assert.Equal(t, intents.Greeting, res.Intent)
}

func TestParseLLMResponseRejectsGarbage(t *testing.T) {
	_, ok := parseLLMResponse("I'm not sure what you mean")
	assert.False(t, ok)
}

func TestParseLLMResponseRejectsEmpty(t *testing.T) {
	_, ok := parseLLMResponse("")
	assert.False(t, ok)
}

func TestParseLLMResponseRejectsMissingIntent(t *testing.T) {
	_, ok := parseLLMResponse(`{"confidence": 0.5, "entities": {}}`)
	assert.False(t, ok)
}
