package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewave/voicedesk/internal/intents"
)

func TestGetConfidenceLevelBands(t *testing.T) {
	assert.Equal(t, LevelHigh, GetConfidenceLevel(0.9))
	assert.Equal(t, LevelMedium, GetConfidenceLevel(0.7))
	assert.Equal(t, LevelLow, GetConfidenceLevel(0.45))
	assert.Equal(t, LevelVeryLow, GetConfidenceLevel(0.1))
}

func TestCheckIntentConfidenceUsesPerIntentThreshold(t *testing.T) {
	// 0.70 is MEDIUM band, above the default 0.65 threshold but below
	// BOOK_APPOINTMENT's 0.75 override: a value between the default and the
	// override proves the override is applied.
	action, _ := CheckIntentConfidence(intents.BookAppointment, 0.70)
	assert.Equal(t, ActionConfirm, action, "0.70 is below BOOK_APPOINTMENT's 0.75 override")

	action2, _ := CheckIntentConfidence(intents.Greeting, 0.70)
	assert.Equal(t, ActionAllow, action2, "0.70 clears the default 0.65 threshold for intents with no override")
}

func TestCheckIntentConfidenceReportEmergencyLowOverride(t *testing.T) {
	action, _ := CheckIntentConfidence(intents.ReportEmergency, 0.55)
	assert.Equal(t, ActionAllow, action, "REPORT_EMERGENCY's override threshold is 0.50")
}

func TestCheckForEmergencyDetectsKeyword(t *testing.T) {
	found, kw := CheckForEmergency("my father is having chest pain right now")
	require.True(t, found)
	assert.Equal(t, "chest pain", kw)
}

func TestCheckForHumanEscalation(t *testing.T) {
	assert.True(t, CheckForHumanEscalation("I want to talk to human please"))
	assert.False(t, CheckForHumanEscalation("I want to book an appointment"))
}

func TestMaskSensitiveDataCard(t *testing.T) {
	masked := MaskSensitiveData("my card number is 4111 1111 1111 1234")
	assert.Equal(t, "my card number is XXXX-XXXX-XXXX-1234", masked)
}

func TestMaskSensitiveDataAadhaar(t *testing.T) {
	masked := MaskSensitiveData("my aadhaar is 1234 5678 9012")
	assert.Equal(t, "my aadhaar is XXXX-XXXX-####", masked)
}

func TestMaskSensitiveDataPhone(t *testing.T) {
	masked := MaskSensitiveData("call me at 9876543210")
	assert.Equal(t, "call me at XXXXXX3210", masked)
}

func TestMaskSensitiveDataIsIdempotent(t *testing.T) {
	text := "card 4111111111111234, aadhaar 123456789012, phone 9876543210"
	once := MaskSensitiveData(text)
	twice := MaskSensitiveData(once)
	assert.Equal(t, once, twice)
}

func TestShouldEscalateOnTurnCount(t *testing.T) {
	escalate, reason := ShouldEscalate(15, 0)
	assert.True(t, escalate)
	assert.Equal(t, "long_conversation", reason)
}

func TestShouldEscalateOnFailureCount(t *testing.T) {
	escalate, reason := ShouldEscalate(1, 3)
	assert.True(t, escalate)
	assert.Equal(t, "repeated_failures", reason)
}

func TestGetSafeResponseEmergencyOverridesEverything(t *testing.T) {
	resp := GetSafeResponse(intents.Greeting, 0.99, "there has been an accident, please help", 1, 0)
	assert.Equal(t, ActionEscalate, resp.Action)
	assert.Equal(t, intents.ReportEmergency, resp.IntentOverride)
}

func TestGetSafeResponseHumanEscalationBeforeConfidence(t *testing.T) {
	resp := GetSafeResponse(intents.Unclear, 0.1, "let me talk to human", 1, 0)
	assert.Equal(t, ActionEscalate, resp.Action)
	assert.Equal(t, intents.EscalateToHuman, resp.IntentOverride)
}

func TestGetSafeResponseLowConfidenceClarifies(t *testing.T) {
	resp := GetSafeResponse(intents.BookAppointment, 0.2, "book something", 1, 0)
	assert.Equal(t, ActionClarify, resp.Action)
	assert.NotEmpty(t, resp.Message)
}

func TestGetSafeResponseAutoEscalatesOnLongConversation(t *testing.T) {
	resp := GetSafeResponse(intents.Greeting, 0.99, "hello", 16, 0)
	assert.Equal(t, ActionEscalate, resp.Action)
}

func TestGetSafeResponseLogTextIsAlwaysMasked(t *testing.T) {
	resp := GetSafeResponse(intents.Greeting, 0.99, "my phone is 9876543210", 1, 0)
	assert.Equal(t, "my phone is XXXXXX3210", resp.LogText)
}

func TestValidateBeforeActionRequiresConfirmationForCancel(t *testing.T) {
	action, msg := ValidateBeforeAction(intents.CancelAppointment, map[string]any{}, false)
	assert.Equal(t, ActionConfirm, action)
	assert.NotEmpty(t, msg)
}

func TestValidateBeforeActionAllowsCancelWithAppointmentID(t *testing.T) {
	action, _ := ValidateBeforeAction(intents.CancelAppointment, map[string]any{"appointment_id": "A1"}, false)
	assert.Equal(t, ActionAllow, action)
}

func TestValidateBeforeActionFlagsMissingRegistrationFields(t *testing.T) {
	action, msg := ValidateBeforeAction(intents.RegisterPatient, map[string]any{"first_name": "Mary"}, true)
	assert.Equal(t, ActionClarify, action)
	assert.Contains(t, msg, "last_name")
}
