package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewave/voicedesk/internal/intents"
)

func TestRuleClassifierEmergencyBeatsEverything(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("book an appointment, there has been an accident")
	assert.Equal(t, intents.ReportEmergency, res.Intent)
	assert.Equal(t, 0.9, res.Confidence)
}

func TestRuleClassifierHumanEscalation(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("I want to talk to human")
	assert.Equal(t, intents.EscalateToHuman, res.Intent)
}

func TestRuleClassifierGreeting(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("hello there")
	assert.Equal(t, intents.Greeting, res.Intent)
}

func TestRuleClassifierStatusBeforeAction(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("check my appointment status")
	assert.Equal(t, intents.CheckAppointmentStatus, res.Intent,
		"status keywords must win over the 'appointment' action keyword")
}

func TestRuleClassifierActionKeyword(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("I want to book an appointment")
	assert.Equal(t, intents.BookAppointment, res.Intent)
}

func TestRuleClassifierAffirmation(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("yes")
	assert.Equal(t, intents.ConfirmYes, res.Intent)
}

func TestRuleClassifierDenial(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("no thanks")
	assert.Equal(t, intents.ConfirmNo, res.Intent)
}

func TestRuleClassifierDepartmentAlias(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("cardiology")
	require.Equal(t, intents.ProvideInformation, res.Intent)
	assert.Equal(t, "Cardiology", res.Entities["department"])
}

func TestRuleClassifierRelativeDate(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("tomorrow")
	require.Equal(t, intents.ProvideInformation, res.Intent)
	assert.Equal(t, "tomorrow", res.Entities["date"])
}

func TestRuleClassifierPhone(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("9876543210")
	require.Equal(t, intents.ProvideInformation, res.Intent)
	assert.Equal(t, "9876543210", res.Entities["phone"])
}

func TestRuleClassifierCapitalizedName(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("Dr Sharma")
	require.Equal(t, intents.ProvideInformation, res.Intent)
	assert.Equal(t, "Dr Sharma", res.Entities["name"])
}

func TestRuleClassifierLongUnclearInput(t *testing.T) {
	c := NewRuleClassifier()
	res := c.classify("I am not certain what I want to say about this whole thing honestly")
	assert.Equal(t, intents.Unclear, res.Intent)
	assert.Equal(t, 0.3, res.Confidence)
}
