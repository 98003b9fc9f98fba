// Package safety implements the confidence gate, emergency/escalation
// detection, and sensitive-data masking that gate every turn before a
// workflow is allowed to act on it.
package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carewave/voicedesk/internal/intents"
)

// ConfidenceLevel buckets a raw confidence score.
type ConfidenceLevel string

const (
	LevelHigh    ConfidenceLevel = "high"
	LevelMedium  ConfidenceLevel = "medium"
	LevelLow     ConfidenceLevel = "low"
	LevelVeryLow ConfidenceLevel = "very_low"
)

const (
	thresholdHigh   = 0.85
	thresholdMedium = 0.65
	thresholdLow    = 0.40
)

// Action is the safety disposition for a turn.
type Action string

const (
	ActionAllow    Action = "allow"
	ActionConfirm  Action = "confirm"
	ActionClarify  Action = "clarify"
	ActionEscalate Action = "escalate"
	ActionBlock    Action = "block"
)

// Response is the outcome of GetSafeResponse.
type Response struct {
	Action         Action
	Message        string
	IntentOverride intents.Intent
	LogText        string
}

// MaxTurnsBeforeEscalation and MaxIntentFailures are the auto-escalation
// thresholds.
const (
	MaxTurnsBeforeEscalation = 15
	MaxIntentFailures        = 3
)

// intentThresholds overrides the default MEDIUM threshold for intents
// where mis-classification is more or less costly.
var intentThresholds = map[intents.Intent]float64{
	intents.RegisterPatient:      0.80,
	intents.BookAppointment:      0.75,
	intents.ReportEmergency:      0.50,
	intents.RequestBedAllocation: 0.80,
	intents.CancelAppointment:    0.85,
}

// GetConfidenceLevel categorizes a raw confidence score into a band.
func GetConfidenceLevel(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= thresholdHigh:
		return LevelHigh
	case confidence >= thresholdMedium:
		return LevelMedium
	case confidence >= thresholdLow:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

var intentActionPhrases = map[intents.Intent]string{
	intents.RegisterPatient:       "register as a new patient",
	intents.FindPatient:           "look up your patient record",
	intents.BookAppointment:       "book an appointment",
	intents.RescheduleAppointment: "reschedule your appointment",
	intents.CancelAppointment:     "cancel your appointment",
	intents.OPDCheckin:            "check in for your appointment",
	intents.CheckBedAvailability:  "check bed availability",
	intents.RequestBedAllocation:  "request a bed",
	intents.BookLabTest:           "book a lab test",
	intents.CheckLabStatus:        "check your lab results",
	intents.CheckBillStatus:       "check your bill status",
}

func intentToActionPhrase(intent intents.Intent) string {
	if phrase, ok := intentActionPhrases[intent]; ok {
		return phrase
	}
	return "proceed with that"
}

// CheckIntentConfidence applies the per-intent threshold and confidence
// band to decide whether a classification is acted on, confirmed, or
// clarified.
func CheckIntentConfidence(intent intents.Intent, confidence float64) (Action, string) {
	threshold := thresholdMedium
	if t, ok := intentThresholds[intent]; ok {
		threshold = t
	}

	switch GetConfidenceLevel(confidence) {
	case LevelHigh:
		return ActionAllow, ""
	case LevelMedium:
		if confidence >= threshold {
			return ActionAllow, ""
		}
		return ActionConfirm, "Just to confirm, did you want to " + intentToActionPhrase(intent) + "?"
	case LevelLow:
		return ActionClarify, "I'm not quite sure I understood. Could you please tell me again what you'd like to do?"
	default:
		return ActionClarify, "I'm sorry, I didn't catch that. Could you please repeat?"
	}
}

// EmergencyKeywords trigger an unconditional override to REPORT_EMERGENCY.
var EmergencyKeywords = []string{
	"emergency", "urgent", "accident", "heart attack", "stroke",
	"bleeding", "unconscious", "chest pain", "breathing problem",
	"seizure", "collapse", "dying", "critical", "ambulance",
}

// HumanEscalationKeywords trigger an override to ESCALATE_TO_HUMAN.
var HumanEscalationKeywords = []string{
	"human", "person", "real person", "transfer", "operator",
	"receptionist", "manager", "talk to human", "not working", "stupid bot",
}

// CheckForEmergency reports whether raw text contains an emergency keyword.
func CheckForEmergency(text string) (bool, string) {
	lower := strings.ToLower(text)
	for _, kw := range EmergencyKeywords {
		if strings.Contains(lower, kw) {
			return true, kw
		}
	}
	return false, ""
}

// CheckForHumanEscalation reports whether raw text asks for a human.
func CheckForHumanEscalation(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range HumanEscalationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var (
	cardPattern     = regexp.MustCompile(`\b(\d{4})[\s-]?(\d{4})[\s-]?(\d{4})[\s-]?(\d{4})\b`)
	aadhaarPattern  = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
	phonePattern    = regexp.MustCompile(`\b(\d{6})(\d{4})\b`)
	cvvPattern      = regexp.MustCompile(`(?i)\bCVV[\s:]?\d{3,4}\b`)
	passwordPattern = regexp.MustCompile(`(?i)\b(password|pwd|pin)[\s:]+\S+`)
)

// MaskSensitiveData masks Aadhaar-like, card, phone, and password/CVV
// substrings in text before it is allowed to reach a log sink. Idempotent:
// masking already-masked text is a no-op.
//
// Card masking runs before Aadhaar masking — a 16-digit card number is
// also a superset match for the 12-digit Aadhaar pattern, so matching
// Aadhaar first would partially consume a card number before the card
// pass ever saw it.
func MaskSensitiveData(text string) string {
	masked := text

	masked = cardPattern.ReplaceAllString(masked, "XXXX-XXXX-XXXX-$4")
	masked = aadhaarPattern.ReplaceAllString(masked, "XXXX-XXXX-####")
	masked = phonePattern.ReplaceAllString(masked, "XXXXXX$2")
	masked = cvvPattern.ReplaceAllString(masked, "[REDACTED]")
	masked = passwordPattern.ReplaceAllString(masked, "[REDACTED]")

	return masked
}

// CheckSensitiveData reports which categories of sensitive data (if any)
// are present in text, for telemetry — it never blocks the call.
func CheckSensitiveData(text string) []string {
	var found []string
	if aadhaarPattern.MatchString(text) {
		found = append(found, "aadhaar")
	}
	if cardPattern.MatchString(text) {
		found = append(found, "credit_card")
	}
	if cvvPattern.MatchString(text) {
		found = append(found, "cvv")
	}
	if passwordPattern.MatchString(text) {
		found = append(found, "password")
	}
	return found
}

// ShouldEscalate reports whether turn/failure counts warrant handing the
// caller to a human.
func ShouldEscalate(turnCount, failedIntents int) (bool, string) {
	if turnCount >= MaxTurnsBeforeEscalation {
		return true, "long_conversation"
	}
	if failedIntents >= MaxIntentFailures {
		return true, "repeated_failures"
	}
	return false, ""
}

// ValidateBeforeAction is the final pre-execution gate applied just before
// a workflow issues a mutating backend call.
func ValidateBeforeAction(intent intents.Intent, entities map[string]any, confirmed bool) (Action, string) {
	if intent == intents.CancelAppointment {
		if !truthy(entities["appointment_id"]) && !confirmed {
			return ActionConfirm, "I want to make sure I cancel the right appointment. Could you confirm the appointment details?"
		}
	}

	if intent == intents.RegisterPatient && confirmed {
		required := []string{"first_name", "last_name", "phone"}
		var missing []string
		for _, f := range required {
			if !truthy(entities[f]) {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			return ActionClarify, fmt.Sprintf("I still need your %s to complete registration.", strings.Join(missing, ", "))
		}
	}

	return ActionAllow, ""
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	}
	return true
}

// GetSafeResponse is the central safety check run on every classified
// turn, in the fixed evaluation order: emergency scan, human-escalation
// scan, confidence gate, auto-escalation. Masking of log_text is always
// applied regardless of which branch fires.
func GetSafeResponse(intent intents.Intent, confidence float64, rawText string, turnCount, failedIntents int) Response {
	resp := Response{
		Action:  ActionAllow,
		LogText: MaskSensitiveData(rawText),
	}

	if isEmergency, _ := CheckForEmergency(rawText); isEmergency {
		resp.Action = ActionEscalate
		resp.IntentOverride = intents.ReportEmergency
		resp.Message = ""
		return resp
	}

	if CheckForHumanEscalation(rawText) {
		resp.Action = ActionEscalate
		resp.IntentOverride = intents.EscalateToHuman
		return resp
	}

	if action, message := CheckIntentConfidence(intent, confidence); action != ActionAllow {
		resp.Action = action
		resp.Message = message
		return resp
	}

	if escalate, _ := ShouldEscalate(turnCount, failedIntents); escalate {
		resp.Action = ActionEscalate
		resp.Message = "I've been trying to help but it seems complex. Let me connect you with a human receptionist who can assist you better."
		return resp
	}

	return resp
}
