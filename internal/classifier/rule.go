package classifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/carewave/voicedesk/internal/intents"
	"github.com/carewave/voicedesk/internal/safety"
	"github.com/carewave/voicedesk/internal/validator"
)

// RuleClassifier is the deterministic fallback used whenever the LLM
// backend is not configured or has exhausted its retries. It evaluates a
// fixed, ordered cascade of keyword and regex checks, stopping at the
// first match.
type RuleClassifier struct{}

// NewRuleClassifier builds a RuleClassifier. It holds no state.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

var greetingWords = compileWords("hello", "hi", "hey", "good morning", "good afternoon", "good evening", "greetings")
var goodbyeWords = compileWords("bye", "goodbye", "good bye", "see you", "talk later")
var statusWords = compileWords("status", "result", "report", "check my", "where is")
var affirmWords = compileWords("yes", "yeah", "yep", "ok", "okay", "sure")
var denyWords = compileWords("no", "nope", "cancel", "wrong")

var nameStopwords = map[string]bool{
	"Yes": true, "No": true, "Ok": true, "Okay": true, "Hi": true, "Hello": true,
	"Thanks": true, "Thank": true, "Sure": true, "Please": true, "The": true,
}

var (
	numericDatePattern = regexp.MustCompile(`\b\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}\b`)
	relativeDateWords  = compileWords("today", "tomorrow", "next")
	timePattern        = regexp.MustCompile(`\b\d{1,2}:\d{2}\s*(am|pm)?\b`)
	phoneDigitsPattern = regexp.MustCompile(`[\s\-.]`)
	tenDigitPattern    = regexp.MustCompile(`^\d{10}$`)
	capitalizedWord    = regexp.MustCompile(`^[A-Z][a-z]+$`)
)

// wordMatcher pairs a whole-word/phrase regex with the literal keyword it
// was built from, so callers can report which keyword hit.
type wordMatcher struct {
	pattern *regexp.Regexp
	word    string
}

// compileWords precompiles a fixed keyword list into word-boundary regexes
// once, at package init — avoiding both repeated compilation and any
// shared-cache mutation across concurrently classifying goroutines.
func compileWords(words ...string) []wordMatcher {
	matchers := make([]wordMatcher, len(words))
	for i, w := range words {
		matchers[i] = wordMatcher{
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`),
			word:    w,
		}
	}
	return matchers
}

// containsAny reports whether lower contains any of the matchers' keywords
// as a whole word (or phrase), not merely as a substring — otherwise short
// tokens like "no" or "ok" would false-hit inside "not" or "broken".
func containsAny(lower string, matchers []wordMatcher) (bool, string) {
	for _, m := range matchers {
		if m.pattern.MatchString(lower) {
			return true, m.word
		}
	}
	return false, ""
}

// Classify implements Classifier via the fixed 12-step priority cascade.
func (c *RuleClassifier) Classify(_ context.Context, text string, _ map[string]any) (Result, error) {
	return c.classify(text), nil
}

// classify is the pure, context-free cascade body, kept separate from the
// Classifier interface signature so it is trivially unit-testable.
func (c *RuleClassifier) classify(text string) Result {
	lower := strings.ToLower(strings.TrimSpace(text))
	entities := map[string]any{}

	// 1. Emergency keywords.
	if found, _ := safety.CheckForEmergency(text); found {
		return Result{Intent: intents.ReportEmergency, Confidence: 0.9, Entities: entities}
	}

	// 2. Human-escalation keywords.
	if safety.CheckForHumanEscalation(text) {
		return Result{Intent: intents.EscalateToHuman, Confidence: 0.9, Entities: entities}
	}

	// 3. Greetings/goodbyes.
	if hit, _ := containsAny(lower, greetingWords); hit {
		return Result{Intent: intents.Greeting, Confidence: 0.9, Entities: entities}
	}
	if hit, _ := containsAny(lower, goodbyeWords); hit {
		return Result{Intent: intents.Goodbye, Confidence: 0.9, Entities: entities}
	}

	// 4. Status-query keywords, checked before action keywords.
	if hit, _ := containsAny(lower, statusWords); hit {
		switch {
		case strings.Contains(lower, "lab") || strings.Contains(lower, "test"):
			return Result{Intent: intents.CheckLabStatus, Confidence: 0.8, Entities: entities}
		case strings.Contains(lower, "bill") || strings.Contains(lower, "payment"):
			return Result{Intent: intents.CheckBillStatus, Confidence: 0.8, Entities: entities}
		case strings.Contains(lower, "appointment"):
			return Result{Intent: intents.CheckAppointmentStatus, Confidence: 0.8, Entities: entities}
		default:
			return Result{Intent: intents.GeneralStatusInquiry, Confidence: 0.7, Entities: entities}
		}
	}

	// 5. Action keywords.
	switch {
	case strings.Contains(lower, "book") || strings.Contains(lower, "appointment"):
		return Result{Intent: intents.BookAppointment, Confidence: 0.8, Entities: entities}
	case strings.Contains(lower, "register") || strings.Contains(lower, "new patient"):
		return Result{Intent: intents.RegisterPatient, Confidence: 0.8, Entities: entities}
	case strings.Contains(lower, "check-in") || strings.Contains(lower, "check in") || strings.Contains(lower, "checkin"):
		return Result{Intent: intents.OPDCheckin, Confidence: 0.8, Entities: entities}
	case strings.Contains(lower, "available") && strings.Contains(lower, "bed"):
		return Result{Intent: intents.CheckBedAvailability, Confidence: 0.8, Entities: entities}
	case strings.Contains(lower, "bed") || strings.Contains(lower, "admission") || strings.Contains(lower, "admit"):
		return Result{Intent: intents.RequestBedAllocation, Confidence: 0.8, Entities: entities}
	case strings.Contains(lower, "lab") || strings.Contains(lower, "test"):
		return Result{Intent: intents.BookLabTest, Confidence: 0.8, Entities: entities}
	case strings.Contains(lower, "bill"):
		return Result{Intent: intents.CheckBillStatus, Confidence: 0.8, Entities: entities}
	}

	// 6. Affirmations/denials.
	if hit, _ := containsAny(lower, affirmWords); hit {
		return Result{Intent: intents.ConfirmYes, Confidence: 0.85, Entities: entities}
	}
	if hit, _ := containsAny(lower, denyWords); hit {
		return Result{Intent: intents.ConfirmNo, Confidence: 0.85, Entities: entities}
	}

	// 7. Department names and aliases.
	if dept := validator.ValidateDepartment(lower); dept.Outcome == validator.Valid {
		entities["department"] = dept.Normalized
		return Result{Intent: intents.ProvideInformation, Confidence: 0.7, Entities: entities}
	}

	// 8. Date tokens.
	if numericDatePattern.MatchString(lower) {
		entities["date"] = numericDatePattern.FindString(lower)
		entities["preferred_date"] = entities["date"]
		return Result{Intent: intents.ProvideInformation, Confidence: 0.65, Entities: entities}
	}
	if hit, word := containsAny(lower, relativeDateWords); hit {
		entities["date"] = word
		entities["preferred_date"] = word
		return Result{Intent: intents.ProvideInformation, Confidence: 0.65, Entities: entities}
	}

	// 9. Time tokens.
	if timePattern.MatchString(lower) {
		match := timePattern.FindString(lower)
		entities["time"] = match
		entities["preferred_time"] = match
		return Result{Intent: intents.ProvideInformation, Confidence: 0.65, Entities: entities}
	}

	// 10. Phone number.
	stripped := phoneDigitsPattern.ReplaceAllString(strings.TrimSpace(text), "")
	if tenDigitPattern.MatchString(stripped) {
		entities["phone"] = stripped
		return Result{Intent: intents.ProvideInformation, Confidence: 0.7, Entities: entities}
	}

	// 11. Short capitalized phrase, not a common stopword.
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) > 0 && len(words) <= 3 {
		allCapitalized := true
		allStopwords := true
		for _, w := range words {
			if !capitalizedWord.MatchString(w) {
				allCapitalized = false
				break
			}
			if !nameStopwords[w] {
				allStopwords = false
			}
		}
		if allCapitalized && !allStopwords {
			entities["name"] = strings.Join(words, " ")
			return Result{Intent: intents.ProvideInformation, Confidence: 0.6, Entities: entities}
		}
	}

	// 12. Otherwise very short input is a bare value; else UNCLEAR.
	if len(words) > 0 && len(words) <= 3 {
		entities["value"] = strings.TrimSpace(text)
		return Result{Intent: intents.ProvideInformation, Confidence: 0.5, Entities: entities}
	}

	return unclear()
}
