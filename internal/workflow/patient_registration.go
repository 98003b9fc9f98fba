package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/carewave/voicedesk/internal/backendclient"
	"github.com/carewave/voicedesk/internal/intents"
	"github.com/carewave/voicedesk/internal/validator"
)

// PatientRegistration collects first name, last name, phone number, date
// of birth, and gender — one field per turn, validating phone and date
// of birth as they come in — before confirming and submitting a new
// patient record.
type PatientRegistration struct{}

// NewPatientRegistration builds the new-patient registration workflow.
func NewPatientRegistration() *PatientRegistration {
	return &PatientRegistration{}
}

func (w *PatientRegistration) Name() string { return workflowPatientRegistration }

const stageCollectFields = "collect_fields"

var registrationFields = []string{"first_name", "last_name", "phone", "date_of_birth", "gender"}

func (w *PatientRegistration) Start(ctx context.Context, in Input) (Step, error) {
	return w.collect(in, map[string]any{"stage": stageCollectFields})
}

func (w *PatientRegistration) Continue(ctx context.Context, in Input, state map[string]any) (Step, error) {
	switch stage(state) {
	case stageCollectFields:
		return w.collect(in, state)
	case stageConfirm:
		if in.Intent == intents.ConfirmNo {
			return Step{ResponseText: "Okay, let's start over. What's your first name?", StateUpdate: map[string]any{"stage": stageCollectFields}}, nil
		}
		firstName, _ := state["first_name"].(string)
		lastName, _ := state["last_name"].(string)
		phone, _ := state["phone"].(string)
		dob, _ := state["date_of_birth"].(string)
		gender, _ := state["gender"].(string)

		patient, err := in.Backend.CreatePatient(ctx, backendclient.Patient{
			FirstName: firstName,
			LastName:  lastName,
			Phone:     phone,
			DOB:       dob,
			Gender:    gender,
		})
		if err != nil {
			return Step{}, err
		}
		return Step{
			ResponseText: fmt.Sprintf("You're registered, your patient id is %s. What would you like to do next?", patient.ID),
			Complete:     true,
		}, nil
	default:
		return w.collect(in, map[string]any{"stage": stageCollectFields})
	}
}

func (w *PatientRegistration) collect(in Input, state map[string]any) (Step, error) {
	for _, f := range registrationFields {
		if v := mergedString(in, state, f); v != "" {
			state[f] = v
		}
	}

	if phone, ok := state["phone"].(string); ok && phone != "" {
		res := validator.ValidatePhone(phone)
		if res.Outcome == validator.Invalid {
			delete(state, "phone")
			return Step{ResponseText: res.Error + " What's the best phone number to reach you at?", StateUpdate: state}, nil
		}
		state["phone"] = res.Normalized
	}

	if dob, ok := state["date_of_birth"].(string); ok && dob != "" {
		res := validator.ValidateDate(dob, validator.DateOptions{AllowPast: true}, time.Now())
		if res.Outcome == validator.Invalid {
			delete(state, "date_of_birth")
			return Step{ResponseText: res.Error + " What's your date of birth?", StateUpdate: state}, nil
		}
		state["date_of_birth"] = res.Normalized
	}

	if gender, ok := state["gender"].(string); ok && gender != "" {
		res := validator.ValidateGender(gender)
		if res.Outcome == validator.Invalid {
			delete(state, "gender")
			return Step{ResponseText: res.Error, StateUpdate: state}, nil
		}
		state["gender"] = res.Normalized
	}

	var missing []string
	for _, f := range registrationFields {
		if _, ok := state[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Step{ResponseText: nextRegistrationPrompt(missing[0]), StateUpdate: state}, nil
	}

	state["stage"] = stageConfirm
	return Step{
		ResponseText: fmt.Sprintf("Let me confirm: %s %s, phone %s, date of birth %s, %s. Shall I go ahead and register you?",
			state["first_name"], state["last_name"], state["phone"], state["date_of_birth"], state["gender"]),
		StateUpdate: state,
	}, nil
}

func nextRegistrationPrompt(field string) string {
	switch field {
	case "first_name":
		return "What's your first name?"
	case "last_name":
		return "And your last name?"
	case "phone":
		return "What's the best phone number to reach you at?"
	case "date_of_birth":
		return "What's your date of birth?"
	case "gender":
		return "And finally, what's your gender — male, female, or other?"
	default:
		return "Could you tell me more?"
	}
}
