package workflow

import (
	"context"
	"time"

	"github.com/carewave/voicedesk/internal/intents"
)

// canned replies for the intents the engine answers directly, without
// ever engaging a workflow. GREETING is handled separately, since its
// text depends on the time of day.
var cannedReplies = map[intents.Intent]string{
	intents.Goodbye: "Thank you for calling. Goodbye.",
	intents.Help:    "I can help you book or check appointments, register as a patient, check bed availability, book lab tests, or check your bill. What would you like to do?",
}

// starters maps an intent that begins a new task to the workflow that
// handles it. Intents absent here either are simple (handled above) or
// never start a workflow (e.g. UNCLEAR).
type starter func(portal bool) Workflow

var starters = map[intents.Intent]starter{
	intents.BookAppointment: func(portal bool) Workflow {
		if portal {
			return NewPortalAppointmentBooking()
		}
		return NewAppointmentBooking()
	},
	intents.RescheduleAppointment: func(portal bool) Workflow {
		if portal {
			return NewPortalAppointmentBooking()
		}
		return NewAppointmentBooking()
	},
	intents.CancelAppointment:      func(bool) Workflow { return NewAppointmentBooking() },
	intents.RegisterPatient:        func(bool) Workflow { return NewPatientRegistration() },
	intents.OPDCheckin:             func(bool) Workflow { return NewOPDCheckin() },
	intents.RequestAdmission:       func(bool) Workflow { return NewBedAllocation() },
	intents.RequestBedAllocation:   func(bool) Workflow { return NewBedAllocation() },
	intents.BookLabTest:            func(bool) Workflow { return NewLabBooking() },
	intents.CheckAppointmentStatus: func(bool) Workflow { return NewStatusInquiry() },
	intents.OPDQueueStatus:         func(bool) Workflow { return NewStatusInquiry() },
	intents.CheckBedAvailability:   func(bool) Workflow { return NewStatusInquiry() },
	intents.CheckLabStatus:         func(bool) Workflow { return NewStatusInquiry() },
	intents.CheckBillStatus:        func(bool) Workflow { return NewStatusInquiry() },
	intents.GeneralStatusInquiry:   func(bool) Workflow { return NewStatusInquiry() },
	intents.FindPatient:            func(bool) Workflow { return NewStatusInquiry() },
	intents.ReportEmergency:        func(bool) Workflow { return NewEscalation() },
	intents.EscalateToHuman:        func(bool) Workflow { return NewEscalation() },
}

// registry looks a workflow up by its Name() for resuming an
// in-progress session.
func registry(name string, portal bool) Workflow {
	switch name {
	case workflowAppointmentBooking:
		if portal {
			return NewPortalAppointmentBooking()
		}
		return NewAppointmentBooking()
	case workflowPatientRegistration:
		return NewPatientRegistration()
	case workflowOPDCheckin:
		return NewOPDCheckin()
	case workflowBedAllocation:
		return NewBedAllocation()
	case workflowLabBooking:
		return NewLabBooking()
	case workflowStatusInquiry:
		return NewStatusInquiry()
	case workflowEscalation:
		return NewEscalation()
	default:
		return nil
	}
}

// Decision is what the engine decided to do with one turn.
type Decision struct {
	ResponseText    string
	HandledDirectly bool

	WorkflowName string
	StateUpdate  map[string]any
	Started      bool
	Complete     bool
	Escalate     bool
	EscalateWhy  string
}

// Engine applies the routing rules: simple intents answer directly; an
// active patient-portal booking continues on every other turn except an
// emergency or a request for a person; UNCLEAR continues whatever workflow is active or asks for
// clarification; confirmation-family intents always continue the active
// workflow; any other intent either continues a same-intent workflow in
// progress or starts a fresh one, replacing whatever was active.
type Engine struct{}

// NewEngine builds a workflow-routing Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Route advances the conversation by one turn given the currently active
// workflow (if any) and its carried state.
func (e *Engine) Route(ctx context.Context, in Input, activeWorkflow string, activeState map[string]any, isPortal bool) (Decision, error) {
	if in.Intent == intents.Greeting {
		return Decision{ResponseText: GenerateGreeting(time.Now()), HandledDirectly: true}, nil
	}

	if reply, ok := cannedReplies[in.Intent]; ok {
		return Decision{ResponseText: reply, HandledDirectly: true}, nil
	}

	// A portal booking in progress takes every later turn, whatever it was
	// classified as, except an emergency or a request for a person.
	if isPortal && activeWorkflow == workflowAppointmentBooking &&
		in.Intent != intents.ReportEmergency && in.Intent != intents.EscalateToHuman {
		return e.continueActive(ctx, in, activeWorkflow, activeState, isPortal)
	}

	if in.Intent == intents.Unclear {
		if activeWorkflow == "" {
			return Decision{
				ResponseText:    "I'm sorry, I didn't quite catch that. Could you tell me what you'd like to do — book an appointment, register, check a bed, or something else?",
				HandledDirectly: true,
			}, nil
		}
		return e.continueActive(ctx, in, activeWorkflow, activeState, isPortal)
	}

	if intents.IsConfirmationFamily(in.Intent) && activeWorkflow != "" {
		return e.continueActive(ctx, in, activeWorkflow, activeState, isPortal)
	}

	originatingIntent, _ := activeState["originating_intent"].(string)
	if activeWorkflow != "" && originatingIntent == string(in.Intent) {
		return e.continueActive(ctx, in, activeWorkflow, activeState, isPortal)
	}

	start, ok := starters[in.Intent]
	if !ok {
		return Decision{
			ResponseText:    "I'm not able to help with that over this line. Is there something else I can do for you?",
			HandledDirectly: true,
		}, nil
	}

	wf := start(isPortal)
	step, err := wf.Start(ctx, in)
	if err != nil {
		return Decision{}, err
	}
	state := step.StateUpdate
	if state == nil {
		state = map[string]any{}
	}
	state["originating_intent"] = string(in.Intent)

	return Decision{
		ResponseText: step.ResponseText,
		WorkflowName: wf.Name(),
		StateUpdate:  state,
		Started:      true,
		Complete:     step.Complete,
		Escalate:     step.Escalate,
		EscalateWhy:  step.EscalateWhy,
	}, nil
}

func (e *Engine) continueActive(ctx context.Context, in Input, activeWorkflow string, activeState map[string]any, isPortal bool) (Decision, error) {
	wf := registry(activeWorkflow, isPortal)
	if wf == nil {
		return Decision{
			ResponseText:    "Let's start over — what would you like to do?",
			HandledDirectly: true,
		}, nil
	}

	step, err := wf.Continue(ctx, in, activeState)
	if err != nil {
		return Decision{}, err
	}
	state := step.StateUpdate
	if state == nil {
		state = map[string]any{}
	}
	if _, ok := state["originating_intent"]; !ok {
		if oi, ok := activeState["originating_intent"]; ok {
			state["originating_intent"] = oi
		}
	}

	return Decision{
		ResponseText: step.ResponseText,
		WorkflowName: wf.Name(),
		StateUpdate:  state,
		Complete:     step.Complete,
		Escalate:     step.Escalate,
		EscalateWhy:  step.EscalateWhy,
	}, nil
}

// GenerateGreeting returns the opening line for a brand-new session,
// picking a time-of-day bucket off the wall clock: morning before noon,
// afternoon before 5pm, evening after that.
func GenerateGreeting(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "Good morning, thank you for calling. How can I help you today?"
	case hour < 17:
		return "Good afternoon, thank you for calling. How can I help you today?"
	default:
		return "Good evening, thank you for calling. How can I help you today?"
	}
}
