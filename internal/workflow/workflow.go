// Package workflow implements the multi-turn task state machines the
// Dialog Kernel delegates to once a turn resolves to an actionable
// intent: appointment booking, patient registration, OPD check-in, bed
// allocation, lab booking, status inquiries, and human escalation.
package workflow

import (
	"context"

	"github.com/carewave/voicedesk/internal/backendclient"
	"github.com/carewave/voicedesk/internal/intents"
)

// Input is everything a workflow step needs: the classified turn plus
// the caller's accumulated entity context.
type Input struct {
	Intent     intents.Intent
	Confidence float64
	Entities   map[string]any
	RawText    string

	// Context is the session's merged entity bag, carried across turns
	// (e.g. a patient id resolved two turns ago).
	Context map[string]any

	// PortalToken is the caller's bearer token from the current request,
	// if any; the portal variant of a workflow, chosen only on a
	// patient-portal session, uses it instead of the service account.
	PortalToken string

	// Backend is the hospital backend client every workflow dispatches
	// its outbound calls through.
	Backend *backendclient.Client
}

// Step is the result of advancing a workflow by one turn.
type Step struct {
	ResponseText string
	StateUpdate  map[string]any
	Complete     bool
	Escalate     bool
	EscalateWhy  string
}

// Workflow is one multi-turn task state machine. State between turns is
// opaque to the engine: each workflow reads and writes its own bag under
// a "stage" key plus whatever else it needs.
type Workflow interface {
	// Name identifies the workflow for session persistence and logging.
	Name() string

	// Start begins a fresh run of the workflow from the triggering turn.
	Start(ctx context.Context, in Input) (Step, error)

	// Continue advances an in-progress run using its prior state.
	Continue(ctx context.Context, in Input, state map[string]any) (Step, error)
}

// stage reads the workflow's current stage out of its state bag.
func stage(state map[string]any) string {
	s, _ := state["stage"].(string)
	return s
}

// merged resolves key through three tiers, in order: the turn's freshly
// extracted entities, the session's carried-forward context, and
// finally the workflow's own state bag (values it collected and
// stashed on an earlier turn of this same run). state may be nil when
// called from Start, before any state bag exists.
func merged(in Input, state map[string]any, key string) (any, bool) {
	if v, ok := in.Entities[key]; ok && !isEmpty(v) {
		return v, true
	}
	if v, ok := in.Context[key]; ok && !isEmpty(v) {
		return v, true
	}
	if v, ok := state[key]; ok && !isEmpty(v) {
		return v, true
	}
	return nil, false
}

func mergedString(in Input, state map[string]any, key string) string {
	v, ok := merged(in, state, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}
