package workflow

import "context"

// Escalation hands the conversation off to a human in the same turn, for
// a reported emergency and for an explicit request to talk to a person
// alike. It asks the caller nothing and records "caller_requested" as the
// reason in both cases.
type Escalation struct{}

// NewEscalation builds the human-escalation workflow.
func NewEscalation() *Escalation {
	return &Escalation{}
}

func (w *Escalation) Name() string { return workflowEscalation }

func (w *Escalation) Start(ctx context.Context, in Input) (Step, error) {
	return Step{
		ResponseText: "I'm connecting you with a member of our staff now. Please hold.",
		Complete:     true,
		Escalate:     true,
		EscalateWhy:  "caller_requested",
	}, nil
}

func (w *Escalation) Continue(ctx context.Context, in Input, state map[string]any) (Step, error) {
	return w.Start(ctx, in)
}
