package workflow

import (
	"context"
	"fmt"
)

// LabBooking collects a test name, resolves it against the lab catalog,
// then confirms the booking in its reply. It places no lab order with the
// backend.
type LabBooking struct{}

// NewLabBooking builds the lab-test booking workflow.
func NewLabBooking() *LabBooking {
	return &LabBooking{}
}

func (w *LabBooking) Name() string { return workflowLabBooking }

const stageAwaitTestName = "await_test_name"

func (w *LabBooking) Start(ctx context.Context, in Input) (Step, error) {
	testName := mergedString(in, nil, "test_name")
	if testName == "" {
		return Step{
			ResponseText: "Which lab test would you like to book?",
			StateUpdate:  map[string]any{"stage": stageAwaitTestName},
		}, nil
	}
	return w.resolveTest(ctx, in, testName)
}

func (w *LabBooking) Continue(ctx context.Context, in Input, state map[string]any) (Step, error) {
	switch stage(state) {
	case stageAwaitTestName:
		testName := mergedString(in, state, "test_name")
		if testName == "" {
			return Step{ResponseText: "Which lab test would you like to book?", StateUpdate: state}, nil
		}
		return w.resolveTest(ctx, in, testName)

	case stageConfirm:
		return Step{
			ResponseText: "Your lab test has been booked. Is there anything else I can help with?",
			Complete:     true,
		}, nil

	default:
		return Step{ResponseText: "Which lab test would you like to book?", StateUpdate: map[string]any{"stage": stageAwaitTestName}}, nil
	}
}

func (w *LabBooking) resolveTest(ctx context.Context, in Input, testName string) (Step, error) {
	tests, err := in.Backend.ListLabTests(ctx)
	if err != nil {
		return Step{}, err
	}
	var testID string
	for _, t := range tests {
		if t.Name == testName {
			testID = t.ID
			break
		}
	}
	if testID == "" {
		return Step{
			ResponseText: fmt.Sprintf("I couldn't find %q in our lab catalog. Could you tell me the test name again?", testName),
			StateUpdate:  map[string]any{"stage": stageAwaitTestName},
		}, nil
	}
	return Step{
		ResponseText: "Shall I go ahead and book that test?",
		StateUpdate:  map[string]any{"stage": stageConfirm, "test_id": testID},
	}, nil
}
