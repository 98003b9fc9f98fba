package workflow

import (
	"context"
	"fmt"

	"github.com/carewave/voicedesk/internal/backendclient"
	"github.com/carewave/voicedesk/internal/intents"
)

// BedAllocation handles both a plain bed-availability question and the
// full admission request: open an admission, find a free bed, confirm,
// then allocate it.
type BedAllocation struct{}

// NewBedAllocation builds the bed-allocation/admission workflow.
func NewBedAllocation() *BedAllocation {
	return &BedAllocation{}
}

func (w *BedAllocation) Name() string { return workflowBedAllocation }

const (
	stageAwaitWard   = "await_ward"
	stageAwaitBedYes = "await_bed_confirm"
)

func (w *BedAllocation) Start(ctx context.Context, in Input) (Step, error) {
	if in.Intent == intents.CheckBedAvailability {
		return w.reportAvailability(ctx, in, mergedString(in, nil, "ward"))
	}

	patientID := mergedString(in, nil, "patient_id")
	if patientID == "" {
		return Step{
			ResponseText: "I can start an admission request. What's the patient's id or name?",
			StateUpdate:  map[string]any{"stage": stageAwaitWard},
		}, nil
	}
	return w.startAdmission(ctx, in, patientID)
}

func (w *BedAllocation) Continue(ctx context.Context, in Input, state map[string]any) (Step, error) {
	switch stage(state) {
	case stageAwaitWard:
		patientID := mergedString(in, state, "patient_id")
		if patientID == "" {
			return Step{ResponseText: "What's the patient's id or name?", StateUpdate: state}, nil
		}
		return w.startAdmission(ctx, in, patientID)

	case stageAwaitBedYes:
		if in.Intent == intents.ConfirmNo {
			return Step{ResponseText: "Okay, I won't allocate that bed.", Complete: true}, nil
		}
		bedID, _ := state["bed_id"].(string)
		admissionID, _ := state["admission_id"].(string)
		bed, err := in.Backend.AllocateBed(ctx, bedID, admissionID)
		if err != nil {
			return Step{}, err
		}
		return Step{
			ResponseText: fmt.Sprintf("Bed %s has been allocated. Is there anything else I can help with?", bed.ID),
			Complete:     true,
		}, nil

	default:
		return Step{ResponseText: "What's the patient's id or name?", StateUpdate: map[string]any{"stage": stageAwaitWard}}, nil
	}
}

func (w *BedAllocation) startAdmission(ctx context.Context, in Input, patientID string) (Step, error) {
	admission, err := in.Backend.CreateAdmission(ctx, backendclient.Admission{PatientID: patientID})
	if err != nil {
		return Step{}, err
	}
	beds, err := in.Backend.ListBeds(ctx, "available")
	if err != nil {
		return Step{}, err
	}
	if len(beds) == 0 {
		return Step{
			ResponseText: "There are no beds available right now. Your admission request has been logged and a nurse will follow up.",
			Complete:     true,
		}, nil
	}
	return Step{
		ResponseText: fmt.Sprintf("We have a bed available in %s. Shall I allocate it?", beds[0].Ward),
		StateUpdate:  map[string]any{"stage": stageAwaitBedYes, "admission_id": admission.ID, "bed_id": beds[0].ID},
	}, nil
}

func (w *BedAllocation) reportAvailability(ctx context.Context, in Input, ward string) (Step, error) {
	beds, err := in.Backend.CheckBedAvailability(ctx, ward)
	if err != nil {
		return Step{}, err
	}
	free := 0
	for _, b := range beds {
		if b.Status == "available" {
			free++
		}
	}
	return Step{
		ResponseText: fmt.Sprintf("There are %d beds available right now. Would you like to start an admission request?", free),
		Complete:     true,
	}, nil
}
