package workflow

import (
	"context"
	"fmt"

	"github.com/carewave/voicedesk/internal/intents"
)

// StatusInquiry answers a single read-only question — appointment
// status, OPD queue position, bed availability, lab result status, bill
// status, or a general patient lookup — and always completes in one
// turn once it has what it needs.
type StatusInquiry struct{}

// NewStatusInquiry builds the read-only status-inquiry workflow.
func NewStatusInquiry() *StatusInquiry {
	return &StatusInquiry{}
}

func (w *StatusInquiry) Name() string { return workflowStatusInquiry }

const stageAwaitIdentifier = "await_identifier"

func (w *StatusInquiry) Start(ctx context.Context, in Input) (Step, error) {
	return w.answer(ctx, in, nil)
}

func (w *StatusInquiry) Continue(ctx context.Context, in Input, state map[string]any) (Step, error) {
	return w.answer(ctx, in, state)
}

func (w *StatusInquiry) answer(ctx context.Context, in Input, state map[string]any) (Step, error) {
	switch in.Intent {
	case intents.CheckAppointmentStatus:
		appointmentID := mergedString(in, state, "appointment_id")
		if appointmentID == "" {
			return Step{ResponseText: "Could you give me your appointment reference number?", StateUpdate: map[string]any{"stage": stageAwaitIdentifier}}, nil
		}
		appts, err := in.Backend.ListOPDAppointments(ctx, "", "", "")
		if err != nil {
			return Step{}, err
		}
		for _, a := range appts {
			if a.ID == appointmentID {
				return Step{ResponseText: fmt.Sprintf("Your appointment is %s.", a.Status), Complete: true}, nil
			}
		}
		return Step{ResponseText: "I couldn't find an appointment with that reference number.", Complete: true}, nil

	case intents.OPDQueueStatus:
		queue, err := in.Backend.ListOPDQueue(ctx)
		if err != nil {
			return Step{}, err
		}
		return Step{ResponseText: fmt.Sprintf("There are currently %d people in the OPD queue.", len(queue)), Complete: true}, nil

	case intents.CheckBedAvailability:
		ward := mergedString(in, state, "ward")
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
		return Step{ResponseText: fmt.Sprintf("There are %d beds available right now.", free), Complete: true}, nil

	case intents.CheckLabStatus:
		patientID := mergedString(in, state, "patient_id")
		if patientID == "" {
			return Step{ResponseText: "Could you give me the patient id to check the lab status?", StateUpdate: map[string]any{"stage": stageAwaitIdentifier}}, nil
		}
		orders, err := in.Backend.ListLabOrders(ctx, patientID)
		if err != nil {
			return Step{}, err
		}
		if len(orders) == 0 {
			return Step{ResponseText: "I don't see any lab orders for that patient.", Complete: true}, nil
		}
		return Step{ResponseText: fmt.Sprintf("Your most recent lab order is %s.", orders[len(orders)-1].Status), Complete: true}, nil

	case intents.CheckBillStatus:
		patientID := mergedString(in, state, "patient_id")
		if patientID == "" {
			return Step{ResponseText: "Could you give me the patient id to check the bill?", StateUpdate: map[string]any{"stage": stageAwaitIdentifier}}, nil
		}
		bills, err := in.Backend.ListPatientBills(ctx, patientID)
		if err != nil {
			return Step{}, err
		}
		if len(bills) == 0 {
			return Step{ResponseText: "I don't see any bills for that patient.", Complete: true}, nil
		}
		return Step{ResponseText: fmt.Sprintf("The latest bill is %s, amount %.2f.", bills[len(bills)-1].Status, bills[len(bills)-1].Amount), Complete: true}, nil

	case intents.FindPatient:
		query := mergedString(in, state, "name")
		if query == "" {
			query = mergedString(in, state, "phone")
		}
		if query == "" {
			return Step{ResponseText: "Could you give me the patient's name or phone number?", StateUpdate: map[string]any{"stage": stageAwaitIdentifier}}, nil
		}
		patients, err := in.Backend.SearchPatients(ctx, query)
		if err != nil {
			return Step{}, err
		}
		if len(patients) == 0 {
			return Step{ResponseText: "I couldn't find a matching patient record.", Complete: true}, nil
		}
		return Step{ResponseText: fmt.Sprintf("I found %s %s in our records.", patients[0].FirstName, patients[0].LastName), Complete: true}, nil

	default:
		return Step{ResponseText: "Could you tell me a bit more about what you'd like to check?", Complete: true}, nil
	}
}
