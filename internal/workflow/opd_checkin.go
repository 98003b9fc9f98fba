package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carewave/voicedesk/internal/backendclient"
)

// OPDCheckin resolves the caller to a patient (by id or phone), finds
// their scheduled appointments for today, and checks the right one in,
// reporting the resulting queue position.
type OPDCheckin struct{}

// NewOPDCheckin builds the OPD check-in workflow.
func NewOPDCheckin() *OPDCheckin {
	return &OPDCheckin{}
}

func (w *OPDCheckin) Name() string { return workflowOPDCheckin }

const (
	stageCheckinNeedPatient       = "need_patient"
	stageCheckinSelectAppointment = "select_appointment"
)

func (w *OPDCheckin) Start(ctx context.Context, in Input) (Step, error) {
	return w.resolvePatient(ctx, in, map[string]any{"stage": stageCheckinNeedPatient})
}

func (w *OPDCheckin) Continue(ctx context.Context, in Input, state map[string]any) (Step, error) {
	if stage(state) == stageCheckinSelectAppointment {
		return w.selectAppointment(ctx, in, state)
	}
	return w.resolvePatient(ctx, in, state)
}

func (w *OPDCheckin) resolvePatient(ctx context.Context, in Input, state map[string]any) (Step, error) {
	patientID := mergedString(in, state, "patient_id")
	phone := mergedString(in, state, "phone")

	if patientID == "" && phone == "" {
		return Step{
			ResponseText: "To check you in, please tell me your patient id or the phone number you registered with.",
			StateUpdate:  state,
		}, nil
	}

	if patientID == "" {
		patients, err := in.Backend.SearchPatients(ctx, phone)
		if err != nil {
			return Step{}, err
		}
		if len(patients) == 0 {
			return Step{
				ResponseText: "I couldn't find a patient record with that phone number. Could you give me your patient id instead?",
				StateUpdate:  map[string]any{"stage": stageCheckinNeedPatient},
			}, nil
		}
		patientID = patients[0].ID
	}

	today := time.Now().Format("2006-01-02")
	appts, err := in.Backend.ListOPDAppointments(ctx, patientID, "scheduled", today)
	if err != nil {
		return Step{}, err
	}

	switch len(appts) {
	case 0:
		return Step{
			ResponseText: "I couldn't find an appointment for you today. Would you like to book a new appointment?",
			Complete:     true,
		}, nil
	case 1:
		return w.checkIn(ctx, in, appts[0].ID)
	default:
		return Step{
			ResponseText: fmt.Sprintf("I found %d appointments today at %s. Which one would you like to check in for?", len(appts), joinScheduledTimes(appts)),
			StateUpdate:  map[string]any{"stage": stageCheckinSelectAppointment, "patient_id": patientID, "appointments": appts},
		}, nil
	}
}

func (w *OPDCheckin) selectAppointment(ctx context.Context, in Input, state map[string]any) (Step, error) {
	appts, _ := state["appointments"].([]backendclient.Appointment)
	if len(appts) == 0 {
		return w.resolvePatient(ctx, in, map[string]any{"stage": stageCheckinNeedPatient})
	}

	raw := strings.ToLower(strings.TrimSpace(in.RawText))
	for _, a := range appts {
		if raw != "" && strings.Contains(raw, strings.ToLower(a.ScheduledAt)) {
			return w.checkIn(ctx, in, a.ID)
		}
	}
	switch {
	case strings.Contains(raw, "first") || strings.Contains(raw, "1"):
		return w.checkIn(ctx, in, appts[0].ID)
	case strings.Contains(raw, "second") || strings.Contains(raw, "2"):
		return w.checkIn(ctx, in, appts[min(1, len(appts)-1)].ID)
	}

	return Step{
		ResponseText: fmt.Sprintf("Which of these would you like — %s?", joinScheduledTimes(appts)),
		StateUpdate:  state,
	}, nil
}

func joinScheduledTimes(appts []backendclient.Appointment) string {
	times := make([]string, 0, len(appts))
	for _, a := range appts {
		times = append(times, a.ScheduledAt)
	}
	return strings.Join(times, ", ")
}

func (w *OPDCheckin) checkIn(ctx context.Context, in Input, appointmentID string) (Step, error) {
	appt, err := in.Backend.CheckInAppointment(ctx, appointmentID)
	if err != nil {
		return Step{}, err
	}
	queue, err := in.Backend.ListOPDQueue(ctx)
	if err != nil {
		return Step{}, err
	}
	position := 0
	for i, q := range queue {
		if q.AppointmentID == appointmentID {
			position = i + 1
			break
		}
	}

	response := "Check-in complete!"
	if appt.TokenNumber != "" {
		response += fmt.Sprintf(" Your token number is %s.", appt.TokenNumber)
	}
	if position > 0 {
		response += fmt.Sprintf(" You're number %d in the queue.", position)
	}
	response += " Please have a seat, we'll call you shortly."
	return Step{ResponseText: response, Complete: true}, nil
}
