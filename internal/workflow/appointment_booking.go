package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carewave/voicedesk/internal/backendclient"
	"github.com/carewave/voicedesk/internal/intents"
	"github.com/carewave/voicedesk/internal/validator"
)

// AppointmentBooking books an OPD appointment through the service
// account. Every turn re-runs the same five-step pipeline against
// whatever has been collected so far — patient, department, doctor
// (optional), date, then confirmation — picking up wherever the caller
// left off rather than tracking a rigid per-stage transition table.
// Cancellation of an existing appointment is handled separately since it
// shares none of that collection shape.
type AppointmentBooking struct{}

// NewAppointmentBooking builds the staff-facing appointment workflow.
func NewAppointmentBooking() *AppointmentBooking {
	return &AppointmentBooking{}
}

func (w *AppointmentBooking) Name() string { return workflowAppointmentBooking }

const (
	stageApptNeedPatient    = "need_patient_id"
	stageApptNeedDepartment = "need_department"
	stageApptSelectDoctor   = "select_doctor"
	stageApptNeedDate       = "need_date"
	stageApptAwaitConfirm   = "awaiting_confirmation"
	stageApptAwaitCancel    = "await_cancel_confirm"
)

func (w *AppointmentBooking) Start(ctx context.Context, in Input) (Step, error) {
	if in.Intent == intents.CancelAppointment {
		return w.startCancel(ctx, in)
	}
	return w.advance(ctx, in, map[string]any{})
}

func (w *AppointmentBooking) Continue(ctx context.Context, in Input, state map[string]any) (Step, error) {
	if stage(state) == stageApptAwaitCancel {
		return w.finishCancel(ctx, in, state)
	}

	if stage(state) == stageApptAwaitConfirm {
		if in.Intent == intents.ConfirmNo {
			return Step{
				ResponseText: "No problem. Would you like to choose a different date or department?",
				Complete:     true,
			}, nil
		}
		state["confirmed"] = true
	}

	return w.advance(ctx, in, state)
}

// advance walks the booking pipeline from wherever state leaves off and
// stops at the first thing still missing, asking for it.
func (w *AppointmentBooking) advance(ctx context.Context, in Input, state map[string]any) (Step, error) {
	// Step 1: resolve the patient, by id directly or by phone lookup.
	patientID, _ := state["patient_id"].(string)
	if patientID == "" {
		patientID = mergedString(in, state, "patient_id")
	}
	phone := mergedString(in, state, "phone")

	if patientID == "" {
		if phone == "" {
			return Step{
				ResponseText: "To book an appointment, I'll need your patient id or registered phone number.",
				StateUpdate:  map[string]any{"stage": stageApptNeedPatient},
			}, nil
		}
		res := validator.ValidatePhone(phone)
		if res.Outcome == validator.Invalid {
			return Step{
				ResponseText: res.Error + " Could you give me your patient id or registered phone number?",
				StateUpdate:  map[string]any{"stage": stageApptNeedPatient},
			}, nil
		}
		patients, err := in.Backend.SearchPatients(ctx, res.Normalized)
		if err != nil {
			return Step{}, err
		}
		if len(patients) == 0 {
			return Step{
				ResponseText: "I couldn't find a patient with that phone number. Are you a new patient? I can help you register first.",
				Complete:     true,
			}, nil
		}
		patientID = patients[0].ID
	}
	state["patient_id"] = patientID

	// Step 2: resolve the department.
	department, _ := state["department"].(string)
	departmentID, _ := state["department_id"].(string)
	if dep := mergedString(in, state, "department"); dep != "" {
		department = dep
	}

	if departmentID == "" {
		if department == "" {
			return Step{
				ResponseText: "Which department would you like to visit? For example General Medicine, Cardiology, Orthopedics, or ENT.",
				StateUpdate:  map[string]any{"stage": stageApptNeedDepartment, "patient_id": patientID},
			}, nil
		}
		depts, err := in.Backend.ListDepartments(ctx)
		if err != nil {
			return Step{}, err
		}
		matched := matchDepartment(depts, department)
		if matched == nil {
			return Step{
				ResponseText: fmt.Sprintf("I couldn't find that department. We have: %s. Which one would you like?", departmentHints(depts)),
				StateUpdate:  map[string]any{"stage": stageApptNeedDepartment, "patient_id": patientID},
			}, nil
		}
		departmentID, department = matched.ID, matched.Name
	}
	state["department_id"] = departmentID
	state["department"] = department

	// Step 3: offer and resolve a doctor. Optional — the caller can also
	// proceed with any available doctor once one has been offered.
	doctorID, _ := state["doctor_id"].(string)
	doctorName, _ := state["doctor_name"].(string)
	availableDoctors, _ := state["available_doctors"].([]backendclient.Doctor)
	doctorOffered, _ := state["doctor_offered"].(bool)

	if doctorID == "" && len(availableDoctors) > 0 {
		if id, name, ok := matchDoctor(availableDoctors, in.RawText); ok {
			doctorID, doctorName = id, name
		}
	}

	if doctorID == "" && !doctorOffered {
		doctors, err := in.Backend.ListDoctors(ctx, departmentID)
		if err != nil {
			return Step{}, err
		}
		state["doctor_offered"] = true
		if len(doctors) > 0 {
			state["available_doctors"] = doctors
			state["stage"] = stageApptSelectDoctor
			return Step{
				ResponseText: fmt.Sprintf("We have %d doctors in %s. Would you like to see %s, or any available doctor?", len(doctors), department, doctorHints(doctors)),
				StateUpdate:  state,
			}, nil
		}
	}
	if doctorID != "" {
		state["doctor_id"] = doctorID
		state["doctor_name"] = doctorName
	}

	// Step 4: resolve the date.
	scheduledDate, _ := state["scheduled_date"].(string)
	if preferred := mergedString(in, nil, "preferred_date"); preferred != "" {
		res := validator.ValidateDate(preferred, validator.DateOptions{AllowPast: false, MaxFutureDays: 90}, time.Now())
		if res.Outcome == validator.Invalid {
			return Step{ResponseText: res.Error, StateUpdate: state}, nil
		}
		scheduledDate = res.Normalized
	}
	if scheduledDate == "" {
		state["stage"] = stageApptNeedDate
		return Step{
			ResponseText: "When would you like to schedule the appointment? You can say today, tomorrow, or a specific date.",
			StateUpdate:  state,
		}, nil
	}
	state["scheduled_date"] = scheduledDate

	// Step 5: confirm before booking.
	confirmed, _ := state["confirmed"].(bool)
	if !confirmed {
		summary := fmt.Sprintf("Let me confirm: appointment in %s", department)
		if doctorName != "" {
			summary += fmt.Sprintf(" with %s", doctorName)
		}
		summary += fmt.Sprintf(" on %s. Shall I book this?", scheduledDate)
		state["stage"] = stageApptAwaitConfirm
		return Step{ResponseText: summary, StateUpdate: state}, nil
	}

	// Step 6: book it.
	appt := backendclient.Appointment{
		PatientID:    patientID,
		DepartmentID: departmentID,
		ScheduledAt:  scheduledDate,
		Type:         "opd",
	}
	if doctorID != "" {
		appt.DoctorID = doctorID
	}
	if cc := mergedString(in, state, "chief_complaint"); cc != "" {
		appt.ChiefComplaint = cc
	}

	booked, err := in.Backend.CreateOPDAppointment(ctx, appt)
	if err != nil {
		return Step{
			ResponseText: "I couldn't book the appointment. Let me connect you to the reception desk.",
			Complete:     true,
			Escalate:     true,
			EscalateWhy:  "booking_failed",
		}, nil
	}

	return Step{
		ResponseText: fmt.Sprintf("Your appointment is confirmed! Appointment number: %s, token: %s. Please arrive 15 minutes before your scheduled time. Is there anything else I can help with?", booked.AppointmentNumber, booked.TokenNumber),
		Complete:     true,
	}, nil
}

func matchDepartment(depts []backendclient.Department, input string) *backendclient.Department {
	lower := strings.ToLower(strings.TrimSpace(input))
	for i := range depts {
		name := strings.ToLower(depts[i].Name)
		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			return &depts[i]
		}
	}
	return nil
}

func departmentHints(depts []backendclient.Department) string {
	names := make([]string, 0, 5)
	for i, d := range depts {
		if i >= 5 {
			break
		}
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}

func matchDoctor(doctors []backendclient.Doctor, rawInput string) (id, name string, ok bool) {
	lower := strings.ToLower(rawInput)
	for _, d := range doctors {
		if d.Name != "" && strings.Contains(lower, strings.ToLower(d.Name)) {
			return d.ID, d.Name, true
		}
	}
	if len(doctors) == 1 && (strings.Contains(lower, "yes") || strings.Contains(lower, "book")) {
		return doctors[0].ID, doctors[0].Name, true
	}
	return "", "", false
}

func doctorHints(doctors []backendclient.Doctor) string {
	names := make([]string, 0, 3)
	for i, d := range doctors {
		if i >= 3 {
			break
		}
		names = append(names, "Dr. "+d.Name)
	}
	return strings.Join(names, ", ")
}

func (w *AppointmentBooking) startCancel(ctx context.Context, in Input) (Step, error) {
	appointmentID := mergedString(in, nil, "appointment_id")
	if appointmentID == "" {
		return Step{
			ResponseText: "Which appointment would you like to cancel? Could you give me the reference number?",
			StateUpdate:  map[string]any{"stage": stageApptAwaitCancel},
		}, nil
	}
	return Step{
		ResponseText: "Just to confirm, you'd like to cancel that appointment?",
		StateUpdate:  map[string]any{"stage": stageApptAwaitCancel, "appointment_id": appointmentID},
	}, nil
}

func (w *AppointmentBooking) finishCancel(ctx context.Context, in Input, state map[string]any) (Step, error) {
	appointmentID, _ := state["appointment_id"].(string)
	if appointmentID == "" {
		appointmentID = mergedString(in, state, "appointment_id")
	}
	if appointmentID == "" {
		return Step{ResponseText: "I'll need the appointment reference number to cancel it.", StateUpdate: state}, nil
	}
	if in.Intent == intents.ConfirmNo {
		return Step{ResponseText: "Okay, I won't cancel that appointment.", Complete: true}, nil
	}

	appts, err := in.Backend.ListOPDAppointments(ctx, "", "", "")
	if err != nil {
		return Step{}, err
	}
	found := false
	for _, a := range appts {
		if a.ID == appointmentID {
			found = true
			break
		}
	}
	if !found {
		return Step{ResponseText: "I couldn't find an appointment with that reference number.", Complete: true}, nil
	}

	return Step{
		ResponseText: "Your appointment has been cancelled. Is there anything else I can help with?",
		Complete:     true,
	}, nil
}
