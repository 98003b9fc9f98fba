package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carewave/voicedesk/internal/backendclient"
	"github.com/carewave/voicedesk/internal/validator"
)

// PortalAppointmentBooking is the patient-portal variant of appointment
// booking: every backend call uses the caller's own bearer token instead
// of the service account, and slots come from a specific doctor's
// availability on a specific date rather than the department roster.
// Like its staff-facing counterpart it re-runs the same pipeline each
// turn — department, doctor, date, time, then confirmation.
type PortalAppointmentBooking struct{}

// NewPortalAppointmentBooking builds the patient-portal appointment
// workflow, used on a patient-portal session whose request carries the
// caller's bearer token.
func NewPortalAppointmentBooking() *PortalAppointmentBooking {
	return &PortalAppointmentBooking{}
}

func (w *PortalAppointmentBooking) Name() string { return workflowAppointmentBooking }

const (
	stagePortalSelectDoctor = "select_doctor"
	stagePortalNeedDate     = "need_date"
	stagePortalSelectTime   = "select_time"
)

var portalConfirmationWords = []string{"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "book", "please", "do it", "go ahead"}
var portalDenialWords = []string{"no", "nope", "cancel", "stop", "don't", "not now"}

func (w *PortalAppointmentBooking) Start(ctx context.Context, in Input) (Step, error) {
	return w.advance(ctx, in, map[string]any{})
}

func (w *PortalAppointmentBooking) Continue(ctx context.Context, in Input, state map[string]any) (Step, error) {
	return w.advance(ctx, in, state)
}

func (w *PortalAppointmentBooking) advance(ctx context.Context, in Input, state map[string]any) (Step, error) {
	// Step 1: resolve the department.
	department, _ := state["department"].(string)
	departmentID, _ := state["department_id"].(string)
	if dep := mergedString(in, state, "department"); dep != "" {
		department = dep
	}

	if departmentID == "" {
		if department == "" {
			return Step{
				ResponseText: "I can book that for you. Which department would you like?",
				StateUpdate:  map[string]any{"stage": stageCollectDepartment},
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
				StateUpdate:  map[string]any{"stage": stageCollectDepartment},
			}, nil
		}
		departmentID, department = matched.ID, matched.Name
	}
	state["department_id"] = departmentID
	state["department"] = department

	// Step 2: resolve the doctor.
	doctorID, _ := state["doctor_id"].(string)
	doctorName, _ := state["doctor_name"].(string)
	availableDoctors, _ := state["available_doctors"].([]backendclient.Doctor)

	if doctorID == "" && len(availableDoctors) > 0 {
		if id, name, ok := matchDoctor(availableDoctors, in.RawText); ok {
			doctorID, doctorName = id, name
		}
	}

	if doctorID == "" && len(availableDoctors) == 0 {
		doctors, err := in.Backend.ListDoctors(ctx, departmentID)
		if err != nil {
			return Step{}, err
		}
		if len(doctors) == 0 {
			return Step{
				ResponseText: "There are no doctors available in that department right now. Would you like to try another department?",
				StateUpdate:  map[string]any{"stage": stageCollectDepartment},
				Complete:     true,
			}, nil
		}
		state["available_doctors"] = doctors
		state["stage"] = stagePortalSelectDoctor
		return Step{
			ResponseText: fmt.Sprintf("We have %s in %s. Who would you like to see?", doctorHints(doctors), department),
			StateUpdate:  state,
		}, nil
	}
	if doctorID == "" {
		state["stage"] = stagePortalSelectDoctor
		return Step{ResponseText: "Who would you like to see?", StateUpdate: state}, nil
	}
	state["doctor_id"] = doctorID
	state["doctor_name"] = doctorName

	// Step 3: resolve the date.
	date, _ := state["date"].(string)
	if preferred := mergedString(in, nil, "preferred_date"); preferred != "" {
		res := validator.ValidateDate(preferred, validator.DateOptions{AllowPast: false, MaxFutureDays: 90}, time.Now())
		if res.Outcome == validator.Invalid {
			return Step{ResponseText: res.Error, StateUpdate: state}, nil
		}
		date = res.Normalized
	}
	if date == "" {
		state["stage"] = stagePortalNeedDate
		return Step{
			ResponseText: fmt.Sprintf("When would you like to see %s? You can say today, tomorrow, or a specific date.", doctorName),
			StateUpdate:  state,
		}, nil
	}
	state["date"] = date

	// Step 4: resolve the time, from the doctor's open slots on that date.
	chosenTime, _ := state["time"].(string)
	availableSlots, _ := state["available_slots"].([]backendclient.Slot)
	if chosenTime == "" && len(availableSlots) > 0 {
		if t, ok := matchSlotTime(availableSlots, in.RawText); ok {
			chosenTime = t
		}
	}
	if chosenTime == "" && len(availableSlots) == 0 {
		slots, err := in.Backend.ListSlots(ctx, in.PortalToken, doctorID, date)
		if err != nil {
			return Step{}, err
		}
		if len(slots) == 0 {
			state["date"] = ""
			state["stage"] = stagePortalNeedDate
			return Step{
				ResponseText: "There are no open slots that day. Would you like to try another date?",
				StateUpdate:  state,
			}, nil
		}
		state["available_slots"] = slots
		state["stage"] = stagePortalSelectTime
		return Step{
			ResponseText: fmt.Sprintf("Here are the available times — %s. Which one works for you?", slotHints(slots)),
			StateUpdate:  state,
		}, nil
	}
	if chosenTime == "" {
		return Step{ResponseText: fmt.Sprintf("Which time works for you — %s?", slotHints(availableSlots)), StateUpdate: state}, nil
	}
	state["time"] = chosenTime

	// Step 5: confirm before booking.
	confirmed, _ := state["confirmed"].(bool)
	if !confirmed {
		if spokenDenial(in.RawText) {
			return Step{ResponseText: "No problem. Would you like to choose a different time or doctor?", Complete: true}, nil
		}
		if !spokenConfirmation(in.RawText) {
			state["stage"] = stageConfirm
			return Step{
				ResponseText: fmt.Sprintf("Let me confirm: appointment with %s on %s at %s. Shall I book it?", doctorName, date, chosenTime),
				StateUpdate:  state,
			}, nil
		}
		state["confirmed"] = true
	}

	notes := mergedString(in, state, "notes")
	appt, err := in.Backend.BookPortalAppointment(ctx, in.PortalToken, backendclient.PortalBookingRequest{
		DoctorID:     doctorID,
		DepartmentID: departmentID,
		Date:         date,
		Time:         chosenTime,
		Notes:        notes,
	})
	if err != nil {
		return Step{}, err
	}
	return Step{
		ResponseText: fmt.Sprintf("You're booked, reference %s.", appt.ID),
		Complete:     true,
	}, nil
}

func matchSlotTime(slots []backendclient.Slot, rawInput string) (string, bool) {
	lower := strings.ToLower(rawInput)
	for _, s := range slots {
		if s.Time != "" && strings.Contains(lower, strings.ToLower(s.Time)) {
			return s.Time, true
		}
	}
	return "", false
}

func slotHints(slots []backendclient.Slot) string {
	times := make([]string, 0, len(slots))
	for i, s := range slots {
		if i >= 5 {
			break
		}
		times = append(times, s.Time)
	}
	return strings.Join(times, ", ")
}

func spokenConfirmation(rawInput string) bool {
	lower := strings.ToLower(rawInput)
	for _, w := range portalConfirmationWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func spokenDenial(rawInput string) bool {
	lower := strings.ToLower(rawInput)
	for _, w := range portalDenialWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
