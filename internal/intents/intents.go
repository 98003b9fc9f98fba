// Package intents defines the closed vocabulary of caller intents shared
// by the classifier, safety guardrails, and workflow engine.
package intents

// Intent is a label from the closed set the orchestrator recognizes.
type Intent string

const (
	Greeting    Intent = "GREETING"
	Goodbye     Intent = "GOODBYE"
	Help        Intent = "HELP"
	Unclear     Intent = "UNCLEAR"

	RegisterPatient Intent = "REGISTER_PATIENT"
	FindPatient     Intent = "FIND_PATIENT"
	UpdatePatient   Intent = "UPDATE_PATIENT"

	BookAppointment       Intent = "BOOK_APPOINTMENT"
	RescheduleAppointment Intent = "RESCHEDULE_APPOINTMENT"
	CancelAppointment     Intent = "CANCEL_APPOINTMENT"
	CheckAppointmentStatus Intent = "CHECK_APPOINTMENT_STATUS"

	OPDCheckin      Intent = "OPD_CHECKIN"
	OPDQueueStatus  Intent = "OPD_QUEUE_STATUS"

	RequestAdmission       Intent = "REQUEST_ADMISSION"
	CheckBedAvailability   Intent = "CHECK_BED_AVAILABILITY"
	RequestBedAllocation   Intent = "REQUEST_BED_ALLOCATION"

	BookLabTest    Intent = "BOOK_LAB_TEST"
	CheckLabStatus Intent = "CHECK_LAB_STATUS"

	CheckBillStatus       Intent = "CHECK_BILL_STATUS"
	GeneralStatusInquiry  Intent = "GENERAL_STATUS_INQUIRY"

	ReportEmergency  Intent = "REPORT_EMERGENCY"
	EscalateToHuman  Intent = "ESCALATE_TO_HUMAN"

	ConfirmYes         Intent = "CONFIRM_YES"
	ConfirmNo          Intent = "CONFIRM_NO"
	ProvideInformation Intent = "PROVIDE_INFORMATION"
)

// confirmationFamily always enters the active workflow as a continuation,
// per the engine's routing rules.
var confirmationFamily = map[Intent]bool{
	ConfirmYes:         true,
	ConfirmNo:          true,
	ProvideInformation: true,
}

// IsConfirmationFamily reports whether the intent belongs to the
// confirmation family that the workflow engine always routes to the
// active workflow as a continuation, never as a fresh dispatch.
func IsConfirmationFamily(i Intent) bool {
	return confirmationFamily[i]
}

// simple intents are handled directly by the engine without involving a
// workflow.
var simple = map[Intent]bool{
	Greeting: true,
	Goodbye:  true,
	Help:     true,
}

// IsSimple reports whether the intent is handled directly by the engine.
func IsSimple(i Intent) bool {
	return simple[i]
}
