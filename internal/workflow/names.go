package workflow

const (
	workflowAppointmentBooking  = "appointment_booking"
	workflowPatientRegistration = "patient_registration"
	workflowOPDCheckin          = "opd_checkin"
	workflowBedAllocation       = "bed_allocation"
	workflowLabBooking          = "lab_booking"
	workflowStatusInquiry       = "status_inquiry"
	workflowEscalation          = "escalation"
)

// Stage labels used by more than one workflow's state bag: the portal
// appointment booking, patient registration and lab booking.
const (
	stageCollectDepartment = "collect_department"
	stageConfirm           = "confirm"
)
