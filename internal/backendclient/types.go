package backendclient

// Patient is a hospital-system patient record.
type Patient struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	DOB       string `json:"dob,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// Department is a hospital department.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Doctor is a physician belonging to a department.
type Doctor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"departmentId"`
}

// Appointment is an OPD or patient-portal appointment. It is the request
// payload of CreateOPDAppointment and the response shape of both
// CreateOPDAppointment and BookPortalAppointment (which posts a
// PortalBookingRequest).
type Appointment struct {
	ID                string `json:"id"`
	PatientID         string `json:"patient,omitempty"`
	DoctorID          string `json:"doctor,omitempty"`
	DepartmentID      string `json:"department,omitempty"`
	ScheduledAt       string `json:"scheduledDate,omitempty"`
	Type              string `json:"type,omitempty"`
	ChiefComplaint    string `json:"chiefComplaint,omitempty"`
	Status            string `json:"status"`
	AppointmentNumber string `json:"appointmentNumber,omitempty"`
	TokenNumber       string `json:"tokenNumber,omitempty"`
}

// Slot is an open booking slot in the patient portal, keyed by doctor
// and date.
type Slot struct {
	ID           string `json:"id"`
	DoctorID     string `json:"doctorId"`
	DepartmentID string `json:"departmentId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

// PortalBookingRequest is what BookPortalAppointment posts on behalf of
// an authenticated patient-portal caller.
type PortalBookingRequest struct {
	DoctorID     string `json:"doctorId"`
	DepartmentID string `json:"departmentId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Notes        string `json:"notes,omitempty"`
}

// QueueEntry is one entry in the OPD queue.
type QueueEntry struct {
	AppointmentID string `json:"appointmentId"`
	Position      int    `json:"position"`
	Status        string `json:"status"`
}

// Bed is a physical bed and its current occupancy state.
type Bed struct {
	ID     string `json:"id"`
	Ward   string `json:"ward"`
	Status string `json:"status"`
}

// Admission is an inpatient admission request.
type Admission struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	BedID     string `json:"bedId,omitempty"`
	Status    string `json:"status"`
}

// EmergencyCase is an emergency-queue entry.
type EmergencyCase struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Status    string `json:"status"`
}

// LabTest is a catalog entry for an orderable lab test.
type LabTest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LabOrder is a placed lab order and its status.
type LabOrder struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	TestID    string `json:"testId"`
	Status    string `json:"status"`
}

// Bill is a patient billing summary.
type Bill struct {
	ID        string  `json:"id"`
	PatientID string  `json:"patientId"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	Token       string `json:"token"`
	ExpiresIn   int    `json:"expiresIn"`
}

func (r loginResponse) token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}
