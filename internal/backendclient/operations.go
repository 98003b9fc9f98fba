package backendclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// --- Staff-facing operations, service-account authenticated ---

// SearchPatients looks up patients by free-text query (name or phone).
func (c *Client) SearchPatients(ctx context.Context, query string) ([]Patient, error) {
	var out []Patient
	path := fmt.Sprintf("/patients/search?q=%s", query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPatient fetches a single patient by ID.
func (c *Client) GetPatient(ctx context.Context, id string) (Patient, error) {
	var out Patient
	path := fmt.Sprintf("/patients/%s", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, ""); err != nil {
		return Patient{}, err
	}
	return out, nil
}

// CreatePatient registers a new patient.
func (c *Client) CreatePatient(ctx context.Context, p Patient) (Patient, error) {
	var out Patient
	if err := c.do(ctx, http.MethodPost, "/patients", p, &out, ""); err != nil {
		return Patient{}, err
	}
	return out, nil
}

// ListDepartments lists the hospital's departments.
func (c *Client) ListDepartments(ctx context.Context) ([]Department, error) {
	var out []Department
	if err := c.do(ctx, http.MethodGet, "/departments", nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDoctors lists doctors belonging to a department.
func (c *Client) ListDoctors(ctx context.Context, departmentID string) ([]Doctor, error) {
	var out []Doctor
	path := fmt.Sprintf("/departments/%s/doctors", departmentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOPDAppointment books an OPD appointment on the caller's behalf.
func (c *Client) CreateOPDAppointment(ctx context.Context, appt Appointment) (Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "/opd/appointments", appt, &out, ""); err != nil {
		return Appointment{}, err
	}
	return out, nil
}

// ListOPDAppointments lists OPD appointments, optionally filtered by
// patient, status (e.g. "scheduled"), and date (YYYY-MM-DD).
func (c *Client) ListOPDAppointments(ctx context.Context, patientID, status, date string) ([]Appointment, error) {
	var out []Appointment
	path := "/opd/appointments"
	q := make([]string, 0, 3)
	if patientID != "" {
		q = append(q, "patientId="+patientID)
	}
	if status != "" {
		q = append(q, "status="+status)
	}
	if date != "" {
		q = append(q, "date="+date)
	}
	if len(q) > 0 {
		path = fmt.Sprintf("%s?%s", path, strings.Join(q, "&"))
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckInAppointment marks an OPD appointment as checked in.
func (c *Client) CheckInAppointment(ctx context.Context, appointmentID string) (Appointment, error) {
	var out Appointment
	path := fmt.Sprintf("/opd/appointments/%s/checkin", appointmentID)
	if err := c.do(ctx, http.MethodPut, path, nil, &out, ""); err != nil {
		return Appointment{}, err
	}
	return out, nil
}

// ListOPDQueue lists the current OPD queue.
func (c *Client) ListOPDQueue(ctx context.Context) ([]QueueEntry, error) {
	var out []QueueEntry
	if err := c.do(ctx, http.MethodGet, "/opd/queue", nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckBedAvailability reports free-bed counts, optionally by ward.
func (c *Client) CheckBedAvailability(ctx context.Context, ward string) ([]Bed, error) {
	var out []Bed
	path := "/beds/availability"
	if ward != "" {
		path = fmt.Sprintf("%s?ward=%s", path, ward)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBeds lists beds, optionally filtered by status.
func (c *Client) ListBeds(ctx context.Context, status string) ([]Bed, error) {
	var out []Bed
	path := "/beds"
	if status != "" {
		path = fmt.Sprintf("%s?status=%s", path, status)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// AllocateBed assigns a bed to an admission.
func (c *Client) AllocateBed(ctx context.Context, bedID, admissionID string) (Bed, error) {
	var out Bed
	payload := map[string]string{"bedId": bedID, "admissionId": admissionID}
	if err := c.do(ctx, http.MethodPost, "/beds/allocate", payload, &out, ""); err != nil {
		return Bed{}, err
	}
	return out, nil
}

// CreateAdmission opens an inpatient admission request.
func (c *Client) CreateAdmission(ctx context.Context, admission Admission) (Admission, error) {
	var out Admission
	if err := c.do(ctx, http.MethodPost, "/ipd/admissions", admission, &out, ""); err != nil {
		return Admission{}, err
	}
	return out, nil
}

// ListAdmissionRequests lists pending inpatient admission requests.
func (c *Client) ListAdmissionRequests(ctx context.Context) ([]Admission, error) {
	var out []Admission
	if err := c.do(ctx, http.MethodGet, "/ipd/requests", nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEmergencyCase raises a new emergency case.
func (c *Client) CreateEmergencyCase(ctx context.Context, ec EmergencyCase) (EmergencyCase, error) {
	var out EmergencyCase
	if err := c.do(ctx, http.MethodPost, "/emergency/cases", ec, &out, ""); err != nil {
		return EmergencyCase{}, err
	}
	return out, nil
}

// ListEmergencyQueue lists the current emergency queue.
func (c *Client) ListEmergencyQueue(ctx context.Context) ([]EmergencyCase, error) {
	var out []EmergencyCase
	if err := c.do(ctx, http.MethodGet, "/emergency/queue", nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLabTests lists the lab-test catalog.
func (c *Client) ListLabTests(ctx context.Context) ([]LabTest, error) {
	var out []LabTest
	if err := c.do(ctx, http.MethodGet, "/lab/tests", nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLabOrders lists lab orders, optionally filtered by patient.
func (c *Client) ListLabOrders(ctx context.Context, patientID string) ([]LabOrder, error) {
	var out []LabOrder
	path := "/lab/orders"
	if patientID != "" {
		path = fmt.Sprintf("%s?patientId=%s", path, patientID)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPatientBills lists a patient's billing records.
func (c *Client) ListPatientBills(ctx context.Context, patientID string) ([]Bill, error) {
	var out []Bill
	path := fmt.Sprintf("/billing/patient/%s", patientID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Patient-portal operations, caller-supplied bearer token ---

// ListSlots lists a doctor's open booking slots on a given date, visible
// to the authenticated patient.
func (c *Client) ListSlots(ctx context.Context, bearerToken, doctorID, date string) ([]Slot, error) {
	var out []Slot
	path := "/patient/slots"
	q := make([]string, 0, 2)
	if doctorID != "" {
		q = append(q, "doctorId="+doctorID)
	}
	if date != "" {
		q = append(q, "date="+date)
	}
	if len(q) > 0 {
		path = fmt.Sprintf("%s?%s", path, strings.Join(q, "&"))
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out, bearerToken); err != nil {
		return nil, err
	}
	return out, nil
}

// BookPortalAppointment books a doctor/date/time slot on behalf of the
// authenticated patient.
func (c *Client) BookPortalAppointment(ctx context.Context, bearerToken string, req PortalBookingRequest) (Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "/patient/appointments", req, &out, bearerToken); err != nil {
		return Appointment{}, err
	}
	return out, nil
}

// ListPortalAppointments lists the authenticated patient's own appointments.
func (c *Client) ListPortalAppointments(ctx context.Context, bearerToken string) ([]Appointment, error) {
	var out []Appointment
	if err := c.do(ctx, http.MethodGet, "/patient/appointments", nil, &out, bearerToken); err != nil {
		return nil, err
	}
	return out, nil
}
