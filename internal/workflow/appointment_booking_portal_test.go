package workflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewave/voicedesk/internal/backendclient"
	"github.com/carewave/voicedesk/internal/common/config"
	"github.com/carewave/voicedesk/internal/intents"
)

func portalTestBackend(t *testing.T, handler http.HandlerFunc) *backendclient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return backendclient.New(config.BackendConfig{
		BaseURL:            server.URL,
		ServiceAccountUser: "svc",
		ServiceAccountPass: "secret",
		RequestTimeoutSecs: 5,
		AllowList: []string{
			"POST /auth/login",
			"GET /departments",
			"GET /departments/*/doctors",
			"GET /patient/slots",
			"POST /patient/appointments",
		},
	})
}

func TestPortalAppointmentBookingFullFlow(t *testing.T) {
	w := NewPortalAppointmentBooking()
	backend := portalTestBackend(t, func(rw http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login":
			_ = json.NewEncoder(rw).Encode(map[string]string{"accessToken": "tok"})
		case r.URL.Path == "/departments":
			_ = json.NewEncoder(rw).Encode([]backendclient.Department{{ID: "d1", Name: "ENT"}})
		case strings.HasPrefix(r.URL.Path, "/departments/") && strings.HasSuffix(r.URL.Path, "/doctors"):
			_ = json.NewEncoder(rw).Encode([]backendclient.Doctor{{ID: "doc1", Name: "Mehta", DepartmentID: "d1"}})
		case strings.HasPrefix(r.URL.Path, "/patient/slots"):
			assert.Equal(t, "Bearer patient-tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(rw).Encode([]backendclient.Slot{{ID: "s1", DoctorID: "doc1", Date: "2026-08-05", Time: "10:00"}})
		case r.URL.Path == "/patient/appointments" && r.Method == http.MethodPost:
			var body backendclient.PortalBookingRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "doc1", body.DoctorID)
			assert.Equal(t, "d1", body.DepartmentID)
			assert.Equal(t, "10:00", body.Time)
			_ = json.NewEncoder(rw).Encode(backendclient.Appointment{ID: "apt-portal-1"})
		default:
			http.NotFound(rw, r)
		}
	})

	step, err := w.Start(t.Context(), Input{
		Intent:      intents.BookAppointment,
		Entities:    map[string]any{"department": "ent"},
		Backend:     backend,
		PortalToken: "patient-tok",
	})
	require.NoError(t, err)
	assert.Contains(t, step.ResponseText, "Who would you like to see")

	step, err = w.Continue(t.Context(), Input{
		Intent:      intents.ProvideInformation,
		RawText:     "Dr. Mehta",
		Backend:     backend,
		PortalToken: "patient-tok",
	}, step.StateUpdate)
	require.NoError(t, err)
	assert.Contains(t, step.ResponseText, "When would you like to see")

	step, err = w.Continue(t.Context(), Input{
		Intent:      intents.ProvideInformation,
		Entities:    map[string]any{"preferred_date": "tomorrow"},
		Backend:     backend,
		PortalToken: "patient-tok",
	}, step.StateUpdate)
	require.NoError(t, err)
	assert.Contains(t, step.ResponseText, "available times")

	step, err = w.Continue(t.Context(), Input{
		Intent:      intents.ProvideInformation,
		RawText:     "10:00 works",
		Backend:     backend,
		PortalToken: "patient-tok",
	}, step.StateUpdate)
	require.NoError(t, err)
	assert.Contains(t, step.ResponseText, "Shall I book it")

	step, err = w.Continue(t.Context(), Input{
		Intent:      intents.ConfirmYes,
		RawText:     "yes please",
		Backend:     backend,
		PortalToken: "patient-tok",
	}, step.StateUpdate)
	require.NoError(t, err)
	assert.True(t, step.Complete)
	assert.Contains(t, step.ResponseText, "apt-portal-1")
}

func TestPortalAppointmentBookingDenialStopsBeforeBooking(t *testing.T) {
	w := NewPortalAppointmentBooking()
	backend := portalTestBackend(t, func(rw http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Fatal("should not book when the caller declines")
		}
		http.NotFound(rw, r)
	})
	state := map[string]any{
		"department_id": "d1",
		"department":    "ENT",
		"doctor_id":     "doc1",
		"doctor_name":   "Mehta",
		"date":          "2026-08-05",
		"time":          "10:00",
	}
	step, err := w.Continue(t.Context(), Input{Intent: intents.ConfirmNo, RawText: "no thanks", Backend: backend, PortalToken: "patient-tok"}, state)
	require.NoError(t, err)
	assert.True(t, step.Complete)
	assert.Contains(t, step.ResponseText, "different time or doctor")
}
