package workflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewave/voicedesk/internal/backendclient"
	"github.com/carewave/voicedesk/internal/common/config"
	"github.com/carewave/voicedesk/internal/intents"
)

func registrationTestBackend(t *testing.T, handler http.HandlerFunc) *backendclient.Client {
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
			"POST /patients",
		},
	})
}

func TestPatientRegistrationCollectsFieldsOneAtATime(t *testing.T) {
	w := NewPatientRegistration()
	backend := registrationTestBackend(t, func(rw http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach the backend before all fields are collected")
	})

	step, err := w.Start(t.Context(), Input{Intent: intents.RegisterPatient, Backend: backend})
	require.NoError(t, err)
	assert.Contains(t, step.ResponseText, "first name")

	step, err = w.Continue(t.Context(), Input{Intent: intents.ProvideInformation, Entities: map[string]any{"first_name": "Asha"}, Backend: backend}, step.StateUpdate)
	require.NoError(t, err)
	assert.Contains(t, step.ResponseText, "last name")

	step, err = w.Continue(t.Context(), Input{Intent: intents.ProvideInformation, Entities: map[string]any{"last_name": "Rao"}, Backend: backend}, step.StateUpdate)
	require.NoError(t, err)
	assert.Contains(t, step.ResponseText, "phone number")
}

func TestPatientRegistrationRejectsInvalidPhone(t *testing.T) {
	w := NewPatientRegistration()
	backend := registrationTestBackend(t, func(rw http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach the backend with an invalid phone")
	})
	state := map[string]any{"stage": stageCollectFields, "first_name": "Asha", "last_name": "Rao"}
	step, err := w.Continue(t.Context(), Input{Intent: intents.ProvideInformation, Entities: map[string]any{"phone": "123"}, Backend: backend}, state)
	require.NoError(t, err)
	assert.Contains(t, step.ResponseText, "phone number")
	_, stillSet := step.StateUpdate["phone"]
	assert.False(t, stillSet)
}

func TestPatientRegistrationConfirmsThenRegisters(t *testing.T) {
	w := NewPatientRegistration()
	backend := registrationTestBackend(t, func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(rw).Encode(map[string]string{"accessToken": "tok"})
		case "/patients":
			var body backendclient.Patient
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "Asha", body.FirstName)
			assert.Equal(t, "9876543210", body.Phone)
			assert.Equal(t, "1990-05-01", body.DOB)
			assert.Equal(t, "Female", body.Gender)
			_ = json.NewEncoder(rw).Encode(backendclient.Patient{ID: "p99"})
		default:
			http.NotFound(rw, r)
		}
	})

	state := map[string]any{"stage": stageCollectFields, "first_name": "Asha", "last_name": "Rao"}
	step, err := w.Continue(t.Context(), Input{
		Intent: intents.ProvideInformation,
		Entities: map[string]any{
			"phone":         "9876543210",
			"date_of_birth": "1990-05-01",
			"gender":        "female",
		},
		Backend: backend,
	}, state)
	require.NoError(t, err)
	assert.Contains(t, step.ResponseText, "Shall I go ahead and register you")
	assert.Equal(t, stageConfirm, step.StateUpdate["stage"])

	step, err = w.Continue(t.Context(), Input{Intent: intents.ConfirmYes, Backend: backend}, step.StateUpdate)
	require.NoError(t, err)
	assert.True(t, step.Complete)
	assert.Contains(t, step.ResponseText, "p99")
}
