package backendclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewave/voicedesk/internal/apierr"
	"github.com/carewave/voicedesk/internal/common/config"
)

func newTestClient(t *testing.T, server *httptest.Server, allow, deny []string) *Client {
	t.Helper()
	cfg := config.BackendConfig{
		BaseURL:            server.URL,
		ServiceAccountUser: "svc",
		ServiceAccountPass: "secret",
		AllowList:          allow,
		DenyList:           deny,
		RequestTimeoutSecs: 5,
	}
	return New(cfg)
}

func TestClientLoginCachesToken(t *testing.T) {
	var loginCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			loginCalls++
			_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "tok-1"})
		case "/departments":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode([]Department{{ID: "d1", Name: "Cardiology"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server, []string{"GET /departments", "POST /auth/login"}, nil)

	depts, err := c.ListDepartments(t.Context())
	require.NoError(t, err)
	assert.Len(t, depts, 1)

	_, err = c.ListDepartments(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, loginCalls, "second call should reuse the cached token")
}

func TestClientRejectsEndpointNotOnAllowList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should never be called for a disallowed endpoint")
	}))
	defer server.Close()

	c := newTestClient(t, server, []string{"GET /departments"}, nil)

	_, err := c.ListPatientBills(t.Context(), "p1")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindForbidden))
}

func TestClientDenyListOverridesAllowList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should never be called for a denied endpoint")
	}))
	defer server.Close()

	c := newTestClient(t, server, []string{"GET /departments"}, []string{"GET /departments"})

	_, err := c.ListDepartments(t.Context())
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindForbidden))
}

func TestClientReauthenticatesOnceOnUnauthorized(t *testing.T) {
	var loginCalls, deptCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			loginCalls++
			_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "tok-1"})
		case "/departments":
			deptCalls++
			if r.Header.Get("Authorization") == "Bearer tok-1" && deptCalls == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode([]Department{{ID: "d1", Name: "Cardiology"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server, []string{"GET /departments", "POST /auth/login"}, nil)

	depts, err := c.ListDepartments(t.Context())
	require.NoError(t, err)
	assert.Len(t, depts, 1)
	assert.Equal(t, 2, loginCalls, "expected exactly one re-authentication after the 401")
}

func TestClientCategorizesNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "tok-1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server, []string{"GET /patients/*", "POST /auth/login"}, nil)

	_, err := c.GetPatient(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindNotFound))
}

func TestClientPortalOperationUsesCallerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer patient-tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]Slot{{ID: "s1"}})
	}))
	defer server.Close()

	c := newTestClient(t, server, []string{"GET /patient/slots"}, nil)

	slots, err := c.ListSlots(t.Context(), "patient-tok", "", "")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}
