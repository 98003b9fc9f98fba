package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewave/voicedesk/internal/classifier"
	"github.com/carewave/voicedesk/internal/collaborators"
	"github.com/carewave/voicedesk/internal/common/logger"
	"github.com/carewave/voicedesk/internal/dialog"
	"github.com/carewave/voicedesk/internal/intents"
	"github.com/carewave/voicedesk/internal/session"
	"github.com/carewave/voicedesk/internal/workflow"
	v1 "github.com/carewave/voicedesk/pkg/api/v1"
)

type stubClassifier struct{}

func (stubClassifier) Classify(context.Context, string, map[string]any) (classifier.Result, error) {
	return classifier.Result{Intent: intents.Greeting, Confidence: 0.99, Entities: map[string]any{}}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewStore(5*time.Minute, 20)
	kernel := &dialog.Kernel{
		Sessions:   store,
		Classifier: stubClassifier{},
		Engine:     workflow.NewEngine(),
	}
	h := NewHandler(kernel, store, collaborators.NoopSTT{}, collaborators.NoopTTS{}, logger.Default())
	return NewRouter(h, logger.Default()), store
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartCallThenProcessTurn(t *testing.T) {
	r, _ := newTestRouter(t)

	body, _ := json.Marshal(v1.StartCallRequest{CallerID: "caller-1", Channel: "phone"})
	req := httptest.NewRequest(http.MethodPost, "/voice/call", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var started v1.StartCallResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.NotEmpty(t, started.SessionID)

	turnBody, _ := json.Marshal(v1.ProcessTurnRequest{SessionID: started.SessionID, Text: "hello"})
	turnReq := httptest.NewRequest(http.MethodPost, "/conversation/process", bytes.NewReader(turnBody))
	turnReq.Header.Set("Content-Type", "application/json")
	turnW := httptest.NewRecorder()
	r.ServeHTTP(turnW, turnReq)
	require.Equal(t, http.StatusOK, turnW.Code)

	var turnResp v1.ProcessTurnResponse
	require.NoError(t, json.Unmarshal(turnW.Body.Bytes(), &turnResp))
	assert.Equal(t, "GREETING", turnResp.Intent)
}

func TestProcessTurnUnknownSessionReturnsGone(t *testing.T) {
	r, _ := newTestRouter(t)

	body, _ := json.Marshal(v1.ProcessTurnRequest{SessionID: "missing", Text: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/conversation/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestGetSessionNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/session/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEndSessionSucceeds(t *testing.T) {
	r, store := newTestRouter(t)
	sid := store.Create("caller-1", session.ChannelPhone)

	req := httptest.NewRequest(http.MethodDelete, "/session/"+sid, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
