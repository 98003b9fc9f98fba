package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carewave/voicedesk/internal/apierr"
	"github.com/carewave/voicedesk/internal/session"
	"github.com/carewave/voicedesk/internal/workflow"
	v1 "github.com/carewave/voicedesk/pkg/api/v1"
)

// Health reports process liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, v1.HealthResponse{Status: "ok"})
}

// StartCall creates a new session and returns its opening greeting.
func (h *Handler) StartCall(c *gin.Context) {
	var req v1.StartCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	channel := session.Channel(req.Channel)
	if channel == "" {
		channel = session.ChannelPhone
	}

	sid := h.sessions.Create(req.CallerID, channel)
	c.JSON(http.StatusOK, v1.StartCallResponse{
		SessionID: sid,
		Greeting:  workflow.GenerateGreeting(time.Now()),
	})
}

// ProcessTurn classifies and acts on one caller utterance.
func (h *Handler) ProcessTurn(c *gin.Context) {
	var req v1.ProcessTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.kernel.ProcessTurn(c.Request.Context(), req.SessionID, req.Text, req.PortalToken)
	if err != nil {
		h.respondKernelError(c, err)
		return
	}

	c.JSON(http.StatusOK, v1.ProcessTurnResponse{
		SessionID:    result.SessionID,
		ResponseText: result.ResponseText,
		Intent:       string(result.Intent),
		Confidence:   result.Confidence,
		Ended:        result.Ended,
		Escalated:    result.Escalated,
	})
}

// Transcribe converts caller audio to text via the configured STT
// collaborator.
func (h *Handler) Transcribe(c *gin.Context) {
	var req v1.TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	transcript, confidence, err := h.stt.Transcribe(c.Request.Context(), req.AudioBase64, req.SampleRate)
	if err != nil {
		h.logger.WithError(err).WithSessionID(req.SessionID).Warn("transcription unavailable")
		respondError(c, http.StatusServiceUnavailable, "stt_unavailable", err.Error())
		return
	}

	c.JSON(http.StatusOK, v1.TranscribeResponse{Transcript: transcript, Confidence: confidence})
}

// Synthesize converts reply text to audio via the configured TTS
// collaborator. A TTS failure never fails the turn — the caller still
// has the textual reply.
func (h *Handler) Synthesize(c *gin.Context) {
	var req v1.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	audio, duration, err := h.tts.Synthesize(c.Request.Context(), req.Text, req.Speed, req.Pitch)
	if err != nil {
		h.logger.WithError(err).WithSessionID(req.SessionID).Warn("synthesis unavailable")
		c.JSON(http.StatusOK, v1.SynthesizeResponse{})
		return
	}

	c.JSON(http.StatusOK, v1.SynthesizeResponse{AudioBase64: audio, DurationSeconds: duration})
}

// GetSession returns a read-only session snapshot.
func (h *Handler) GetSession(c *gin.Context) {
	id := c.Param("id")
	snap, ok := h.sessions.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "session_expired", "session not found or expired")
		return
	}

	c.JSON(http.StatusOK, v1.SessionResponse{
		SessionID:       snap.ID,
		CallerID:        snap.CallerID,
		Channel:         string(snap.Channel),
		Active:          snap.Active,
		CurrentWorkflow: snap.CurrentWorkflow,
		TurnCount:       len(snap.Turns),
		Context:         snap.Context,
	})
}

// EndSession marks a session inactive.
func (h *Handler) EndSession(c *gin.Context) {
	id := c.Param("id")
	if !h.sessions.End(id) {
		respondError(c, http.StatusNotFound, "session_expired", "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, v1.ErrorResponse{Error: code, Message: message})
}

func (h *Handler) respondKernelError(c *gin.Context, err error) {
	kind, ok := apierr.KindOf(err)
	if !ok {
		h.logger.WithError(err).Error("unhandled kernel error", zap.String("path", c.FullPath()))
		respondError(c, http.StatusInternalServerError, "internal", "something went wrong")
		return
	}

	switch kind {
	case apierr.KindSessionExpired:
		respondError(c, http.StatusGone, string(kind), err.Error())
	case apierr.KindSessionFull:
		respondError(c, http.StatusConflict, string(kind), err.Error())
	case apierr.KindInvalidInput:
		respondError(c, http.StatusBadRequest, string(kind), err.Error())
	case apierr.KindForbidden:
		respondError(c, http.StatusForbidden, string(kind), err.Error())
	case apierr.KindNotFound:
		respondError(c, http.StatusNotFound, string(kind), err.Error())
	case apierr.KindUpstreamUnavailable, apierr.KindClassifierUnavailable:
		respondError(c, http.StatusServiceUnavailable, string(kind), err.Error())
	default:
		h.logger.WithError(err).Error("backend call failed", zap.String("path", c.FullPath()))
		respondError(c, http.StatusBadGateway, string(kind), "the hospital system could not complete that request")
	}
}
