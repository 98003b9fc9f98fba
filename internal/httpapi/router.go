// Package httpapi wires the Dialog Kernel, session store, and speech
// collaborators to the Gin HTTP surface.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/carewave/voicedesk/internal/collaborators"
	"github.com/carewave/voicedesk/internal/common/httpmw"
	"github.com/carewave/voicedesk/internal/common/logger"
	"github.com/carewave/voicedesk/internal/dialog"
	"github.com/carewave/voicedesk/internal/session"
)

// Handler holds the dependencies every route handler needs.
type Handler struct {
	kernel   *dialog.Kernel
	sessions *session.Store
	stt      collaborators.STT
	tts      collaborators.TTS
	logger   *logger.Logger
}

// NewHandler builds the HTTP Handler.
func NewHandler(kernel *dialog.Kernel, sessions *session.Store, stt collaborators.STT, tts collaborators.TTS, log *logger.Logger) *Handler {
	return &Handler{
		kernel:   kernel,
		sessions: sessions,
		stt:      stt,
		tts:      tts,
		logger:   log,
	}
}

// NewRouter builds the Gin engine and registers every inbound route.
func NewRouter(h *Handler, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmw.OtelTracing("voicedesk"))
	r.Use(httpmw.RequestLogger(log, "voicedesk"))

	r.GET("/health", h.Health)

	r.POST("/voice/call", h.StartCall)
	r.POST("/conversation/process", h.ProcessTurn)
	r.POST("/voice/transcribe", h.Transcribe)
	r.POST("/voice/synthesize", h.Synthesize)
	r.GET("/session/:id", h.GetSession)
	r.DELETE("/session/:id", h.EndSession)

	return r
}
