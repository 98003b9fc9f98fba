// Package main is the entry point for the voicedesk service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carewave/voicedesk/internal/audit"
	"github.com/carewave/voicedesk/internal/backendclient"
	"github.com/carewave/voicedesk/internal/classifier"
	"github.com/carewave/voicedesk/internal/collaborators"
	"github.com/carewave/voicedesk/internal/common/config"
	"github.com/carewave/voicedesk/internal/common/constants"
	"github.com/carewave/voicedesk/internal/common/logger"
	"github.com/carewave/voicedesk/internal/common/tracing"
	"github.com/carewave/voicedesk/internal/dialog"
	"github.com/carewave/voicedesk/internal/httpapi"
	"github.com/carewave/voicedesk/internal/session"
	"github.com/carewave/voicedesk/internal/workflow"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	logCfg := logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	}
	log, err := logger.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("Starting voicedesk service...")

	// 3. Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Wire OpenTelemetry tracing (no-op shutdown when disabled)
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		log.Warn("Tracing disabled due to init error", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	// 5. Session store and its expiry sweep
	sessions := session.NewStore(cfg.Session.IdleTimeoutDuration(), cfg.Session.MaxTurns)
	sweepStop := make(chan struct{})
	go sessions.Run(sweepStop, constants.SweepInterval)

	// 6. Hospital information-system backend client
	backend := backendclient.New(cfg.Backend)

	// 7. Intent classifier: LLM-backed when configured, rule-based fallback
	// always available.
	var llmClassifier classifier.Classifier
	if cfg.LLM.Provider != "" {
		c, err := classifier.NewLLMClassifier(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.APIKey, cfg.LLM.BaseURL)
		if err != nil {
			log.Warn("LLM classifier unavailable, falling back to rule-based classification", zap.Error(err))
		} else {
			llmClassifier = c
		}
	}
	intentClassifier := classifier.NewFallbackClassifier(llmClassifier, classifier.NewRuleClassifier())

	// 8. Speech collaborators. No concrete STT/TTS provider is wired yet;
	// the no-op implementations keep /voice/transcribe and /voice/synthesize
	// answering without a configured vendor.
	var stt collaborators.STT = collaborators.NoopSTT{}
	var tts collaborators.TTS = collaborators.NoopTTS{}

	// 9. Compliance audit sink
	auditSink := audit.NewLogSink()

	// 10. Dialog kernel
	kernel := &dialog.Kernel{
		Sessions:   sessions,
		Classifier: intentClassifier,
		Backend:    backend,
		Engine:     workflow.NewEngine(),
		Audit:      auditSink,
	}

	// 11. HTTP server
	handler := httpapi.NewHandler(kernel, sessions, stt, tts, log)
	router := httpapi.NewRouter(handler, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// 12. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down voicedesk service...")

	close(sweepStop)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("voicedesk service stopped")
}
