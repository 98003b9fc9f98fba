// Package audit records compliance-sensitive events to a pluggable sink,
// independent of the structured application log. The Dialog Kernel
// records one event per escalated turn; nothing else is recorded.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carewave/voicedesk/internal/common/logger"
)

// Event is one audit-worthy occurrence.
type Event struct {
	SessionID string
	Kind      string
	Reason    string
	At        time.Time
}

// Sink persists audit events.
type Sink interface {
	Record(ctx context.Context, event Event)
}

// LogSink writes audit events through the structured logger. It is the
// default when no dedicated audit store is configured.
type LogSink struct{}

// NewLogSink builds a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Record(_ context.Context, event Event) {
	logger.Default().WithFields(
		zap.String("session_id", event.SessionID),
		zap.String("audit_kind", event.Kind),
		zap.String("reason", event.Reason),
	).Info("audit event")
}
