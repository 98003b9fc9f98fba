package audit

import (
	"testing"
	"time"
)

func TestLogSinkRecordDoesNotPanic(t *testing.T) {
	sink := NewLogSink()
	sink.Record(t.Context(), Event{
		SessionID: "sess-1",
		Kind:      "escalation",
		Reason:    "caller_requested",
		At:        time.Now(),
	})
}

func TestSinkInterfaceAcceptsLogSink(t *testing.T) {
	var s Sink = NewLogSink()
	s.Record(t.Context(), Event{Kind: "escalation"})
}
