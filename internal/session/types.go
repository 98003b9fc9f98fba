// Package session implements the in-memory session store: per-caller
// conversational state, turn history, and expiry sweeping.
package session

import "time"

// Channel identifies the surface a session arrived through.
type Channel string

const (
	ChannelPhone         Channel = "phone"
	ChannelWeb           Channel = "web"
	ChannelPatientPortal Channel = "patient_portal"
	ChannelTest          Channel = "test"
)

// BackendCall records one outbound hospital-backend call made during a turn.
type BackendCall struct {
	Method   string `json:"method"`
	Endpoint string `json:"endpoint"`
	Success  bool   `json:"success"`
	Status   int    `json:"status"`
}

// Turn is one user-utterance/response pair appended to a session's log.
// Immutable once appended.
type Turn struct {
	Index        int                    `json:"index"`
	Timestamp    time.Time              `json:"timestamp"`
	RawInput     string                 `json:"raw_input"`
	Intent       string                 `json:"intent"`
	Entities     map[string]any         `json:"entities"`
	ResponseText string                 `json:"response_text"`
	BackendCalls []BackendCall          `json:"backend_calls"`
}

// Session is a single continuous caller interaction.
type Session struct {
	ID              string
	CallerID        string
	Channel         Channel
	StartedAt       time.Time
	LastActivity    time.Time
	Active          bool
	CurrentWorkflow string
	WorkflowState   map[string]any
	Context         map[string]any // merged entity bag
	Turns           []Turn

	FailedIntentCount int
}

// Snapshot is a read-only copy of a Session safe to hand to callers
// outside the store's lock.
type Snapshot struct {
	ID                string
	CallerID          string
	Channel           Channel
	StartedAt         time.Time
	LastActivity      time.Time
	Active            bool
	CurrentWorkflow   string
	WorkflowState     map[string]any
	Context           map[string]any
	Turns             []Turn
	FailedIntentCount int
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:                s.ID,
		CallerID:          s.CallerID,
		Channel:           s.Channel,
		StartedAt:         s.StartedAt,
		LastActivity:      s.LastActivity,
		Active:            s.Active,
		CurrentWorkflow:   s.CurrentWorkflow,
		WorkflowState:     copyMap(s.WorkflowState),
		Context:           copyMap(s.Context),
		Turns:             append([]Turn(nil), s.Turns...),
		FailedIntentCount: s.FailedIntentCount,
	}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
