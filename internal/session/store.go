package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carewave/voicedesk/internal/apierr"
)

// entry pairs a Session with the mutex that serializes turns against it.
type entry struct {
	mu      sync.Mutex
	session *Session
}

// Store is the in-memory session store. It provides per-session mutual
// exclusion so two concurrent requests against the same session id
// serialize, while different sessions proceed fully in parallel.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*entry
	idleTimeout time.Duration
	maxTurns    int
}

// NewStore creates a Store with the given idle timeout and max-turns bound.
func NewStore(idleTimeout time.Duration, maxTurns int) *Store {
	return &Store{
		sessions:    make(map[string]*entry),
		idleTimeout: idleTimeout,
		maxTurns:    maxTurns,
	}
}

// Create starts a new session for the given caller and channel, returning
// its id.
func (s *Store) Create(callerID string, channel Channel) string {
	now := time.Now()
	sess := &Session{
		ID:            uuid.New().String(),
		CallerID:      callerID,
		Channel:       channel,
		StartedAt:     now,
		LastActivity:  now,
		Active:        true,
		WorkflowState: make(map[string]any),
		Context:       make(map[string]any),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = &entry{session: sess}
	s.mu.Unlock()

	return sess.ID
}

// Get returns a read-only snapshot of the session, or (zero, false) if the
// session does not exist or has expired. A session found expired here is
// marked inactive but not deleted; SweepExpired does the eviction.
func (s *Store) Get(id string) (Snapshot, bool) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if s.expired(e.session) {
		e.session.Active = false
		return Snapshot{}, false
	}
	return e.session.snapshot(), true
}

func (s *Store) expired(sess *Session) bool {
	if !sess.Active {
		return true
	}
	return time.Since(sess.LastActivity) > s.idleTimeout
}

// Handle is an exclusive, checked-out view of one session for the
// duration of a single turn. The Dialog Kernel acquires a Handle at the
// start of a turn and releases it (via Close) only after the Workflow
// Engine has finished merging results back — this is what makes a turn
// sequential per session per the concurrency model.
type Handle struct {
	store *Store
	entry *entry
	sess  *Session
}

// Begin checks out the session identified by id for exclusive access.
// Returns apierr with KindSessionExpired if the session is gone or
// expired, or KindSessionFull if max_turns has already been reached.
func (s *Store) Begin(id string) (*Handle, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apierr.New(apierr.KindSessionExpired, "session not found")
	}

	e.mu.Lock()

	if s.expired(e.session) {
		e.session.Active = false
		e.mu.Unlock()
		return nil, apierr.New(apierr.KindSessionExpired, "session expired")
	}
	if len(e.session.Turns) >= s.maxTurns {
		e.session.Active = false
		e.mu.Unlock()
		return nil, apierr.New(apierr.KindSessionFull, "max turns exceeded")
	}

	return &Handle{store: s, entry: e, sess: e.session}, nil
}

// Close releases the per-session lock. Must be called exactly once per
// successful Begin, typically via defer.
func (h *Handle) Close() {
	h.entry.mu.Unlock()
}

// Snapshot returns the current state of the checked-out session.
func (h *Handle) Snapshot() Snapshot {
	return h.sess.snapshot()
}

// AppendTurn appends a new, immutable turn and advances last-activity.
// Rejects the append if the session has already reached max_turns.
func (h *Handle) AppendTurn(raw, intent, responseText string, entities map[string]any, calls []BackendCall) (Turn, error) {
	if len(h.sess.Turns) >= h.store.maxTurns {
		h.sess.Active = false
		return Turn{}, apierr.New(apierr.KindSessionFull, "max turns exceeded")
	}

	t := Turn{
		Index:        len(h.sess.Turns) + 1,
		Timestamp:    time.Now(),
		RawInput:     raw,
		Intent:       intent,
		Entities:     copyMap(entities),
		ResponseText: responseText,
		BackendCalls: append([]BackendCall(nil), calls...),
	}
	h.sess.Turns = append(h.sess.Turns, t)
	h.sess.LastActivity = t.Timestamp

	if len(h.sess.Turns) >= h.store.maxTurns {
		h.sess.Active = false
	}
	return t, nil
}

// MergeEntities shallow-merges values into the session's context bag.
// A key is only overwritten when the incoming value is non-empty/truthy;
// existing keys are never deleted.
func (h *Handle) MergeEntities(entities map[string]any) {
	for k, v := range entities {
		if isEmptyValue(v) {
			continue
		}
		h.sess.Context[k] = v
	}
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	}
	return false
}

// SetWorkflow activates a workflow with an initial state bag, replacing
// any previously active workflow.
func (h *Handle) SetWorkflow(name string, initialState map[string]any) {
	h.sess.CurrentWorkflow = name
	h.sess.WorkflowState = copyMap(initialState)
}

// UpdateWorkflowState shallow-merges into the active workflow's state bag.
func (h *Handle) UpdateWorkflowState(partial map[string]any) {
	if h.sess.WorkflowState == nil {
		h.sess.WorkflowState = make(map[string]any)
	}
	for k, v := range partial {
		h.sess.WorkflowState[k] = v
	}
}

// ClearWorkflow deactivates the session's current workflow, invoked by the
// engine once a workflow reports is_complete.
func (h *Handle) ClearWorkflow() {
	h.sess.CurrentWorkflow = ""
	h.sess.WorkflowState = make(map[string]any)
}

// RecordIntentFailure increments the cumulative failed-intent counter used
// by the safety layer's auto-escalation trigger.
func (h *Handle) RecordIntentFailure() {
	h.sess.FailedIntentCount++
}

// End marks the session inactive; it is never handed out by Get/Begin
// again, and is evicted on the next sweep.
func (s *Store) End(id string) bool {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	e.session.Active = false
	e.mu.Unlock()
	return true
}

// SweepExpired evicts sessions that are inactive or past their idle
// timeout. Returns the number of sessions removed.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		expired := s.expired(e.session)
		e.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run periodically sweeps expired sessions until stop is closed. Intended to
// be launched as a background goroutine at startup.
func (s *Store) Run(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.SweepExpired()
		case <-stop:
			return
		}
	}
}
