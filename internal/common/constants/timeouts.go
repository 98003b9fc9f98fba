// Package constants provides application-wide constants and timeouts.
package constants

import "time"

// Suspension-point timeouts, one per kind of outbound call a turn can make.
const (
	// ClassifierTimeout bounds a single LLM classification call.
	ClassifierTimeout = 30 * time.Second

	// BackendCallTimeout bounds a single outbound hospital-backend call.
	BackendCallTimeout = 30 * time.Second

	// AudioTimeout bounds a single STT or TTS collaborator call.
	AudioTimeout = 3 * time.Second
)

// Session resource bounds.
const (
	// SessionIdleTimeout is the default idle duration after which a
	// session is considered expired.
	SessionIdleTimeout = 300 * time.Second

	// MaxTurns is the default maximum number of turns a session may
	// accumulate before it becomes inactive.
	MaxTurns = 20

	// SweepInterval is how often the session store's expiry sweep runs.
	SweepInterval = 30 * time.Second
)

// Safety auto-escalation thresholds.
const (
	// MaxTurnsBeforeEscalation triggers auto-escalation once a session's
	// turn count reaches this value.
	MaxTurnsBeforeEscalation = 15

	// MaxIntentFailures triggers auto-escalation once cumulative
	// unresolved/failed intents reach this value.
	MaxIntentFailures = 3
)

// Token lifetime for the backend client's service-account auth.
const (
	// TokenLifetime is the default assumed lifetime of a backend auth
	// token when the login response carries no explicit expiry.
	TokenLifetime = 23 * time.Hour

	// TokenRefreshCushion is how far ahead of expiry the client
	// proactively re-authenticates.
	TokenRefreshCushion = 5 * time.Minute
)
