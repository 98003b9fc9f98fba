// Package retry wraps outbound calls to the LLM, backend HIS API, and
// speech collaborators with exponential backoff and a per-destination
// circuit breaker.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/carewave/voicedesk/internal/apierr"
	"github.com/carewave/voicedesk/internal/common/logger"
)

// Config names one destination's retry policy.
type Config struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Named configs, one per outbound destination.
var (
	LLMConfig = Config{
		MaxTries:        3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     10 * time.Second,
	}
	BackendAPIConfig = Config{
		MaxTries:        2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
	SpeechConfig = Config{
		MaxTries:        2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     3 * time.Second,
	}
)

// Do runs operation under the given retry config, retrying only on errors
// apierr classifies as retryable. A non-retryable error returns
// immediately without consuming further attempts.
func Do[T any](ctx context.Context, cfg Config, operation func(ctx context.Context) (T, error)) (T, error) {
	op := func() (T, error) {
		result, err := operation(ctx)
		if err == nil {
			return result, nil
		}
		if kind, ok := apierr.KindOf(err); !ok || !apierr.Retryable(kind) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval

	return backoff.Retry(ctx, op, backoff.WithBackOff(bo), backoff.WithMaxTries(cfg.MaxTries))
}

// BreakerSettings is the default circuit-breaker policy applied to every
// named destination unless overridden.
var BreakerSettings = struct {
	FailureThreshold uint32
	RecoveryTimeout  time.Duration
}{
	FailureThreshold: 5,
	RecoveryTimeout:  60 * time.Second,
}

// CircuitBreaker wraps a single named destination's gobreaker instance.
type CircuitBreaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewCircuitBreaker builds a breaker that opens after FailureThreshold
// consecutive failures and probes recovery after RecoveryTimeout.
func NewCircuitBreaker(name string) *CircuitBreaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     BreakerSettings.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= BreakerSettings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Default().WithFields(
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			).Info("circuit breaker state change")
		},
	})
	return &CircuitBreaker{name: name, cb: cb}
}

// Execute runs fn through the breaker, translating an open breaker into
// an apierr with Kind KindUpstreamUnavailable.
func Execute[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	resultAny, err := cb.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, apierr.Wrap(apierr.KindUpstreamUnavailable, cb.name+" circuit open", err)
		}
		return zero, err
	}
	result, ok := resultAny.(T)
	if !ok {
		return zero, apierr.New(apierr.KindInternal, "unexpected result type from "+cb.name)
	}
	return result, nil
}
