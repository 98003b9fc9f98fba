package retry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewave/voicedesk/internal/apierr"
)

func TestDoRetriesOnNetworkError(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), BackendAPIConfig, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", apierr.New(apierr.KindNetwork, "connection reset")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, attempts)
}

func TestDoDoesNotRetryNonRetryableError(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), BackendAPIConfig, func(ctx context.Context) (string, error) {
		attempts++
		return "", apierr.New(apierr.KindInvalidInput, "bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test_destination")

	for i := 0; i < int(BreakerSettings.FailureThreshold); i++ {
		_, _ = Execute(cb, func() (string, error) {
			return "", apierr.New(apierr.KindServer, "boom")
		})
	}

	_, err := Execute(cb, func() (string, error) {
		return "unreachable", nil
	})
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindUpstreamUnavailable))
}

func TestCircuitBreakerAllowsSuccessfulCalls(t *testing.T) {
	cb := NewCircuitBreaker("healthy_destination")
	result, err := Execute(cb, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}
