package backendclient

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/carewave/voicedesk/internal/common/constants"
)

// tokenCache holds the service account's bearer token and guards a single
// concurrent refresh across every goroutine racing to use it.
type tokenCache struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

func (t *tokenCache) valid() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.token == "" {
		return "", false
	}
	if time.Now().After(t.expiresAt.Add(-constants.TokenRefreshCushion)) {
		return "", false
	}
	return t.token, true
}

func (t *tokenCache) set(token string, lifetime time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
	t.expiresAt = time.Now().Add(lifetime)
}

func (t *tokenCache) invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
}

// ensureToken returns a valid bearer token, authenticating at most once
// even when multiple goroutines discover an expired token simultaneously.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if tok, ok := c.tokens.valid(); ok {
		return tok, nil
	}
	v, err, _ := c.tokens.group.Do("login", func() (any, error) {
		if tok, ok := c.tokens.valid(); ok {
			return tok, nil
		}
		tok, err := c.login(ctx)
		if err != nil {
			return "", err
		}
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
