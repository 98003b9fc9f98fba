package backendclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenCacheValidWithinLifetime(t *testing.T) {
	tc := &tokenCache{}
	tc.set("tok", time.Hour)
	tok, ok := tc.valid()
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)
}

func TestTokenCacheInvalidBeforeRefreshCushion(t *testing.T) {
	tc := &tokenCache{}
	tc.set("tok", 1*time.Minute)
	_, ok := tc.valid()
	assert.False(t, ok, "token nearing expiry within the refresh cushion should be treated as invalid")
}

func TestTokenCacheInvalidateClearsToken(t *testing.T) {
	tc := &tokenCache{}
	tc.set("tok", time.Hour)
	tc.invalidate()
	_, ok := tc.valid()
	assert.False(t, ok)
}

func TestTokenCacheEmptyIsInvalid(t *testing.T) {
	tc := &tokenCache{}
	_, ok := tc.valid()
	assert.False(t, ok)
}
