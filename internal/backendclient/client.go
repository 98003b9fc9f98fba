// Package backendclient talks to the hospital information system's REST
// API on behalf of the orchestrator: service-account authenticated calls
// for staff-facing operations, and caller-supplied bearer tokens for
// patient-portal operations. Every call is checked against an RBAC
// allow/deny list, retried per internal/retry's backend policy, and
// routed through a shared circuit breaker.
package backendclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carewave/voicedesk/internal/apierr"
	"github.com/carewave/voicedesk/internal/common/config"
	"github.com/carewave/voicedesk/internal/common/constants"
	"github.com/carewave/voicedesk/internal/retry"
)

// Client is the hospital backend's HTTP client.
type Client struct {
	baseURL  string
	username string
	password string

	allow []allowListEntry
	deny  []allowListEntry

	httpClient *http.Client
	tokens     *tokenCache
	breaker    *retry.CircuitBreaker
}

// New builds a Client from backend configuration.
func New(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.ServiceAccountUser,
		password: cfg.ServiceAccountPass,
		allow:    parseAllowList(cfg.AllowList),
		deny:     parseAllowList(cfg.DenyList),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeoutDuration(),
		},
		tokens:  &tokenCache{},
		breaker: retry.NewCircuitBreaker("backend"),
	}
}

// login authenticates the service account and caches the resulting token.
func (c *Client) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", apierr.Wrap(apierr.KindInternal, "encode login request", err)
	}

	var result loginResponse
	_, err = retry.Do(ctx, retry.BackendAPIConfig, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.rawRequest(ctx, http.MethodPost, "/auth/login", "", bytes.NewReader(body), &result)
	})
	if err != nil {
		return "", err
	}

	lifetime := constants.TokenLifetime
	if result.ExpiresIn > 0 {
		lifetime = time.Duration(result.ExpiresIn) * time.Second
	}
	token := result.token()
	if token == "" {
		return "", apierr.New(apierr.KindMalformedResponse, "login response carried no token")
	}
	c.tokens.set(token, lifetime)
	return token, nil
}

// do performs an authenticated, RBAC-checked, retried, circuit-broken
// request against the service account's identity. bearerOverride, if
// non-empty, is used instead of the service account token (the
// patient-portal operations use a caller-supplied token and bypass the
// service-account login entirely).
func (c *Client) do(ctx context.Context, method, path string, body any, result any, bearerOverride string) error {
	pathOnly, _, _ := strings.Cut(path, "?")
	if !checkRBAC(c.allow, c.deny, method, pathOnly) {
		return apierr.New(apierr.KindForbidden, fmt.Sprintf("%s %s is not permitted by backend access policy", method, path))
	}

	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return apierr.Wrap(apierr.KindInternal, "encode request body", err)
		}
	}
	// Every attempt gets its own reader, so a retried request resends the body.
	reqBody := func() io.Reader {
		if encoded == nil {
			return nil
		}
		return bytes.NewReader(encoded)
	}

	_, err := retry.Execute(c.breaker, func() (struct{}, error) {
		_, err := retry.Do(ctx, retry.BackendAPIConfig, func(ctx context.Context) (struct{}, error) {
			bearer := bearerOverride
			if bearer == "" {
				tok, err := c.ensureToken(ctx)
				if err != nil {
					return struct{}{}, err
				}
				bearer = tok
			}

			err := c.rawRequest(ctx, method, path, bearer, reqBody(), result)
			if apierr.Is(err, apierr.KindUnauthorized) && bearerOverride == "" {
				c.tokens.invalidate()
				tok, reauthErr := c.ensureToken(ctx)
				if reauthErr != nil {
					return struct{}{}, reauthErr
				}
				err = c.rawRequest(ctx, method, path, tok, reqBody(), result)
			}
			return struct{}{}, err
		})
		return struct{}{}, err
	})
	return err
}

// rawRequest issues a single HTTP request and decodes a JSON response,
// categorizing failures into the orchestrator's closed error-kind set.
func (c *Client) rawRequest(ctx context.Context, method, path, bearer string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return apierr.Wrap(apierr.KindTimeout, "backend request timed out", err)
		}
		return apierr.Wrap(apierr.KindNetwork, "backend request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := fmt.Sprintf("%s %s returned %d: %s", method, path, resp.StatusCode, string(detail))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return apierr.New(apierr.KindUnauthorized, msg)
		case http.StatusForbidden:
			return apierr.New(apierr.KindForbidden, msg)
		case http.StatusNotFound:
			return apierr.New(apierr.KindNotFound, msg)
		case http.StatusConflict:
			return apierr.New(apierr.KindConflict, msg)
		default:
			return apierr.New(apierr.KindServer, msg)
		}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return apierr.Wrap(apierr.KindMalformedResponse, "decode backend response", err)
	}
	return nil
}
