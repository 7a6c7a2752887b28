package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alorle/live-order/internal/port/driven"
	"github.com/alorle/live-order/metrics"
)

// DefaultTokenExpiryMargin is subtracted from the platform-reported token
// lifetime so the token is refreshed before it actually expires.
const DefaultTokenExpiryMargin = 60 * time.Second

// AuthError is returned when an app access token could not be obtained.
type AuthError struct {
	// Detail is the platform's error message, or the underlying error text.
	Detail string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("twitch authentication failed: %s", e.Detail)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TokenProvider hands out a valid bearer token.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// TokenCache holds the app access token shared by every request and
// refreshes it lazily once it is expired or absent.
type TokenCache struct {
	issuer driven.TokenIssuer
	margin time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	refresh singleflight.Group
}

// NewTokenCache creates a new token cache backed by issuer.
// A negative margin is treated as zero.
func NewTokenCache(issuer driven.TokenIssuer, margin time.Duration, logger *slog.Logger) *TokenCache {
	if margin < 0 {
		margin = 0
	}
	return &TokenCache{
		issuer: issuer,
		margin: margin,
		logger: logger,
		now:    time.Now,
	}
}

// Token returns the cached token while it is valid, otherwise exchanges the
// client credentials for a new one. Concurrent callers that find the cache
// expired share a single exchange. The exchange keeps the deadline of the
// caller that started it but not its cancellation, so one caller going away
// does not fail the others.
// Returns an *AuthError if the exchange fails or ctx is done first.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}

	ch := c.refresh.DoChan("token", func() (interface{}, error) {
		// Another caller may have refreshed while we waited to enter.
		if token, ok := c.cached(); ok {
			return token, nil
		}
		exchangeCtx, cancel := detach(ctx)
		defer cancel()
		return c.exchange(exchangeCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", newAuthError(ctx.Err())
	}
}

// detach returns a context that is never canceled with ctx but shares its
// deadline, if any.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return context.WithCancel(detached)
}

// Invalidate drops the cached token so the next call exchanges a new one.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" || !c.now().Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

func (c *TokenCache) exchange(ctx context.Context) (string, error) {
	grant, err := c.issuer.IssueAppToken(ctx)
	if err != nil {
		metrics.RecordTokenRefresh("failure")
		c.logger.Error("failed to obtain app access token", "error", err)
		return "", newAuthError(err)
	}

	expiresAt := c.now().Add(grant.ExpiresIn - c.margin)

	c.mu.Lock()
	c.token = grant.AccessToken
	c.expiresAt = expiresAt
	c.mu.Unlock()

	metrics.RecordTokenRefresh("success")
	c.logger.Info("refreshed app access token", "expires_at", expiresAt.Format(time.RFC3339))

	return grant.AccessToken, nil
}

func newAuthError(err error) *AuthError {
	detail := err.Error()
	var issueErr *driven.IssueError
	if errors.As(err, &issueErr) && issueErr.Message != "" {
		detail = issueErr.Message
	}
	return &AuthError{Detail: detail, Err: err}
}
