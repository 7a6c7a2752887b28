package driven

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nicklaw5/helix/v2"
	"golang.org/x/sync/errgroup"

	"github.com/alorle/live-order/internal/port/driven"
	"github.com/alorle/live-order/metrics"
)

// maxLoginsPerRequest is the Helix limit on user_login values per call.
const maxLoginsPerRequest = 100

// TwitchHelixAdapter implements the TokenIssuer and StreamSource ports on top
// of the Twitch Helix API.
type TwitchHelixAdapter struct {
	clientID     string
	clientSecret string
	apiBaseURL   string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewTwitchHelixAdapter creates a new Helix adapter.
// apiBaseURL may be empty to use the public Helix endpoint.
func NewTwitchHelixAdapter(clientID, clientSecret, apiBaseURL string, timeout time.Duration, logger *slog.Logger) *TwitchHelixAdapter {
	return &TwitchHelixAdapter{
		clientID:     clientID,
		clientSecret: clientSecret,
		apiBaseURL:   strings.TrimRight(apiBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// IssueAppToken exchanges the client credentials for an app access token.
func (a *TwitchHelixAdapter) IssueAppToken(ctx context.Context) (driven.AppToken, error) {
	client, transport, err := a.client(ctx, "")
	if err != nil {
		return driven.AppToken{}, err
	}

	start := time.Now()
	resp, err := client.RequestAppAccessToken(nil)
	metrics.ObserveUpstreamDuration("token", time.Since(start))
	if err != nil {
		err = classify(err, transport.Err())
		a.logger.Error("token request failed", "error", err)
		return driven.AppToken{}, err
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("token endpoint returned error", "status", resp.StatusCode, "message", resp.ErrorMessage)
		return driven.AppToken{}, &driven.IssueError{StatusCode: resp.StatusCode, Message: resp.ErrorMessage}
	}

	if resp.Data.AccessToken == "" {
		return driven.AppToken{}, &driven.UpstreamFormatError{Err: errors.New("token response has no access_token")}
	}

	a.logger.Debug("issued app access token", "expires_in", resp.Data.ExpiresIn)

	return driven.AppToken{
		AccessToken: resp.Data.AccessToken,
		ExpiresIn:   time.Duration(resp.Data.ExpiresIn) * time.Second,
	}, nil
}

// LiveLogins returns the lowercase logins among the given ones that are live.
// Logins are sent in batches of at most 100, queried concurrently. The first
// failing batch cancels the others and its error is returned.
func (a *TwitchHelixAdapter) LiveLogins(ctx context.Context, accessToken string, logins []string) ([]string, error) {
	if len(logins) == 0 {
		return nil, nil
	}

	batches := make([][]string, 0, (len(logins)+maxLoginsPerRequest-1)/maxLoginsPerRequest)
	for i := 0; i < len(logins); i += maxLoginsPerRequest {
		end := i + maxLoginsPerRequest
		if end > len(logins) {
			end = len(logins)
		}
		batches = append(batches, logins[i:end])
	}

	results := make([][]string, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			live, err := a.liveBatch(gctx, accessToken, batch)
			if err != nil {
				return err
			}
			results[i] = live
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var live []string
	for _, r := range results {
		live = append(live, r...)
	}

	a.logger.Debug("fetched live streams", "requested", len(logins), "batches", len(batches), "live", len(live))

	return live, nil
}

func (a *TwitchHelixAdapter) liveBatch(ctx context.Context, accessToken string, batch []string) ([]string, error) {
	client, transport, err := a.client(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := client.GetStreams(&helix.StreamsParams{
		First:      maxLoginsPerRequest,
		UserLogins: batch,
	})
	metrics.ObserveUpstreamDuration("streams", time.Since(start))
	if err != nil {
		return nil, classify(err, transport.Err())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &driven.UpstreamStatusError{StatusCode: resp.StatusCode, Message: resp.ErrorMessage}
	}

	live := make([]string, 0, len(resp.Data.Streams))
	for _, s := range resp.Data.Streams {
		if login := strings.ToLower(s.UserLogin); login != "" {
			live = append(live, login)
		}
	}
	return live, nil
}

// client builds a Helix client bound to ctx. Clients are cheap and built per
// call so the access token never has to be mutated on a shared client. The
// returned transport remembers the last request failure.
func (a *TwitchHelixAdapter) client(ctx context.Context, accessToken string) (*helix.Client, *contextClient, error) {
	transport := &contextClient{ctx: ctx, client: a.httpClient}
	client, err := helix.NewClient(&helix.Options{
		ClientID:       a.clientID,
		ClientSecret:   a.clientSecret,
		AppAccessToken: accessToken,
		APIBaseURL:     a.apiBaseURL,
		HTTPClient:     transport,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create helix client: %w", err)
	}
	return client, transport, nil
}

// classify separates transport failures from undecodable responses.
// Helix flattens the error returned by the HTTP client into a string, so the
// transport error recorded by contextClient takes precedence.
func classify(err, transportErr error) error {
	if transportErr != nil {
		return fmt.Errorf("twitch request failed: %w", transportErr)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("twitch request failed: %w", err)
	}
	return &driven.UpstreamFormatError{Err: err}
}

// contextClient attaches a request context to every call the Helix client
// makes.
type contextClient struct {
	ctx    context.Context
	client *http.Client

	mu  sync.Mutex
	err error
}

func (c *contextClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req.WithContext(c.ctx))
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	return resp, err
}

// Err returns the error of the last request, or nil if it got a response.
func (c *contextClient) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
