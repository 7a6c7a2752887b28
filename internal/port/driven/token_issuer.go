package driven

import (
	"context"
	"time"
)

// AppToken is an app access token granted by the platform.
type AppToken struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// TokenIssuer defines the interface for exchanging client credentials for an
// app access token. This is a driven port implemented by the Twitch adapter.
type TokenIssuer interface {
	// IssueAppToken performs a client_credentials grant.
	// Returns an *IssueError when the platform rejects the exchange.
	IssueAppToken(ctx context.Context) (AppToken, error)
}
