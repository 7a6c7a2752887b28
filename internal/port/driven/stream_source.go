package driven

import "context"

// StreamSource defines the interface for asking the platform which channels
// are broadcasting. This is a driven port implemented by the Twitch adapter.
type StreamSource interface {
	// LiveLogins returns the lowercase logins, among the given ones, that
	// currently have a live stream. A login without a stream record is offline.
	LiveLogins(ctx context.Context, accessToken string, logins []string) ([]string, error)
}
