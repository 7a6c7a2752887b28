package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alorle/live-order/internal/channel"
	"github.com/alorle/live-order/internal/port/driven"
	"github.com/alorle/live-order/metrics"
)

// LiveStatusService determines which roster channels are broadcasting.
type LiveStatusService struct {
	tokens  TokenProvider
	source  driven.StreamSource
	roster  channel.Roster
	timeout time.Duration
	logger  *slog.Logger
}

// NewLiveStatusService creates a new live status service.
// timeout bounds each upstream call; zero disables the bound.
func NewLiveStatusService(tokens TokenProvider, source driven.StreamSource, roster channel.Roster, timeout time.Duration, logger *slog.Logger) *LiveStatusService {
	return &LiveStatusService{
		tokens:  tokens,
		source:  source,
		roster:  roster,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch queries the platform for every roster channel.
//
// Failing to obtain a token is a hard failure and returns an *AuthError.
// Any failure of the streams query itself is swallowed: the result is an
// empty live set with degraded set to true.
func (s *LiveStatusService) Fetch(ctx context.Context) (live channel.LiveSet, degraded bool, err error) {
	tokenCtx, cancel := s.withTimeout(ctx)
	token, err := s.tokens.Token(tokenCtx)
	cancel()
	if err != nil {
		metrics.RecordUpstreamError("token", errorType(err))
		return channel.LiveSet{}, false, err
	}

	streamsCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	logins, err := s.source.LiveLogins(streamsCtx, token, s.roster.Logins())
	if err != nil {
		kind := errorType(err)
		metrics.RecordUpstreamError("streams", kind)
		s.logger.Warn("streams query failed, treating every channel as offline", "error", err, "error_type", kind)
		if errors.Is(err, driven.ErrUnauthorized) {
			s.tokens.Invalidate()
		}
		return channel.NewLiveSet(), true, nil
	}

	return channel.NewLiveSet(logins...), false, nil
}

func (s *LiveStatusService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// errorType maps an upstream error to a metrics label.
func errorType(err error) string {
	var formatErr *driven.UpstreamFormatError
	var statusErr *driven.UpstreamStatusError
	var issueErr *driven.IssueError
	var timeoutErr interface{ Timeout() bool }
	switch {
	case errors.Is(err, driven.ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &formatErr):
		return "format"
	case errors.As(err, &statusErr), errors.As(err, &issueErr):
		return "status"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &timeoutErr) && timeoutErr.Timeout():
		return "timeout"
	default:
		return "transport"
	}
}
