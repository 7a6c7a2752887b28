package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alorle/live-order/internal/channel"
	"github.com/alorle/live-order/internal/ranking"
	"github.com/alorle/live-order/metrics"
)

// ErrRankingFailed is returned when the ordering could not be computed.
var ErrRankingFailed = errors.New("failed to rank channels")

// LiveStatusFetcher reports which roster channels are live.
type LiveStatusFetcher interface {
	Fetch(ctx context.Context) (live channel.LiveSet, degraded bool, err error)
}

// LiveOrder is the display ordering computed for one request.
type LiveOrder struct {
	// Ordered is every roster channel, display casing, in display order.
	Ordered []string
	// Live is the live subset of Ordered, in the same order.
	Live []string
	// Degraded is set when the streams query failed and nobody is shown live.
	Degraded  bool
	Timestamp time.Time
}

// LiveOrderService computes the live ordering of the roster.
type LiveOrderService struct {
	status LiveStatusFetcher
	roster channel.Roster
	rules  ranking.Rules
	logger *slog.Logger
	now    func() time.Time
}

// NewLiveOrderService creates a new live order service.
func NewLiveOrderService(status LiveStatusFetcher, roster channel.Roster, rules ranking.Rules, logger *slog.Logger) *LiveOrderService {
	return &LiveOrderService{
		status: status,
		roster: roster,
		rules:  rules,
		logger: logger,
		now:    time.Now,
	}
}

// Compute fetches live status and ranks the roster.
// On error the returned LiveOrder is still usable: it holds the roster in
// configured order with nobody live.
func (s *LiveOrderService) Compute(ctx context.Context) (LiveOrder, error) {
	live, degraded, err := s.status.Fetch(ctx)
	if err != nil {
		metrics.RecordRequest(metrics.OutcomeHardFail)
		return s.Fallback(), err
	}

	ordered, err := s.rank(live)
	if err != nil {
		metrics.RecordRequest(metrics.OutcomeHardFail)
		s.logger.Error("ranking failed", "error", err)
		return s.Fallback(), err
	}

	result := LiveOrder{
		Ordered:   make([]string, 0, len(ordered)),
		Live:      []string{},
		Degraded:  degraded,
		Timestamp: s.now(),
	}
	for _, ch := range ordered {
		result.Ordered = append(result.Ordered, ch.Name())
		if live.Has(ch.Key()) {
			result.Live = append(result.Live, ch.Name())
		}
	}

	if degraded {
		metrics.RecordRequest(metrics.OutcomeSoftFail)
	} else {
		metrics.RecordRequest(metrics.OutcomeOK)
	}
	metrics.SetLiveChannels(len(result.Live))

	s.logger.Debug("computed live order", "live", len(result.Live), "degraded", degraded)

	return result, nil
}

// Fallback returns the roster in configured order with nobody live.
func (s *LiveOrderService) Fallback() LiveOrder {
	return LiveOrder{
		Ordered:   s.roster.Names(),
		Live:      []string{},
		Timestamp: s.now(),
	}
}

func (s *LiveOrderService) rank(live channel.LiveSet) (ordered []channel.Channel, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRankingFailed, r)
		}
	}()
	return ranking.Rank(s.roster, live, s.rules), nil
}
