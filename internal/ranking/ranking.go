// Package ranking orders a channel roster for display from the set of
// channels currently live.
//
// The ordering is: at most one pinned live channel first, then the remaining
// live channels (priority order, then boost rules), then every offline
// channel in roster order. The result is always a permutation of the roster.
package ranking

import (
	"sort"

	"github.com/alorle/live-order/internal/channel"
)

// BoostRule moves Special to just before the earliest of References found in
// the live ordering, if Special currently sits after it.
type BoostRule struct {
	Special    string
	References []string
}

// Rules is the deployment-specific ordering policy.
type Rules struct {
	// Priority orders live channels. Live channels not listed follow the
	// listed ones in roster order. Empty means roster order.
	Priority []string
	// Pins are evaluated in order; the first live one takes rank 0.
	Pins []string
	// Boosts are applied in order to the live channels left after pinning.
	Boosts []BoostRule
}

// Rank returns the roster ordered for display.
func Rank(roster channel.Roster, live channel.LiveSet, rules Rules) []channel.Channel {
	var online, offline []channel.Channel
	for _, ch := range roster.Channels() {
		if live.Has(ch.Key()) {
			online = append(online, ch)
		} else {
			offline = append(offline, ch)
		}
	}

	online = byPriority(online, rules.Priority)

	ordered := make([]channel.Channel, 0, roster.Len())
	if i := pinned(online, rules.Pins); i >= 0 {
		ordered = append(ordered, online[i])
		online = append(online[:i:i], online[i+1:]...)
	}

	for _, rule := range rules.Boosts {
		online = ApplyBoost(online, rule)
	}

	ordered = append(ordered, online...)
	return append(ordered, offline...)
}

// ApplyBoost applies a single boost rule to seq and returns the result.
// seq is not modified.
func ApplyBoost(seq []channel.Channel, rule BoostRule) []channel.Channel {
	from := indexOf(seq, rule.Special)
	if from < 0 {
		return seq
	}

	target := -1
	for _, ref := range rule.References {
		if i := indexOf(seq, ref); i >= 0 && (target < 0 || i < target) {
			target = i
		}
	}
	if target < 0 || from < target {
		return seq
	}

	out := make([]channel.Channel, 0, len(seq))
	out = append(out, seq[:target]...)
	out = append(out, seq[from])
	out = append(out, seq[target:from]...)
	return append(out, seq[from+1:]...)
}

// Names returns the display names of chs.
func Names(chs []channel.Channel) []string {
	names := make([]string, len(chs))
	for i, ch := range chs {
		names[i] = ch.Name()
	}
	return names
}

// pinned returns the index in online of the first pin that is live, or -1.
func pinned(online []channel.Channel, pins []string) int {
	for _, pin := range pins {
		if i := indexOf(online, pin); i >= 0 {
			return i
		}
	}
	return -1
}

func byPriority(online []channel.Channel, priority []string) []channel.Channel {
	if len(priority) == 0 {
		return online
	}

	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		key := channel.Key(name)
		if _, seen := rank[key]; !seen {
			rank[key] = i
		}
	}
	position := func(ch channel.Channel) int {
		if r, ok := rank[ch.Key()]; ok {
			return r
		}
		return len(priority)
	}

	sorted := make([]channel.Channel, len(online))
	copy(sorted, online)
	sort.SliceStable(sorted, func(i, j int) bool {
		return position(sorted[i]) < position(sorted[j])
	})
	return sorted
}

func indexOf(seq []channel.Channel, name string) int {
	for i, ch := range seq {
		if ch.Is(name) {
			return i
		}
	}
	return -1
}
