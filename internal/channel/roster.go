package channel

import "fmt"

// Roster is the fixed, ordered list of channels the service monitors.
// Its order is the fallback ordering and the tie-break between live channels.
type Roster struct {
	channels []Channel
	index    map[string]int
}

// NewRoster builds a roster from display names, preserving their order.
// Names are unique case-insensitively.
func NewRoster(names []string) (Roster, error) {
	if len(names) == 0 {
		return Roster{}, ErrEmptyRoster
	}

	r := Roster{
		channels: make([]Channel, 0, len(names)),
		index:    make(map[string]int, len(names)),
	}
	for _, name := range names {
		ch, err := NewChannel(name)
		if err != nil {
			return Roster{}, fmt.Errorf("invalid channel %q: %w", name, err)
		}
		if _, exists := r.index[ch.Key()]; exists {
			return Roster{}, fmt.Errorf("%w: %s", ErrDuplicateChannel, ch.Name())
		}
		r.index[ch.Key()] = len(r.channels)
		r.channels = append(r.channels, ch)
	}
	return r, nil
}

// Len returns the number of channels in the roster.
func (r Roster) Len() int {
	return len(r.channels)
}

// Channels returns a copy of the roster in configured order.
func (r Roster) Channels() []Channel {
	out := make([]Channel, len(r.channels))
	copy(out, r.channels)
	return out
}

// Names returns the display names in configured order.
func (r Roster) Names() []string {
	names := make([]string, len(r.channels))
	for i, ch := range r.channels {
		names[i] = ch.Name()
	}
	return names
}

// Logins returns the lowercase keys in configured order, ready to be sent
// upstream.
func (r Roster) Logins() []string {
	logins := make([]string, len(r.channels))
	for i, ch := range r.channels {
		logins[i] = ch.Key()
	}
	return logins
}

// Lookup returns the roster channel matching name, ignoring case.
func (r Roster) Lookup(name string) (Channel, bool) {
	i, ok := r.index[Key(name)]
	if !ok {
		return Channel{}, false
	}
	return r.channels[i], true
}

// Contains reports whether name is in the roster, ignoring case.
func (r Roster) Contains(name string) bool {
	_, ok := r.index[Key(name)]
	return ok
}
