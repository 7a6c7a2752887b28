package channel

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName        = errors.New("channel name cannot be empty")
	ErrInvalidName      = errors.New("channel name cannot contain whitespace or commas")
	ErrDuplicateChannel = errors.New("channel already in roster")
	ErrEmptyRoster      = errors.New("roster must contain at least one channel")
)

// Channel is a streaming platform login as configured by the operator.
// Two channels are the same channel when their keys match; the configured
// display casing is kept for output.
type Channel struct {
	name string
	key  string
}

// NewChannel creates a new Channel with the given name.
// It trims surrounding whitespace and returns ErrEmptyName if nothing is
// left, or ErrInvalidName if the login contains whitespace or commas.
func NewChannel(name string) (Channel, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Channel{}, ErrEmptyName
	}
	if strings.ContainsAny(trimmed, " \t\n\r,") {
		return Channel{}, ErrInvalidName
	}
	return Channel{name: trimmed, key: Key(trimmed)}, nil
}

// Name returns the channel's display name.
func (c Channel) Name() string {
	return c.name
}

// Key returns the lowercase login used for comparisons.
func (c Channel) Key() string {
	return c.key
}

// Is reports whether name refers to this channel, ignoring case.
func (c Channel) Is(name string) bool {
	return c.key == Key(name)
}

// Key normalizes a login for case-insensitive comparison.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
