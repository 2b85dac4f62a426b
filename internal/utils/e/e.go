package e

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks missing or invalid deployment configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks an absent hymn or media object.
	ErrNotFound = errors.New("not found")
	// ErrUpstream marks a failure of the database or object store.
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidInput marks a malformed request at the HTTP or CLI edge.
	ErrInvalidInput = errors.New("invalid input")
)

// Wrap prefixes err with msg. It returns nil when err is nil.
func Wrap(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Mark tags an error with one of the sentinels above so callers can
// classify it with errors.Is. err may be nil.
func Mark(marker error, msg string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, msg, err)
	}
	return fmt.Errorf("%w: %s", marker, msg)
}
