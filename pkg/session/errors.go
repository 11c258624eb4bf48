package session

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the factory and its sessions.
var (
	ErrInvalidOption       = errors.New("invalid session option")
	ErrFactoryClosed       = errors.New("session factory is closed")
	ErrSessionClosed       = errors.New("session is closed")
	ErrUnknownFilter       = errors.New("unknown filter")
	ErrUnknownParameter    = errors.New("unknown filter parameter")
	ErrUnknownFetchProfile = errors.New("unknown fetch profile")
	ErrUnknownQuery        = errors.New("unknown named native query")
)

// UnknownDriverError is returned when a factory is built for a driver that
// was never registered.
type UnknownDriverError struct {
	Name      string
	Available []string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown driver %q\nAvailable drivers: %v\nHint: Check target.driver in leapmap.yaml", e.Name, e.Available)
}
