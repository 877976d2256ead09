package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRegistry is returned when a registry would lose its self entry.
	ErrEmptyRegistry = errors.New("registry must contain the self notification")
	// ErrReservedNotification guards index 0 against removal and reordering.
	ErrReservedNotification = errors.New("the self notification cannot be removed or moved")
	// ErrReservedTrigger guards the system-managed triggers of the self notification.
	ErrReservedTrigger = errors.New("trigger is managed by the system")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNoTriggers      = errors.New("notification needs at least one trigger")
	ErrInvalidPattern  = errors.New("invalid regex pattern")
	ErrInvalidDelay    = errors.New("response delay must be non-negative")
	ErrInvalidType     = errors.New("unknown type")
)

// MutationError reports a rejected configuration change.
type MutationError struct {
	Op    string
	Index int
	Err   error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s notification %d: %v", e.Op, e.Index, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
