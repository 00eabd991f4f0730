package state

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStation marks a reference to a station that is not in the
	// current list. The store records it; it is never returned from a
	// mutation.
	ErrUnknownStation = errors.New("unknown station")
	// ErrEmptyCollection is returned by lookups that need at least one
	// station.
	ErrEmptyCollection = errors.New("station list is empty")
	// ErrDuplicateStation rejects a replacement list that repeats an ID.
	ErrDuplicateStation = errors.New("duplicate station id")
)

// UnknownStationError names the station that could not be found.
type UnknownStationError struct {
	ID string
}

func (e *UnknownStationError) Error() string {
	return fmt.Sprintf("unknown station %q", e.ID)
}

func (e *UnknownStationError) Unwrap() error { return ErrUnknownStation }
