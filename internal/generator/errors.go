package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProbabilities indicates species probabilities that are not
	// all positive or do not sum to 1.
	ErrInvalidProbabilities = errors.New("generator: invalid species probabilities")

	// ErrNoDecayChannel indicates a drawable resonance without usable decay channels.
	ErrNoDecayChannel = errors.New("generator: resonance has no decay channel")

	// ErrArenaFull indicates more resonances in one event than the arena holds.
	ErrArenaFull = errors.New("generator: event arena full")

	// ErrInvalidConfig indicates a generator configuration out of range.
	ErrInvalidConfig = errors.New("generator: invalid configuration")
)

// EventError wraps a failure with the event it occurred in. The event is
// left incomplete and must be discarded.
type EventError struct {
	Event   int64
	Primary int
	Wrapped error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %d, primary %d: %v", e.Event, e.Primary, e.Wrapped)
}

func (e *EventError) Unwrap() error {
	return e.Wrapped
}
