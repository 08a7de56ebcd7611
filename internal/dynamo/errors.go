package dynamo

import "errors"

// Precondition errors. All of them satisfy errors.Is(err, ErrInvalidArgument).
var (
	// ErrInvalidArgument indicates a nil or otherwise unusable argument.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrDuplicateID indicates an oscillator id is already registered.
	ErrDuplicateID = &argumentError{msg: "dynamo: oscillator id already registered"}

	// ErrUnknownID indicates an id that does not reference a registered oscillator.
	ErrUnknownID = &argumentError{msg: "dynamo: id does not reference a registered oscillator"}
)

type argumentError struct {
	msg string
}

func (e *argumentError) Error() string { return e.msg }

func (e *argumentError) Unwrap() error { return ErrInvalidArgument }

// OscillatorError wraps an error with the id of the oscillator involved.
type OscillatorError struct {
	ID      string
	Op      string
	Wrapped error
}

func (e *OscillatorError) Error() string {
	return e.Op + " " + e.ID + ": " + e.Wrapped.Error()
}

func (e *OscillatorError) Unwrap() error {
	return e.Wrapped
}
