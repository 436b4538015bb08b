package domain

import "errors"

// ErrInvalidState is returned when a staircase is asked for a value or fed a
// response after it has finished.
var ErrInvalidState = errors.New("invalid staircase state")

// ErrInvalidResponse is returned when a signal or response code is not one of
// the recognised categories.
var ErrInvalidResponse = errors.New("invalid response")

// ErrHardwareTimeout is returned when the stimulus device does not acknowledge
// the end of a stimulus sequence within the configured maximum wait.
var ErrHardwareTimeout = errors.New("hardware acknowledgement timed out")

// ErrCancelled is returned by interactive collaborators when the operator
// aborts the session from a prompt.
var ErrCancelled = errors.New("session cancelled by operator")
