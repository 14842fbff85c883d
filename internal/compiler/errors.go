package compiler

import "errors"

var (
	// ErrUnsupported is returned for patterns the TDFA cannot represent.
	ErrUnsupported = errors.New("unsupported pattern")

	// ErrTooManyStates is returned when determinization exceeds the state threshold.
	ErrTooManyStates = errors.New("TDFA state explosion")

	// ErrWarningsAsErrors is returned when a warning promoted to an error fired.
	ErrWarningsAsErrors = errors.New("warnings treated as errors")
)
