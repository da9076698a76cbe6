package booking

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTime   = errors.New("malformed 12-hour time")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrWrongStep       = errors.New("operation not allowed at current step")
	ErrSubmitInFlight  = errors.New("booking submission already in progress")
	ErrSessionClosed   = errors.New("booking session closed")
	ErrMissingField    = errors.New("missing required booking data")
)

// InvalidSelectionError reports a date/time choice the wizard refused.
// The wizard stays on the same step.
type InvalidSelectionError struct {
	Reason string
	Value  string
}

func (e *InvalidSelectionError) Error() string {
	if e.Value == "" {
		return "invalid selection: " + e.Reason
	}
	return fmt.Sprintf("invalid selection: %s (%s)", e.Reason, e.Value)
}

func invalidSelection(reason, value string) error {
	return &InvalidSelectionError{Reason: reason, Value: value}
}

func IsInvalidSelection(err error) bool {
	var ise *InvalidSelectionError
	return errors.As(err, &ise)
}

var ErrSessionNotFound = errors.New("booking session not found or expired")
