package models

import "fmt"

// ValidationError marks malformed or inconsistent input. It is always
// detected before any write, so a validation failure never leaves partial
// state behind. Check for it with errors.As.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

var (
	ErrAmountNotPositive   = &ValidationError{Reason: "amount must be positive"}
	ErrNoParticipants      = &ValidationError{Reason: "at least one participant required"}
	ErrDuplicateUser       = &ValidationError{Reason: "duplicate participant"}
	ErrPayerNotParticipant = &ValidationError{Reason: "payer not a participant"}
	ErrSplitsDoNotAddUp    = &ValidationError{Reason: "splits do not sum to the expense amount"}
	ErrSelfSettlement      = &ValidationError{Reason: "payer and receiver must differ"}
	ErrEmptyDescription    = &ValidationError{Reason: "description required"}
	ErrMissingDate         = &ValidationError{Reason: "date required"}
)
