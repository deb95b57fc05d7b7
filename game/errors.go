package game

import (
	"errors"
	"fmt"
)

// ErrUsage marks a broken Rules implementation. It is a bug in the game,
// never a condition a caller should recover from.
var ErrUsage = errors.New("rules contract violated")

type UsageError struct {
	Rules  string // concrete type of the offending rules
	Reason string
}

func NewUsageError(rules Rules, reason string) *UsageError {
	return &UsageError{Rules: fmt.Sprintf("%T", rules), Reason: reason}
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrUsage, e.Rules, e.Reason)
}

func (e *UsageError) Unwrap() error {
	return ErrUsage
}
