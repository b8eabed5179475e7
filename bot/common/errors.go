package common

import (
	"errors"
	"fmt"
)

// BotError carries a user-facing message alongside the internal error
type BotError struct {
	UserMessage string // shown to the Discord user; empty means the route fallback
	LogMessage  string
	Err         error
}

func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for system issues; the user sees the route fallback
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		LogMessage: logMessage,
		Err:        err,
	}
}

// UserMessage returns the message a failed handler wants shown, or "".
func UserMessage(err error) string {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr.UserMessage
	}
	return ""
}
