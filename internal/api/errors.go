package api

import (
	"errors"
	"fmt"

	"github.com/yurufuwa/board/internal/board"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// invalidParams wraps a parameter decoding or validation failure
func invalidParams(err error) error {
	return fmt.Errorf("%w: %v", NewError(ErrInvalidParams, "Invalid params"), err)
}

// classify maps domain errors to JSON-RPC codes
func classify(err error) *Error {
	switch {
	case errors.Is(err, board.ErrEmptyContent),
		errors.Is(err, board.ErrUnknownReaction),
		errors.Is(err, board.ErrUnknownTheme):
		return NewError(ErrInvalidParams, "Invalid params")
	case errors.Is(err, board.ErrPostNotFound):
		return NewError(ErrNotFound, "Not found")
	default:
		return NewError(ErrServerError, "Server error")
	}
}
