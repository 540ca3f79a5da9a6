package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	CodeConfig   = "CONFIG_ERROR"
	CodeDatabase = "DATABASE_ERROR"
)

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDirNotFound  = errors.New("directory does not exist")
	ErrNoCandidates = errors.New("no pdf files found")
	ErrExtraction   = errors.New("text extraction failed")
	ErrDatabase     = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError builds a CONFIG_ERROR that matches cause with errors.Is.
func ConfigError(message string, cause error) *AppError {
	return NewAppError(CodeConfig, message, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeConfig
}
