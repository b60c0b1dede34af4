package errors

import (
	"errors"
	"fmt"
)

// ScopeError is the structured error type for scope.
// It carries enough context for logging and for a readable CLI message.
type ScopeError struct {
	// Code is the unique error code (e.g., "ERR_502_NO_CLASSIFIER").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Pipeline).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *ScopeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ScopeError) Unwrap() error {
	return e.Cause
}

// Is matches another ScopeError by code, so errors.Is works across messages.
func (e *ScopeError) Is(target error) bool {
	if t, ok := target.(*ScopeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *ScopeError) WithDetail(key, value string) *ScopeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *ScopeError) WithSuggestion(suggestion string) *ScopeError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ScopeError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *ScopeError {
	return &ScopeError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a ScopeError from an existing error.
func Wrap(code string, err error) *ScopeError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *ScopeError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *ScopeError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ScopeError {
	return New(ErrCodeInternal, message, cause)
}

// NoClassifierError reports that no classification backend is usable.
func NoClassifierError(requested string) *ScopeError {
	msg := "no usable classifier backend found"
	if requested != "" {
		msg = fmt.Sprintf("no usable classifier backend named %q", requested)
	}
	return New(ErrCodeNoClassifier, msg, nil).
		WithSuggestion("run 'scope --classifier list' to see the available backends")
}

// NoIndexerError reports that neither indexer backend could be started.
func NoIndexerError(cause error) *ScopeError {
	return New(ErrCodeNoIndexer, "cannot create any tag file database", cause).
		WithSuggestion("install cscope or Exuberant/Universal ctags, or run 'scope doctor'")
}

// IsFatal checks if an error in the chain has fatal severity.
func IsFatal(err error) bool {
	var se *ScopeError
	if errors.As(err, &se) {
		return se.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from the first ScopeError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var se *ScopeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from the first ScopeError in the chain.
func GetCategory(err error) Category {
	var se *ScopeError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}
