package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("permission denied")

	// When: wrapping with ScopeError
	scopeErr := New(ErrCodeWalkFailed, "cannot read directory src", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, scopeErr)
	assert.Equal(t, originalErr, errors.Unwrap(scopeErr))
	assert.True(t, errors.Is(scopeErr, originalErr))
}

func TestScopeError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigInvalid,
			message:  "jobs must be at least 1",
			expected: "[ERR_101_CONFIG_INVALID] jobs must be at least 1",
		},
		{
			name:     "walk error",
			code:     ErrCodeWalkFailed,
			message:  "cannot read src",
			expected: "[ERR_202_WALK_FAILED] cannot read src",
		},
		{
			name:     "no classifier",
			code:     ErrCodeNoClassifier,
			message:  "no usable classifier backend found",
			expected: "[ERR_502_NO_CLASSIFIER] no usable classifier backend found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestScopeError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with same code and different messages
	err1 := New(ErrCodeProbeFailed, "probe failed for a.txt", nil)
	err2 := New(ErrCodeProbeFailed, "probe failed for b.txt", nil)

	// Then: they match by code
	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, New(ErrCodeSinkWrite, "x", nil)))
}

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code     string
		category Category
		severity Severity
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{ErrCodeConfigParse, CategoryConfig, SeverityError},
		{ErrCodePathNotFound, CategoryIO, SeverityError},
		{ErrCodeWalkFailed, CategoryIO, SeverityWarning},
		{ErrCodeLockHeld, CategoryIO, SeverityFatal},
		{ErrCodeInvalidInput, CategoryValidation, SeverityError},
		{ErrCodeNoClassifier, CategoryPipeline, SeverityFatal},
		{ErrCodeNoIndexer, CategoryPipeline, SeverityFatal},
		{ErrCodeProbeFailed, CategoryPipeline, SeverityWarning},
		{ErrCodeSinkWrite, CategoryPipeline, SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestIsFatal_FindsWrappedScopeError(t *testing.T) {
	// Given: a fatal error wrapped by fmt.Errorf
	err := fmt.Errorf("startup: %w", NoIndexerError(nil))

	// Then: IsFatal and GetCode look through the chain
	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrCodeNoIndexer, GetCode(err))
	assert.Equal(t, CategoryPipeline, GetCategory(err))

	assert.False(t, IsFatal(errors.New("plain")))
	assert.Empty(t, GetCode(errors.New("plain")))
}

func TestNoClassifierError_MentionsRequestedName(t *testing.T) {
	err := NoClassifierError("magic")
	assert.Contains(t, err.Message, `"magic"`)
	assert.NotEmpty(t, err.Suggestion)

	err = NoClassifierError("")
	assert.Equal(t, "no usable classifier backend found", err.Message)
}

func TestScopeError_WithDetail_AddsContext(t *testing.T) {
	err := New(ErrCodeProbeFailed, "probe failed", nil).
		WithDetail("path", "a.txt").
		WithDetail("classifier", "file")

	assert.Equal(t, "a.txt", err.Details["path"])
	assert.Equal(t, "file", err.Details["classifier"])
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}
