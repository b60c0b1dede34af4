package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForCLI_ScopeError(t *testing.T) {
	// Given: a fatal startup error with a suggestion
	err := NoClassifierError("magic")

	// When: formatting for the CLI
	result := FormatForCLI(err)

	// Then: message, hint and code are present
	assert.Contains(t, result, `Error: no usable classifier backend named "magic"`)
	assert.Contains(t, result, "Hint: run 'scope --classifier list'")
	assert.Contains(t, result, "Code: ERR_502_NO_CLASSIFIER")
}

func TestFormatForCLI_StandardError(t *testing.T) {
	// Given: a standard Go error
	err := errors.New("something went wrong")

	// When: formatting for the CLI
	result := FormatForCLI(err)

	// Then: it is presented as an internal error
	assert.Contains(t, result, "Error: something went wrong")
	assert.Contains(t, result, "Code: ERR_501_INTERNAL")
	assert.NotContains(t, result, "Cause:")
}

func TestFormatForCLI_ShowsDistinctCause(t *testing.T) {
	err := NoIndexerError(errors.New("cscope: not found"))

	result := FormatForCLI(err)

	assert.Contains(t, result, "Cause: cscope: not found")
}

func TestFormatForCLI_Nil(t *testing.T) {
	assert.Empty(t, FormatForCLI(nil))
}

func TestFormatForLog_IncludesDetails(t *testing.T) {
	err := New(ErrCodeSinkWrite, "write failed", errors.New("broken pipe")).
		WithDetail("backend", "cscope")

	fields := FormatForLog(err)

	assert.Equal(t, ErrCodeSinkWrite, fields["error_code"])
	assert.Equal(t, "broken pipe", fields["cause"])
	assert.Equal(t, "cscope", fields["detail_backend"])
	assert.Equal(t, string(SeverityWarning), fields["severity"])
}

func TestFormatForLog_StandardError(t *testing.T) {
	fields := FormatForLog(errors.New("plain"))
	assert.Equal(t, map[string]any{"error": "plain"}, fields)
	assert.Nil(t, FormatForLog(nil))
}
