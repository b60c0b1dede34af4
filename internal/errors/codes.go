// Package errors provides structured error handling for scope.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (walk, lock, filesystem)
//   - 4XX: Validation errors
//   - 5XX: Pipeline errors (classifiers, indexers)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and directory I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryPipeline indicates classifier and indexer errors.
	CategoryPipeline Category = "PIPELINE"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the run can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"
	ErrCodeConfigParse   = "ERR_102_CONFIG_PARSE"

	// IO errors (200-299)
	ErrCodePathNotFound = "ERR_201_PATH_NOT_FOUND"
	ErrCodeWalkFailed   = "ERR_202_WALK_FAILED"
	ErrCodeLockHeld     = "ERR_203_LOCK_HELD"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"

	// Pipeline errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeNoClassifier = "ERR_502_NO_CLASSIFIER"
	ErrCodeNoIndexer    = "ERR_503_NO_INDEXER"
	ErrCodeProbeFailed  = "ERR_504_PROBE_FAILED"
	ErrCodeSinkWrite    = "ERR_505_SINK_WRITE"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryPipeline
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryPipeline
	}
}

// severityFromCode determines severity based on error code.
// Startup failures are fatal; per-file and per-subtree failures are warnings.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeNoClassifier, ErrCodeNoIndexer, ErrCodeLockHeld:
		return SeverityFatal
	case ErrCodeProbeFailed, ErrCodeWalkFailed, ErrCodeSinkWrite:
		return SeverityWarning
	default:
		return SeverityError
	}
}
