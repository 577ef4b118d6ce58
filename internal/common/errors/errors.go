// Package errors provides standardized error handling for agent and adapter failures.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLLMInvocationFailed  ErrorCode = "LLM_INVOCATION_FAILED"
	ErrCodeLLMTimeout           ErrorCode = "LLM_TIMEOUT"
	ErrCodeMalformedModelOutput ErrorCode = "MALFORMED_MODEL_OUTPUT"

	ErrCodeToolLoopExceeded    ErrorCode = "TOOL_LOOP_EXCEEDED"
	ErrCodeToolExecutionFailed ErrorCode = "TOOL_EXECUTION_FAILED"

	ErrCodeFlightSearchUnavailable   ErrorCode = "FLIGHT_SEARCH_UNAVAILABLE"
	ErrCodePlacesSearchFailed        ErrorCode = "PLACES_SEARCH_FAILED"
	ErrCodeEncyclopediaRequestFailed ErrorCode = "ENCYCLOPEDIA_REQUEST_FAILED"
	ErrCodeTokenExchangeFailed       ErrorCode = "TOKEN_EXCHANGE_FAILED"

	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewLLMInvocationFailedError creates a retryable model call error.
func NewLLMInvocationFailedError(tier string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMInvocationFailed,
		Message:   "Language model invocation failed",
		Details:   fmt.Sprintf("tier: %s, error: %s", tier, errString(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable model timeout error.
func NewLLMTimeoutError(tier string, timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Language model call timed out",
		Details:   fmt.Sprintf("tier: %s, timeout: %s", tier, timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedModelOutputError is returned when a model reply cannot be used as structured data.
func NewMalformedModelOutputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedModelOutput,
		Message:   "Model output could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewToolLoopExceededError(maxIterations int) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolLoopExceeded,
		Message:   "Tool invocation loop exceeded its iteration limit",
		Details:   fmt.Sprintf("maxIterations: %d", maxIterations),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewToolExecutionFailedError(tool string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolExecutionFailed,
		Message:   fmt.Sprintf("Tool '%s' failed", tool),
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFlightSearchUnavailableError marks the flight provider as unreachable or failing.
func NewFlightSearchUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFlightSearchUnavailable,
		Message:   "Flight search is currently unavailable",
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewPlacesSearchFailedError(placeType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePlacesSearchFailed,
		Message:   "Places search failed",
		Details:   fmt.Sprintf("type: %s, error: %s", placeType, errString(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewEncyclopediaRequestFailedError(action string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEncyclopediaRequestFailed,
		Message:   "Encyclopedia request failed",
		Details:   fmt.Sprintf("action: %s, error: %s", action, errString(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenExchangeFailedError creates a retryable OAuth token error.
func NewTokenExchangeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenExchangeFailed,
		Message:   "OAuth token exchange failed",
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewConfigurationInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError unwraps err to a *StandardError if one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// CodeOf returns the error code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// GetErrorCategory groups codes for logging and dashboards.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeLLMInvocationFailed, ErrCodeLLMTimeout, ErrCodeMalformedModelOutput:
		return "MODEL"
	case ErrCodeToolLoopExceeded, ErrCodeToolExecutionFailed:
		return "TOOL"
	case ErrCodeFlightSearchUnavailable, ErrCodePlacesSearchFailed,
		ErrCodeEncyclopediaRequestFailed, ErrCodeTokenExchangeFailed:
		return "UPSTREAM"
	case ErrCodeConfigurationInvalid:
		return "CONFIGURATION"
	default:
		return "INTERNAL"
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
