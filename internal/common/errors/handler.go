// internal/common/errors/handler.go
package errors

import (
	"travel-agents/internal/common/metrics"
)

// ApologyMessage is the only failure text ever shown to an end user.
const ApologyMessage = "I'm sorry, something went wrong while handling your request. Please try again in a moment."

// ErrorHandler turns internal agent errors into the user-facing apology.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleAgentError logs err with its code, counts it and returns the apology text.
func (h *ErrorHandler) HandleAgentError(agent string, err error) string {
	stdErr := h.normalizeError(err)

	metrics.AgentRunsTotal.WithLabelValues(agent, string(stdErr.Code)).Inc()

	if h.logger != nil {
		h.logger.Error("Agent failed", map[string]interface{}{
			"agent":         agent,
			"errorCode":     string(stdErr.Code),
			"message":       stdErr.Message,
			"details":       stdErr.Details,
			"retryable":     stdErr.Retryable,
			"errorCategory": GetErrorCategory(stdErr.Code),
		})
	}

	return ApologyMessage
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}
