package llm

import (
	"context"
	stderrors "errors"
	"time"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
)

// instrumentedModel bounds every call with a timeout and records metrics.
// Errors it returns are always *errors.StandardError.
type instrumentedModel struct {
	tier    Tier
	inner   ChatModel
	timeout time.Duration
	logger  logger.Logger
}

// Instrument wraps m with per-call timeout, metrics and debug logging.
func Instrument(tier Tier, m ChatModel, timeout time.Duration, log logger.Logger) ChatModel {
	return &instrumentedModel{
		tier:    tier,
		inner:   m,
		timeout: timeout,
		logger:  log.With(map[string]interface{}{"tier": string(tier)}),
	}
}

func (m *instrumentedModel) Invoke(ctx context.Context, req Request) (*Response, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := m.inner.Invoke(ctx, req)
	elapsed := time.Since(start)
	metrics.LLMCallDuration.WithLabelValues(string(m.tier)).Observe(elapsed.Seconds())

	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues(string(m.tier), metrics.OutcomeError).Inc()
		m.logger.Warn("Model call failed", map[string]interface{}{
			"error":      err.Error(),
			"durationMs": elapsed.Milliseconds(),
		})
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewLLMTimeoutError(string(m.tier), m.timeout)
		}
		return nil, errors.NewLLMInvocationFailedError(string(m.tier), err)
	}

	metrics.LLMCallsTotal.WithLabelValues(string(m.tier), metrics.OutcomeSuccess).Inc()
	m.logger.Debug("Model call completed", map[string]interface{}{
		"durationMs": elapsed.Milliseconds(),
		"toolCalls":  len(resp.ToolCalls),
		"tools":      len(req.Tools),
	})
	return resp, nil
}
