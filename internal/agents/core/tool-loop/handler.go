// internal/agents/core/tool-loop/handler.go
package toolloop

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/common/validation"
	"travel-agents/internal/models"
)

const (
	TaskType = "tool-loop"
)

type Runner struct {
	config *Config
	model  llm.ChatModel
	logger logger.Logger
}

func NewRunner(config *Config, model llm.ChatModel, log logger.Logger) *Runner {
	return &Runner{
		config: config,
		model:  model,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Run alternates model calls and tool execution until the model answers
// without calling a tool. More than MaxIterations model calls is an error.
func (r *Runner) Run(ctx context.Context, input Input) (*Outcome, error) {
	byName := make(map[string]Tool, len(input.Tools))
	specs := make([]llm.ToolSpec, 0, len(input.Tools))
	for _, t := range input.Tools {
		byName[t.Name()] = t
		specs = append(specs, llm.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}

	history := make([]models.Message, len(input.Messages))
	copy(history, input.Messages)
	outcome := &Outcome{}

	for iteration := 1; iteration <= r.config.MaxIterations; iteration++ {
		resp, err := r.model.Invoke(ctx, llm.Request{
			System:   input.System,
			Messages: history,
			Tools:    specs,
		})
		if err != nil {
			return nil, err
		}

		ai := models.NewAIMessage(resp.Content, resp.ToolCalls...)
		history = append(history, ai)
		outcome.Messages = append(outcome.Messages, ai)

		if len(resp.ToolCalls) == 0 {
			outcome.Final = ai
			r.logger.Debug("Tool loop finished", map[string]interface{}{
				"iterations": iteration,
				"toolCalled": outcome.ToolCalled,
			})
			return outcome, nil
		}

		results := r.executeAll(ctx, byName, resp.ToolCalls)
		history = append(history, results...)
		outcome.Messages = append(outcome.Messages, results...)
		outcome.ToolCalled = true
		outcome.LastToolOutput = results[len(results)-1].Content
	}

	r.logger.Warn("Tool loop exceeded its iteration cap", map[string]interface{}{
		"maxIterations": r.config.MaxIterations,
	})
	return nil, errors.NewToolLoopExceededError(r.config.MaxIterations)
}

// executeAll runs every call concurrently. Results keep the calls' order.
func (r *Runner) executeAll(ctx context.Context, tools map[string]Tool, calls []models.ToolCall) []models.Message {
	results := make([]models.Message, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call models.ToolCall) {
			defer wg.Done()
			results[i] = models.NewToolMessage(call.ID, call.Name, r.execute(ctx, tools, call))
		}(i, call)
	}
	wg.Wait()

	return results
}

func (r *Runner) execute(ctx context.Context, tools map[string]Tool, call models.ToolCall) (content string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Tool panicked", map[string]interface{}{
				"tool":  call.Name,
				"panic": fmt.Sprint(rec),
			})
			metrics.ToolCallsTotal.WithLabelValues(call.Name, metrics.OutcomeError).Inc()
			content = errorPayload(fmt.Sprintf("tool %s failed", call.Name))
		}
	}()

	tool, ok := tools[call.Name]
	if !ok {
		metrics.ToolCallsTotal.WithLabelValues(call.Name, metrics.OutcomeError).Inc()
		return errorPayload(fmt.Sprintf("unknown tool %q", call.Name))
	}

	if result := validation.ValidateInput(call.Args, tool.Parameters()); !result.Valid {
		metrics.ToolCallsTotal.WithLabelValues(call.Name, metrics.OutcomeError).Inc()
		r.logger.Warn("Tool arguments rejected", map[string]interface{}{
			"tool":   call.Name,
			"errors": result.Error(),
		})
		return errorPayload("invalid arguments: " + result.Error())
	}

	out, err := tool.Call(ctx, call.Args)
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(call.Name, metrics.OutcomeError).Inc()
		stdErr := errors.NewToolExecutionFailedError(call.Name, err)
		r.logger.Warn("Tool execution failed", map[string]interface{}{
			"tool":      call.Name,
			"errorCode": string(errors.CodeOf(err)),
			"details":   stdErr.Details,
		})
		return errorPayload(userSafeText(call.Name, err))
	}

	raw, err := json.Marshal(out)
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(call.Name, metrics.OutcomeError).Inc()
		return errorPayload(fmt.Sprintf("tool %s returned an unreadable result", call.Name))
	}

	metrics.ToolCallsTotal.WithLabelValues(call.Name, metrics.OutcomeSuccess).Inc()
	return string(raw)
}

// userSafeText never exposes upstream error bodies.
func userSafeText(tool string, err error) string {
	var safe *UserSafeError
	if stderrors.As(err, &safe) {
		return safe.Msg
	}
	if stdErr, ok := errors.AsStandardError(err); ok {
		return stdErr.Message
	}
	return fmt.Sprintf("tool %s failed", tool)
}

func errorPayload(msg string) string {
	raw, _ := json.Marshal(map[string]string{"error": msg})
	return string(raw)
}

// NonEmptyArray reports whether content is a JSON array with at least one element.
func NonEmptyArray(content string) bool {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return false
	}
	return len(items) > 0
}
