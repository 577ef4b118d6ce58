// internal/agents/travel/arithmetic/handler.go
package arithmetic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	toolloop "travel-agents/internal/agents/core/tool-loop"
	"travel-agents/internal/agents/core/summarizer"
	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/common/validation"
	"travel-agents/internal/models"
)

const (
	TaskType = "arithmetic"
)

const systemPrompt = `You are the calculator of a travel planning assistant. Travellers use you to split bills, convert budgets and add up costs.
Always use the tools for arithmetic, even for simple sums. Chain calls when a calculation has several steps.
If the request does not contain the numbers you need, ask ONE short question and do not call any tool.`

var ErrDivisionByZero = &toolloop.UserSafeError{Msg: "cannot divide by zero"}

var operations = []operation{
	{"add", "Add b to a", func(a, b float64) (float64, error) { return a + b, nil }},
	{"subtract", "Subtract b from a", func(a, b float64) (float64, error) { return a - b, nil }},
	{"multiply", "Multiply a by b", func(a, b float64) (float64, error) { return a * b, nil }},
	{"divide", "Divide a by b", func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	}},
}

type Handler struct {
	config     *Config
	runner     *toolloop.Runner
	summarizer *summarizer.Summarizer
	errors     *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, loader *llm.Loader, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		runner:     toolloop.NewRunner(&toolloop.Config{MaxIterations: config.MaxToolIterations}, loader.Model(llm.TierSmart), log),
		summarizer: summarizer.New(loader.Model(llm.TierFast)),
		errors:     errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Execute(ctx context.Context, state models.AgentState) models.StateUpdate {
	start := time.Now()
	defer func() {
		metrics.AgentRunDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	update, err := h.execute(ctx, state)
	if err != nil {
		return models.NewTextUpdate(h.errors.HandleAgentError(TaskType, err))
	}
	return update
}

func (h *Handler) execute(ctx context.Context, state models.AgentState) (models.StateUpdate, error) {
	outcome, err := h.runner.Run(ctx, toolloop.Input{
		System:   systemPrompt,
		Messages: state.Messages,
		Tools:    Tools(),
	})
	if err != nil {
		return models.StateUpdate{}, err
	}

	if !outcome.ToolCalled {
		metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeClarification).Inc()
		return models.StateUpdate{Messages: outcome.Messages}, nil
	}

	var results []models.ArithmeticResult
	if err := json.Unmarshal([]byte(outcome.LastToolOutput), &results); err != nil || len(results) == 0 {
		return models.StateUpdate{}, errors.NewToolExecutionFailedError("arithmetic", fmt.Errorf("last tool output is not a result list"))
	}

	var summary string
	if h.config.GenerateSummaries {
		summary, err = h.summarizer.SummarizeJSON(ctx, "arithmetic", outcome.LastToolOutput)
		if err != nil {
			return models.StateUpdate{}, err
		}
	} else {
		summary = fmt.Sprintf("The result is %s.", formatNumber(results[len(results)-1].Result))
	}

	messages := append(outcome.Messages[:len(outcome.Messages)-1:len(outcome.Messages)-1], models.NewAIMessage(summary))
	metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeSuccess).Inc()

	return models.StateUpdate{
		Messages: messages,
		Data:     models.NewArithmeticResults(summary, results),
	}, nil
}

// Tools returns the four binary operations. Each call yields a one-element
// result list.
func Tools() []toolloop.Tool {
	schema := validation.Object(map[string]validation.Property{
		"a": {Type: "number", Description: "First operand"},
		"b": {Type: "number", Description: "Second operand"},
	}, "a", "b")

	tools := make([]toolloop.Tool, 0, len(operations))
	for _, op := range operations {
		op := op
		tools = append(tools, &toolloop.FuncTool{
			ToolName:        op.name,
			ToolDescription: op.description,
			Schema:          schema,
			Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				var in operands
				raw, err := json.Marshal(args)
				if err != nil {
					return nil, err
				}
				if err := json.Unmarshal(raw, &in); err != nil {
					return nil, &toolloop.UserSafeError{Msg: "operands must be numbers"}
				}
				result, err := op.apply(in.A, in.B)
				if err != nil {
					return nil, err
				}
				return []models.ArithmeticResult{{
					Operation: op.name,
					A:         in.A,
					B:         in.B,
					Result:    result,
				}}, nil
			},
		})
	}
	return tools
}

func formatNumber(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.6f", f), "0"), ".")
}
