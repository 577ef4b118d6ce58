// internal/agents/core/tool-loop/models.go
package toolloop

import (
	"context"

	"travel-agents/internal/common/validation"
	"travel-agents/internal/models"
)

// Tool is a function the model may call during a run.
type Tool interface {
	Name() string
	Description() string
	Parameters() validation.JSONSchema
	Call(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// FuncTool adapts a plain function to Tool.
type FuncTool struct {
	ToolName        string
	ToolDescription string
	Schema          validation.JSONSchema
	Fn              func(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

func (t *FuncTool) Name() string                      { return t.ToolName }
func (t *FuncTool) Description() string               { return t.ToolDescription }
func (t *FuncTool) Parameters() validation.JSONSchema { return t.Schema }

func (t *FuncTool) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return t.Fn(ctx, args)
}

type Input struct {
	System   string
	Messages []models.Message
	Tools    []Tool
}

// Outcome is what a finished run produced. Messages holds only the entries
// the run appended, in order.
type Outcome struct {
	Messages   []models.Message
	ToolCalled bool
	// LastToolOutput is the content of the last tool message, if any.
	LastToolOutput string
	// Final is the model's closing message, the one without tool calls.
	Final models.Message
}

// UserSafeError marks a tool error whose text may be shown to the model.
type UserSafeError struct {
	Msg string
}

func (e *UserSafeError) Error() string { return e.Msg }
