package toolloop

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/llm/llmtest"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/validation"
	"travel-agents/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ClarificationWithoutTools(t *testing.T) {
	model := llmtest.NewScriptedModel(llmtest.Text("Where are you flying from?"))
	runner := newTestRunner(t, model, 6)

	outcome, err := runner.Run(context.Background(), Input{
		System:   "flight assistant",
		Messages: []models.Message{models.NewHumanMessage("find me a flight to Lisbon")},
		Tools:    []Tool{echoTool(nil)},
	})
	require.NoError(t, err)

	assert.False(t, outcome.ToolCalled)
	assert.Empty(t, outcome.LastToolOutput)
	assert.Equal(t, "Where are you flying from?", outcome.Final.Content)
	require.Len(t, outcome.Messages, 1)

	req := model.Requests()[0]
	assert.Equal(t, "flight assistant", req.System)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "echo", req.Tools[0].Name)
}

func TestRun_ExecutesCallsInOrder(t *testing.T) {
	model := llmtest.NewScriptedModel(
		llmtest.Calls(
			llmtest.Call("c1", "echo", map[string]interface{}{"value": "slow"}),
			llmtest.Call("c2", "echo", map[string]interface{}{"value": "fast"}),
		),
		llmtest.Text("Done."),
	)
	runner := newTestRunner(t, model, 6)

	delays := map[string]time.Duration{"slow": 30 * time.Millisecond, "fast": 0}
	outcome, err := runner.Run(context.Background(), Input{
		Messages: []models.Message{models.NewHumanMessage("go")},
		Tools:    []Tool{echoTool(delays)},
	})
	require.NoError(t, err)

	require.Len(t, outcome.Messages, 4)
	assert.True(t, outcome.Messages[0].HasToolCalls())
	assert.Equal(t, "c1", outcome.Messages[1].ToolCallID)
	assert.Equal(t, `["slow"]`, outcome.Messages[1].Content)
	assert.Equal(t, "c2", outcome.Messages[2].ToolCallID)
	assert.Equal(t, `["fast"]`, outcome.Messages[2].Content)
	assert.Equal(t, "Done.", outcome.Final.Content)
	assert.True(t, outcome.ToolCalled)
	assert.Equal(t, `["fast"]`, outcome.LastToolOutput)

	// The second call sees the whole exchange so far.
	second := model.Requests()[1]
	require.Len(t, second.Messages, 4)
	assert.Equal(t, models.MessageTool, second.Messages[3].Type)
}

func TestRun_ToolErrorsBecomeMessages(t *testing.T) {
	failing := &FuncTool{
		ToolName: "lookup",
		Schema:   validation.Object(map[string]validation.Property{"q": {Type: "string"}}, "q"),
		Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, fmt.Errorf("upstream said 500: secret body")
		},
	}
	model := llmtest.NewScriptedModel(
		llmtest.Calls(
			llmtest.Call("c1", "lookup", map[string]interface{}{"q": "x"}),
			llmtest.Call("c2", "lookup", map[string]interface{}{}),
			llmtest.Call("c3", "missing", nil),
		),
		llmtest.Text("Sorry, I could not look that up."),
	)
	runner := newTestRunner(t, model, 6)

	outcome, err := runner.Run(context.Background(), Input{Tools: []Tool{failing}})
	require.NoError(t, err)
	require.Len(t, outcome.Messages, 5)

	for i := 1; i <= 3; i++ {
		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(outcome.Messages[i].Content), &payload))
		assert.NotEmpty(t, payload["error"])
		assert.NotContains(t, payload["error"], "secret body")
	}
	assert.Contains(t, outcome.Messages[2].Content, "invalid arguments")
	assert.Contains(t, outcome.Messages[3].Content, "unknown tool")
	assert.False(t, NonEmptyArray(outcome.LastToolOutput))
}

func TestRun_UserSafeErrorIsPassedThrough(t *testing.T) {
	tool := &FuncTool{
		ToolName: "divide",
		Schema:   validation.Object(map[string]validation.Property{}),
		Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, &UserSafeError{Msg: "cannot divide by zero"}
		},
	}
	model := llmtest.NewScriptedModel(
		llmtest.Calls(llmtest.Call("c1", "divide", map[string]interface{}{})),
		llmtest.Text("Division by zero is undefined."),
	)

	outcome, err := newTestRunner(t, model, 6).Run(context.Background(), Input{Tools: []Tool{tool}})
	require.NoError(t, err)
	assert.Equal(t, `{"error":"cannot divide by zero"}`, outcome.LastToolOutput)
}

func TestRun_IterationCap(t *testing.T) {
	var calls atomic.Int32
	model := llmtest.NewScriptedModel()
	model.Handler = func(req llm.Request) (*llm.Response, error) {
		n := calls.Add(1)
		return &llm.Response{ToolCalls: []models.ToolCall{
			llmtest.Call(fmt.Sprintf("c%d", n), "echo", map[string]interface{}{"value": "again"}),
		}}, nil
	}

	_, err := newTestRunner(t, model, 3).Run(context.Background(), Input{Tools: []Tool{echoTool(nil)}})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeToolLoopExceeded))
	assert.Equal(t, 3, model.CallCount())
}

func TestRun_ModelError(t *testing.T) {
	model := llmtest.NewScriptedModel(llmtest.Fail(errors.NewLLMInvocationFailedError("smart", fmt.Errorf("boom"))))

	_, err := newTestRunner(t, model, 6).Run(context.Background(), Input{})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeLLMInvocationFailed))
}

func TestNonEmptyArray(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{`[{"id":"1"}]`, true},
		{`[]`, false},
		{`{"error":"x"}`, false},
		{`not json`, false},
		{``, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NonEmptyArray(tt.content), tt.content)
	}
}

// ==== Test Helper Functions ====

func newTestRunner(t *testing.T, model *llmtest.ScriptedModel, max int) *Runner {
	t.Helper()
	return NewRunner(&Config{MaxIterations: max}, model, logger.NewTestLogger(t))
}

func echoTool(delays map[string]time.Duration) Tool {
	return &FuncTool{
		ToolName:        "echo",
		ToolDescription: "Echoes a value back",
		Schema: validation.Object(map[string]validation.Property{
			"value": {Type: "string"},
		}, "value"),
		Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			v := args["value"].(string)
			time.Sleep(delays[v])
			return []string{v}, nil
		},
	}
}
