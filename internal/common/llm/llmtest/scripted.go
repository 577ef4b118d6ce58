// Package llmtest provides a scripted ChatModel for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"travel-agents/internal/common/llm"
	"travel-agents/internal/models"
)

// Step is one scripted reply. Err takes precedence over Response.
type Step struct {
	Response *llm.Response
	Err      error
}

// ScriptedModel replays Steps in order and records every request. Once the
// script is exhausted it keeps returning an error.
type ScriptedModel struct {
	mu       sync.Mutex
	steps    []Step
	requests []llm.Request
	// Handler, when set, answers any call the script does not cover.
	Handler func(req llm.Request) (*llm.Response, error)
}

func NewScriptedModel(steps ...Step) *ScriptedModel {
	return &ScriptedModel{steps: steps}
}

// Text is a plain answer step.
func Text(content string) Step {
	return Step{Response: &llm.Response{Content: content}}
}

// Calls is a step that requests the given tool calls.
func Calls(calls ...models.ToolCall) Step {
	return Step{Response: &llm.Response{ToolCalls: calls}}
}

// Fail is an error step.
func Fail(err error) Step {
	return Step{Err: err}
}

// Call builds a tool call with an explicit id.
func Call(id, name string, args map[string]interface{}) models.ToolCall {
	return models.ToolCall{ID: id, Name: name, Args: args}
}

func (s *ScriptedModel) Invoke(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	idx := len(s.requests) - 1
	var step *Step
	if idx < len(s.steps) {
		step = &s.steps[idx]
	}
	handler := s.Handler
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if step == nil {
		if handler != nil {
			return handler(req)
		}
		return nil, fmt.Errorf("llmtest: no scripted response for call %d", idx+1)
	}
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Response, nil
}

// Requests returns a copy of everything the model was asked.
func (s *ScriptedModel) Requests() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *ScriptedModel) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Loader builds a static loader that serves the same model for every tier,
// or the per-tier models given.
func Loader(fast, standard, smart llm.ChatModel) *llm.Loader {
	return llm.NewStaticLoader(map[llm.Tier]llm.ChatModel{
		llm.TierFast:     fast,
		llm.TierStandard: standard,
		llm.TierSmart:    smart,
	})
}
