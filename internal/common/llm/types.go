// Package llm resolves logical model tiers to concrete chat providers.
package llm

import (
	"context"

	"travel-agents/internal/common/validation"
	"travel-agents/internal/models"
)

// Tier is a logical model class. Components ask for a tier, never a model name.
type Tier string

const (
	TierFast     Tier = "fast"
	TierStandard Tier = "standard"
	TierSmart    Tier = "smart"
)

// ToolSpec is a function the model may call.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  validation.JSONSchema
}

// Request is one chat completion call.
type Request struct {
	System   string
	Messages []models.Message
	Tools    []ToolSpec
	// JSONMode asks the provider for a JSON object reply where supported.
	JSONMode bool
}

// Response is the model's reply. ToolCalls is empty for a plain answer.
type Response struct {
	Content   string
	ToolCalls []models.ToolCall
}

// ChatModel is implemented by every provider.
type ChatModel interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// Prompt is a convenience for single-turn calls.
func Prompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []models.Message{models.NewHumanMessage(user)},
	}
}
