// internal/api/models.go
package api

import (
	"context"
	"encoding/json"

	"travel-agents/internal/common/validation"
	"travel-agents/internal/models"
)

// TurnRunner is satisfied by *orchestrator.Orchestrator.
type TurnRunner interface {
	Run(ctx context.Context, state models.AgentState) models.AgentState
}

// TipsProvider is satisfied by *destinationtips.Handler.
type TipsProvider interface {
	Execute(ctx context.Context, trip models.Trip) *models.TipsResult
}

// ReadinessFunc reports whether downstream dependencies are reachable.
type ReadinessFunc func(ctx context.Context) error

type ChatRequest struct {
	Messages []models.Message `json:"messages"`
	Trip     models.Trip      `json:"trip"`
	// Data is the previous turn's payload. Every turn replaces it, so it is
	// accepted and ignored.
	Data json.RawMessage `json:"data,omitempty"`
}

type ChatResponse struct {
	Messages []models.Message `json:"messages"`
	Data     models.Result    `json:"data"`
	Trip     models.Trip      `json:"trip"`
}

type TipsRequest struct {
	Trip models.Trip `json:"trip"`
}

type TipsResponse struct {
	Data *models.TipsResult `json:"data"`
	Trip models.Trip        `json:"trip"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Error  string `json:"error,omitempty"`
}

var chatSchema = validation.Object(map[string]validation.Property{
	"messages": {
		Type:        "array",
		Description: "Conversation so far, oldest first",
		Items: &validation.Property{
			Type: "object",
			Properties: map[string]validation.Property{
				"type":    {Type: "string", Enum: []string{string(models.MessageHuman), string(models.MessageAI)}},
				"content": {Type: "string"},
			},
			Required: []string{"type", "content"},
		},
	},
	"trip": {Type: "object"},
	"data": {Type: "object"},
}, "messages")

var tipsSchema = validation.Object(map[string]validation.Property{
	"trip": {Type: "object"},
}, "trip")
