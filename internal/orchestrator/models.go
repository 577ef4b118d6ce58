// internal/orchestrator/models.go
package orchestrator

import (
	"context"

	"travel-agents/internal/models"
)

// Node handles one intent. Implementations report failures as an apology
// update, never as an error.
type Node interface {
	Execute(ctx context.Context, state models.AgentState) models.StateUpdate
}

// NodeFunc adapts a function to Node.
type NodeFunc func(ctx context.Context, state models.AgentState) models.StateUpdate

func (f NodeFunc) Execute(ctx context.Context, state models.AgentState) models.StateUpdate {
	return f(ctx, state)
}

type Router interface {
	Classify(ctx context.Context, messages []models.Message) models.Intent
}

// Geocoder is satisfied by *places.Client.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*models.Coordinates, error)
}

// Turn status values recorded per processed turn.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusPanicked  = "panicked"
)
