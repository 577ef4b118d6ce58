// internal/agents/core/places-agent/models.go
package placesagent

import (
	"context"

	datagenerator "travel-agents/internal/agents/core/data-generator"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/places"
	"travel-agents/internal/models"
)

// Searcher is satisfied by *places.Client.
type Searcher interface {
	SearchNearby(ctx context.Context, req places.NearbyRequest) ([]models.Place, error)
}

// Dependencies are shared by every places agent. Places may be nil when
// external search is off.
type Dependencies struct {
	Loader    *llm.Loader
	Generator *datagenerator.Generator
	Places    Searcher
}

// profile describes one kind of place recommendation.
type profile[T any] struct {
	intent    models.Intent
	placeType string
	noun      string
	plural    string
	count     int
	// describe returns the generator's task description for a destination.
	describe func(destination string) string
	// preferHotel picks hotel coordinates before destination coordinates.
	preferHotel bool
	template    func(id string) T
	fromPlace   func(p models.Place) T
	result      func(summary string, items []T) models.Result
}
