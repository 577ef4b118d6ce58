// internal/agents/travel/flight-search/models.go
package flightsearch

import (
	"context"

	"travel-agents/internal/common/flights"
	"travel-agents/internal/models"
)

// Searcher is satisfied by *flights.Client.
type Searcher interface {
	Search(ctx context.Context, p flights.SearchParams) ([]models.FlightOption, error)
}

// searchArgs are the search_flights tool arguments.
type searchArgs struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate"`
	Airline       string `json:"airline"`
}
