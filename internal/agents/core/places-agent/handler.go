// internal/agents/core/places-agent/handler.go
package placesagent

import (
	"context"
	"fmt"
	"strings"
	"time"

	datagenerator "travel-agents/internal/agents/core/data-generator"
	"travel-agents/internal/agents/core/summarizer"
	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/common/places"
	"travel-agents/internal/models"

	"github.com/google/uuid"
)

const (
	TaskType = "places-agent"
)

const clarifyPrompt = `You are a travel planning assistant. The user wants %s recommendations but has not said where they are travelling.
Ask ONE short, friendly question to find out the destination. Do not recommend anything yet.`

// Agent recommends one kind of place for the trip's destination.
type Agent[T any] struct {
	profile    profile[T]
	config     *Config
	clarifier  llm.ChatModel
	generator  *datagenerator.Generator
	summarizer *summarizer.Summarizer
	places     Searcher
	errors     *errors.ErrorHandler
	logger     logger.Logger
}

func newAgent[T any](p profile[T], config *Config, deps Dependencies, log logger.Logger) *Agent[T] {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
		"agent":    string(p.intent),
	})
	return &Agent[T]{
		profile:    p,
		config:     config,
		clarifier:  deps.Loader.Model(llm.TierFast),
		generator:  deps.Generator,
		summarizer: summarizer.New(deps.Loader.Model(llm.TierFast)),
		places:     deps.Places,
		errors:     errors.NewErrorHandler(log),
		logger:     log,
	}
}

func NewHotelAgent(config *Config, deps Dependencies, log logger.Logger) *Agent[models.Hotel] {
	return newAgent(hotelProfile, config, deps, log)
}

func NewRestaurantAgent(config *Config, deps Dependencies, log logger.Logger) *Agent[models.Restaurant] {
	return newAgent(restaurantProfile, config, deps, log)
}

func NewActivitiesAgent(config *Config, deps Dependencies, log logger.Logger) *Agent[models.Activity] {
	return newAgent(activitiesProfile, config, deps, log)
}

func NewNatureAgent(config *Config, deps Dependencies, log logger.Logger) *Agent[models.NatureSpot] {
	return newAgent(natureProfile, config, deps, log)
}

func NewSelfieAgent(config *Config, deps Dependencies, log logger.Logger) *Agent[models.SelfieSpot] {
	return newAgent(selfieProfile, config, deps, log)
}

// Execute runs one turn. It never fails: errors become the apology.
func (a *Agent[T]) Execute(ctx context.Context, state models.AgentState) models.StateUpdate {
	agent := string(a.profile.intent)
	start := time.Now()
	defer func() {
		metrics.AgentRunDuration.WithLabelValues(agent).Observe(time.Since(start).Seconds())
	}()

	var (
		update models.StateUpdate
		err    error
	)
	if !state.Trip.HasDestination() {
		update, err = a.askForDestination(ctx, state)
	} else {
		update, err = a.recommend(ctx, state.Trip)
	}
	if err != nil {
		return models.NewTextUpdate(a.errors.HandleAgentError(agent, err))
	}
	return update
}

func (a *Agent[T]) askForDestination(ctx context.Context, state models.AgentState) (models.StateUpdate, error) {
	resp, err := a.clarifier.Invoke(ctx, llm.Request{
		System:   fmt.Sprintf(clarifyPrompt, a.profile.noun),
		Messages: models.Tail(state.Messages, 6),
	})
	if err != nil {
		return models.StateUpdate{}, err
	}

	question := strings.TrimSpace(resp.Content)
	if question == "" {
		return models.StateUpdate{}, errors.NewMalformedModelOutputError("empty clarifying question")
	}

	metrics.AgentRunsTotal.WithLabelValues(string(a.profile.intent), metrics.OutcomeClarification).Inc()
	return models.NewTextUpdate(question), nil
}

func (a *Agent[T]) recommend(ctx context.Context, trip models.Trip) (models.StateUpdate, error) {
	items, source, err := a.collect(ctx, trip)
	if err != nil {
		return models.StateUpdate{}, err
	}

	var summary string
	if a.config.GenerateSummaries {
		summary, err = a.summarizer.Summarize(ctx, a.profile.plural, items)
		if err != nil {
			return models.StateUpdate{}, err
		}
	} else {
		summary = summarizer.Placeholder(a.profile.noun, len(items))
	}

	metrics.AgentRunsTotal.WithLabelValues(string(a.profile.intent), metrics.OutcomeSuccess).Inc()
	a.logger.Info("Recommendations ready", map[string]interface{}{
		"destination": trip.DestinationName(),
		"count":       len(items),
		"source":      source,
	})

	return models.StateUpdate{
		Messages: []models.Message{models.NewAIMessage(summary)},
		Data:     a.profile.result(summary, items),
	}, nil
}

// collect uses real nearby places when it can and the generator otherwise.
// An empty nearby search is a valid, empty answer.
func (a *Agent[T]) collect(ctx context.Context, trip models.Trip) ([]T, string, error) {
	if coords := a.coordinates(trip); a.config.UseExternalSearch && a.places != nil && coords != nil {
		found, err := a.places.SearchNearby(ctx, places.NearbyRequest{
			Type:      a.profile.placeType,
			Latitude:  coords.Lat,
			Longitude: coords.Lng,
		})
		if err != nil {
			return nil, "", err
		}
		items := make([]T, len(found))
		for i, p := range found {
			items[i] = a.profile.fromPlace(p)
		}
		return items, "places", nil
	}

	templates := make([]T, a.profile.count)
	for i := range templates {
		templates[i] = a.profile.template(newID())
	}

	items, err := datagenerator.Generate(ctx, a.generator, datagenerator.Request[T]{
		Data:        templates,
		Context:     generatorContext(trip, a.coordinates(trip)),
		Description: a.profile.describe(trip.DestinationName()),
	})
	if err != nil {
		return nil, "", err
	}
	return items, "generator", nil
}

func (a *Agent[T]) coordinates(trip models.Trip) *models.Coordinates {
	if a.profile.preferHotel {
		if trip.HotelCoords != nil {
			return trip.HotelCoords
		}
		return trip.DestinationCoords
	}
	if trip.DestinationCoords != nil {
		return trip.DestinationCoords
	}
	return trip.HotelCoords
}

func generatorContext(trip models.Trip, coords *models.Coordinates) map[string]interface{} {
	ctx := trip.Context()
	if coords != nil {
		ctx["near"] = map[string]float64{"lat": coords.Lat, "lng": coords.Lng}
	}
	return ctx
}

func newID() string {
	return uuid.NewString()
}
