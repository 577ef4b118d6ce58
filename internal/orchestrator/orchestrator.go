// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/common/observability"
	"travel-agents/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// UnsupportedMessage is the fixed reply for requests no agent handles.
const UnsupportedMessage = "I can help you find flights, hotels, restaurants, activities, nature spots and photo spots, and with travel calculations such as splitting costs. What would you like to plan?"

var placesIntents = map[models.Intent]bool{
	models.IntentHotel:      true,
	models.IntentRestaurant: true,
	models.IntentActivities: true,
	models.IntentNature:     true,
	models.IntentSelfie:     true,
}

// Orchestrator runs one conversational turn: classify, enrich the trip,
// dispatch to the node for the intent and merge its update.
type Orchestrator struct {
	config   *Config
	router   Router
	nodes    map[models.Intent]Node
	geocoder Geocoder
	obs      *observability.Observability
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

// New builds an orchestrator. geocoder and obs may be nil.
func New(config *Config, router Router, nodes map[models.Intent]Node, geocoder Geocoder, obs *observability.Observability, log logger.Logger) *Orchestrator {
	log = log.With(map[string]interface{}{"component": "orchestrator"})
	return &Orchestrator{
		config:   config,
		router:   router,
		nodes:    nodes,
		geocoder: geocoder,
		obs:      obs,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

// Run never returns an error. Failures inside a node surface as the apology
// message with no data.
func (o *Orchestrator) Run(ctx context.Context, state models.AgentState) models.AgentState {
	start := time.Now()
	metrics.RequestsInFlight.WithLabelValues("turn").Inc()
	defer metrics.RequestsInFlight.WithLabelValues("turn").Dec()

	if o.config.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.TurnTimeout)
		defer cancel()
	}

	ctx, span := o.obs.StartSpan(ctx, "turn", attribute.Int("messages", len(state.Messages)))
	defer span.End()

	// Never alias the caller's slice.
	state.Messages = append([]models.Message(nil), state.Messages...)

	classifyCtx, classifySpan := o.obs.StartSpan(ctx, "classify")
	state.Intent = o.router.Classify(classifyCtx, state.Messages)
	classifySpan.SetAttributes(attribute.String("intent", string(state.Intent)))
	classifySpan.End()

	if placesIntents[state.Intent] {
		o.resolveCoordinates(ctx, &state.Trip)
	}

	update, status := o.dispatch(ctx, state)
	state.Apply(update)

	span.SetAttributes(
		attribute.String("intent", string(state.Intent)),
		attribute.String("status", status),
	)
	if status != StatusCompleted {
		span.SetStatus(codes.Error, status)
	}

	o.obs.RecordTurnProcessed(ctx, string(state.Intent), status)
	o.obs.RecordTurnDuration(ctx, time.Since(start), string(state.Intent))
	o.logger.Info("Turn processed", map[string]interface{}{
		"intent":     string(state.Intent),
		"status":     status,
		"hasData":    state.Data != nil,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return state
}

func (o *Orchestrator) dispatch(ctx context.Context, state models.AgentState) (update models.StateUpdate, status string) {
	node, ok := o.nodes[state.Intent]
	if state.Intent == models.IntentUnsupported || !ok {
		return models.NewTextUpdate(UnsupportedMessage), StatusCompleted
	}

	ctx, span := o.obs.StartSpan(ctx, "agent", attribute.String("intent", string(state.Intent)))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("Agent panicked", map[string]interface{}{
				"intent": string(state.Intent),
				"panic":  fmt.Sprint(rec),
				"stack":  string(debug.Stack()),
			})
			err := errors.NewInternalError(fmt.Errorf("panic in %s agent: %v", state.Intent, rec))
			update = models.NewTextUpdate(o.errors.HandleAgentError(string(state.Intent), err))
			status = StatusPanicked
		}
	}()

	update = node.Execute(ctx, state)
	if isApology(update) {
		return update, StatusFailed
	}
	return update, StatusCompleted
}

// resolveCoordinates fills destination coordinates from a text search.
// Failures leave the trip unchanged.
func (o *Orchestrator) resolveCoordinates(ctx context.Context, trip *models.Trip) {
	if !o.config.UseExternalSearch || o.geocoder == nil {
		return
	}
	if !trip.HasDestination() || trip.DestinationCoords != nil {
		return
	}

	ctx, span := o.obs.StartSpan(ctx, "geocode")
	defer span.End()

	coords, err := o.geocoder.Geocode(ctx, trip.DestinationName())
	if err != nil {
		o.logger.Warn("Destination geocoding failed", map[string]interface{}{
			"destination": trip.DestinationName(),
			"error":       err.Error(),
		})
		return
	}
	if coords == nil {
		o.logger.Debug("Destination not found by geocoder", map[string]interface{}{
			"destination": trip.DestinationName(),
		})
		return
	}
	trip.DestinationCoords = coords
}

func isApology(u models.StateUpdate) bool {
	if u.Data != nil || len(u.Messages) == 0 {
		return false
	}
	return u.Messages[len(u.Messages)-1].Content == errors.ApologyMessage
}
