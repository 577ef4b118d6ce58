// internal/agents/travel/flight-search/handler.go
package flightsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	toolloop "travel-agents/internal/agents/core/tool-loop"
	"travel-agents/internal/agents/core/summarizer"
	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/flights"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/common/validation"
	"travel-agents/internal/models"
)

const (
	TaskType = "flight-search"
	ToolName = "search_flights"
)

var (
	iataPattern = "^[A-Za-z]{3}$"
	datePattern = `^\d{4}-\d{2}-\d{2}$`
)

type Handler struct {
	config     *Config
	runner     *toolloop.Runner
	summarizer *summarizer.Summarizer
	searcher   Searcher
	errors     *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, loader *llm.Loader, searcher Searcher, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		runner:     toolloop.NewRunner(&toolloop.Config{MaxIterations: config.MaxToolIterations}, loader.Model(llm.TierSmart), log),
		summarizer: summarizer.New(loader.Model(llm.TierFast)),
		searcher:   searcher,
		errors:     errors.NewErrorHandler(log),
		logger:     log,
	}
}

// Execute runs one flight turn. It never fails: errors become the apology.
func (h *Handler) Execute(ctx context.Context, state models.AgentState) models.StateUpdate {
	start := time.Now()
	defer func() {
		metrics.AgentRunDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	update, err := h.execute(ctx, state)
	if err != nil {
		return models.NewTextUpdate(h.errors.HandleAgentError(TaskType, err))
	}
	return update
}

func (h *Handler) execute(ctx context.Context, state models.AgentState) (models.StateUpdate, error) {
	system, err := h.buildSystemPrompt(state.Trip)
	if err != nil {
		return models.StateUpdate{}, errors.NewInternalError(err)
	}

	outcome, err := h.runner.Run(ctx, toolloop.Input{
		System:   system,
		Messages: state.Messages,
		Tools:    []toolloop.Tool{h.searchTool()},
	})
	if err != nil {
		return models.StateUpdate{}, err
	}

	if !outcome.ToolCalled {
		metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeClarification).Inc()
		h.logger.Info("Asked for missing flight details", map[string]interface{}{
			"missing": state.Trip.MissingFlightFields(),
		})
		return models.StateUpdate{Messages: outcome.Messages}, nil
	}

	if !toolloop.NonEmptyArray(outcome.LastToolOutput) {
		return models.StateUpdate{}, errors.NewToolExecutionFailedError(ToolName, fmt.Errorf("no flight offers in tool output"))
	}

	var options []models.FlightOption
	if err := json.Unmarshal([]byte(outcome.LastToolOutput), &options); err != nil {
		return models.StateUpdate{}, errors.NewMalformedModelOutputError(fmt.Sprintf("flight tool output: %v", err))
	}

	summary, err := h.summarize(ctx, outcome.LastToolOutput, len(options))
	if err != nil {
		return models.StateUpdate{}, err
	}

	// The loop's closing message is replaced by the summary.
	messages := append(outcome.Messages[:len(outcome.Messages)-1:len(outcome.Messages)-1], models.NewAIMessage(summary))

	metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeSuccess).Inc()
	h.logger.Info("Flight options found", map[string]interface{}{
		"count": len(options),
	})

	return models.StateUpdate{
		Messages: messages,
		Data:     models.NewFlightResults(summary, options),
	}, nil
}

// summarize never reuses the loop's closing text, which is not bound to
// the tool output.
func (h *Handler) summarize(ctx context.Context, toolOutput string, count int) (string, error) {
	if h.config.GenerateSummaries {
		return h.summarizer.SummarizeJSON(ctx, "flights", toolOutput)
	}
	return summarizer.Placeholder("flight", count), nil
}

func (h *Handler) searchTool() toolloop.Tool {
	return &toolloop.FuncTool{
		ToolName:        ToolName,
		ToolDescription: "Search bookable flight offers. Airports and cities must be given as 3-letter IATA codes and dates as YYYY-MM-DD.",
		Schema: validation.Object(map[string]validation.Property{
			"origin":        {Type: "string", Description: "IATA code of the departure city or airport", Pattern: &iataPattern},
			"destination":   {Type: "string", Description: "IATA code of the arrival city or airport", Pattern: &iataPattern},
			"departureDate": {Type: "string", Description: "Outbound date, YYYY-MM-DD", Pattern: &datePattern},
			"returnDate":    {Type: "string", Description: "Return date for round trips, YYYY-MM-DD", Pattern: &datePattern},
			"airline":       {Type: "string", Description: "Optional 2-letter IATA airline code to restrict results"},
		}, "origin", "destination", "departureDate"),
		Fn: h.callSearch,
	}
}

func (h *Handler) callSearch(ctx context.Context, raw map[string]interface{}) (interface{}, error) {
	var args searchArgs
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(encoded, &args); err != nil {
		return nil, &toolloop.UserSafeError{Msg: "arguments have the wrong types"}
	}

	options, err := h.searcher.Search(ctx, flights.SearchParams{
		Origin:        strings.ToUpper(args.Origin),
		Destination:   strings.ToUpper(args.Destination),
		DepartureDate: args.DepartureDate,
		ReturnDate:    args.ReturnDate,
		AirlineFilter: args.Airline,
	})
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = []models.FlightOption{}
	}
	return options, nil
}

func (h *Handler) buildSystemPrompt(trip models.Trip) (string, error) {
	tripJSON, err := json.MarshalIndent(trip.Context(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal trip: %w", err)
	}

	parts := []string{
		"You are the flight specialist of a travel planning assistant.",
		fmt.Sprintf("Today is %s.", h.config.Now().Format("2006-01-02 (Monday)")),
		"Known trip details:\n" + string(tripJSON),
	}

	if missing := trip.MissingFlightFields(); len(missing) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Not yet known from the trip: %s. Check the conversation for them first. If any is still unknown, ask the user ONE short question for what is missing and do not call any tool.",
			strings.Join(missing, ", ")))
	}

	parts = append(parts,
		"When origin, destination and departure date are known, call "+ToolName+" once. Convert city names to IATA codes and relative dates to YYYY-MM-DD.",
		"If the tool returns an error, either fix the arguments and retry or explain briefly that no flights could be found.",
		"Never invent flights, prices or schedules.",
	)

	return strings.Join(parts, "\n\n"), nil
}
