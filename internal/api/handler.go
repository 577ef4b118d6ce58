// internal/api/handler.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/common/validation"
	"travel-agents/internal/models"
	"travel-agents/pkg/registry"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	turns   TurnRunner
	tips    TipsProvider
	catalog *registry.AgentRegistry
	ready   ReadinessFunc
	logger  logger.Logger
}

// NewHandler builds the HTTP surface. catalog and ready may be nil.
func NewHandler(turns TurnRunner, tips TipsProvider, catalog *registry.AgentRegistry, ready ReadinessFunc, log logger.Logger) *Handler {
	return &Handler{
		turns:   turns,
		tips:    tips,
		catalog: catalog,
		ready:   ready,
		logger:  log.With(map[string]interface{}{"component": "api"}),
	}
}

func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.instrument)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", h.chat).Methods(http.MethodPost)
	api.HandleFunc("/tips", h.destinationTips).Methods(http.MethodPost)
	api.HandleFunc("/agents", h.listAgents).Methods(http.MethodGet)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.readiness).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeValidated(r, chatSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	out := h.turns.Run(r.Context(), models.AgentState{
		Messages: conversation(req.Messages),
		Trip:     req.Trip,
	})

	writeJSON(w, http.StatusOK, ChatResponse{
		Messages: visibleMessages(out.Messages),
		Data:     out.Data,
		Trip:     out.Trip,
	})
}

func (h *Handler) destinationTips(w http.ResponseWriter, r *http.Request) {
	var req TipsRequest
	if err := decodeValidated(r, tipsSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Trip.HasDestination() {
		writeError(w, http.StatusBadRequest, "trip.destination is required")
		return
	}

	writeJSON(w, http.StatusOK, TipsResponse{
		Data: h.tips.Execute(r.Context(), req.Trip),
		Trip: req.Trip,
	})
}

func (h *Handler) listAgents(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeJSON(w, http.StatusOK, registry.AgentRegistry{Agents: []registry.Agent{}})
		return
	}
	writeJSON(w, http.StatusOK, h.catalog)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			h.logger.Warn("Readiness check failed", map[string]interface{}{"error": err.Error()})
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "not ready",
				Time:   time.Now().Format(time.RFC3339),
				Error:  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ready",
		Time:   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		metrics.RequestsInFlight.WithLabelValues(route).Inc()
		defer metrics.RequestsInFlight.WithLabelValues(route).Dec()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if route == "/health" || route == "/ready" || route == "/metrics" {
			return
		}
		h.logger.Info("Request served", map[string]interface{}{
			"method":     r.Method,
			"route":      route,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
		})
	})
}

// conversation keeps only the type and text of each incoming message.
// Tool calls never come from the client.
func conversation(messages []models.Message) []models.Message {
	out := make([]models.Message, len(messages))
	for i, m := range messages {
		if m.Type == models.MessageAI {
			out[i] = models.NewAIMessage(m.Content)
		} else {
			out[i] = models.NewHumanMessage(m.Content)
		}
	}
	return out
}

// visibleMessages drops tool results and AI messages with no text, which
// only carried tool calls.
func visibleMessages(messages []models.Message) []models.Message {
	out := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.Type == models.MessageTool {
			continue
		}
		if m.Type == models.MessageAI && strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, models.Message{Type: m.Type, Content: m.Content})
	}
	return out
}

// decodeValidated checks the body against schema before decoding it into out.
// Top-level nulls are treated as absent.
func decodeValidated(r *http.Request, schema validation.JSONSchema, out interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	for k, v := range raw {
		if v == nil {
			delete(raw, k)
		}
	}

	if result := validation.ValidateInput(raw, schema); !result.Valid {
		return fmt.Errorf("invalid request: %s", result.Error())
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
