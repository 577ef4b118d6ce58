// internal/agents/routing/classify-intent/handler.go
package classifyintent

import (
	"context"
	"fmt"
	"strings"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/models"
)

const (
	TaskType = "classify-intent"
)

const systemPrompt = `You route messages for a travel planning assistant. Read the conversation and decide which specialist handles the user's latest message.

Intents:
- arithmetic: calculations such as splitting costs, adding up a budget or converting amounts
- flights: finding or comparing flights
- hotel: places to stay
- restaurant: places to eat or drink
- activities: things to do, sights, museums, tours, experiences
- nature: parks, hikes, beaches, gardens and other outdoor nature
- selfie: photogenic spots and places to take pictures
- unsupported: anything else

Continuity rules:
1. If the assistant's immediately preceding message asked the user a clarifying question, the user's new message is an answer to it. Keep the intent of that earlier request, whatever the new message contains.
2. Only a completely new, unrelated request starts a new intent.

Reply with ONLY a JSON object: {"intent": "<one of the intents above>"}`

type Handler struct {
	config *Config
	model  llm.ChatModel
	logger logger.Logger
}

func NewHandler(config *Config, loader *llm.Loader, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		model:  loader.Model(llm.TierFast),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Classify never fails. Anything it cannot read is unsupported.
func (h *Handler) Classify(ctx context.Context, messages []models.Message) models.Intent {
	window := models.Tail(messages, h.config.WindowSize)
	if len(window) == 0 {
		return models.IntentUnsupported
	}

	resp, err := h.model.Invoke(ctx, llm.Request{
		System:   systemPrompt,
		Messages: []models.Message{models.NewHumanMessage(h.renderWindow(window))},
		JSONMode: true,
	})
	if err != nil {
		h.logger.Warn("Intent classification failed", map[string]interface{}{
			"errorCode": string(errors.CodeOf(err)),
			"error":     err.Error(),
		})
		metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeError).Inc()
		return models.IntentUnsupported
	}

	var out classifierOutput
	if err := llm.DecodeJSON(resp.Content, &out); err != nil {
		h.logger.Warn("Intent reply was not JSON", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeError).Inc()
		return models.IntentUnsupported
	}

	intent := models.ParseIntent(out.Intent)
	metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeSuccess).Inc()
	h.logger.Info("Intent classified", map[string]interface{}{
		"intent": string(intent),
		"raw":    out.Intent,
		"window": len(window),
	})
	return intent
}

// renderWindow writes the conversation as a transcript. Tool results are
// shortened and tool-call payloads are left out.
func (h *Handler) renderWindow(window []models.Message) string {
	var b strings.Builder
	b.WriteString("Conversation (oldest first):\n")
	for _, m := range window {
		switch m.Type {
		case models.MessageHuman:
			fmt.Fprintf(&b, "User: %s\n", m.Content)
		case models.MessageAI:
			content := strings.TrimSpace(m.Content)
			if content == "" && m.HasToolCalls() {
				names := make([]string, len(m.ToolCalls))
				for i, c := range m.ToolCalls {
					names[i] = c.Name
				}
				content = fmt.Sprintf("(used tools: %s)", strings.Join(names, ", "))
			}
			fmt.Fprintf(&b, "Assistant: %s\n", content)
		case models.MessageTool:
			fmt.Fprintf(&b, "Tool %s returned: %s\n", m.Name, preview(m.Content, h.config.ToolPreviewChars))
		}
	}
	b.WriteString("\nClassify the user's latest message.")
	return b.String()
}

func preview(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
