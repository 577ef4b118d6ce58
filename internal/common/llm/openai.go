package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	httpclient "travel-agents/internal/common/http"
	"travel-agents/internal/models"
)

// OpenAIModel talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIModel struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *httpclient.Client
}

func NewOpenAIModel(baseURL, apiKey, model string, temperature float64, client *httpclient.Client) *OpenAIModel {
	return &OpenAIModel{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		client:      client,
	}
}

func (m *OpenAIModel) Invoke(ctx context.Context, req Request) (*Response, error) {
	payload := openAIChatRequest{
		Model:       m.model,
		Messages:    toOpenAIMessages(req),
		Temperature: m.temperature,
	}
	for _, tool := range req.Tools {
		payload.Tools = append(payload.Tools, openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters.ToMap(),
			},
		})
	}
	if req.JSONMode && len(req.Tools) == 0 {
		payload.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)

	var resp openAIChatResponse
	if err := m.client.DoJSON(ctx, httpReq, &resp); err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	msg := resp.Choices[0].Message
	out := &Response{Content: msg.Content}
	for _, call := range msg.ToolCalls {
		var args map[string]interface{}
		if strings.TrimSpace(call.Function.Arguments) != "" {
			// Unparseable arguments are left nil and rejected by schema validation.
			_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
		}
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{
			ID:   call.ID,
			Name: call.Function.Name,
			Args: args,
		})
	}
	return out, nil
}

func toOpenAIMessages(req Request) []openAIMessage {
	msgs := make([]openAIMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openAIMessage{Role: "system", Content: req.System})
	}

	for _, m := range req.Messages {
		switch m.Type {
		case models.MessageHuman:
			msgs = append(msgs, openAIMessage{Role: "user", Content: m.Content})
		case models.MessageAI:
			out := openAIMessage{Role: "assistant", Content: m.Content}
			for _, call := range m.ToolCalls {
				args, _ := json.Marshal(call.Args)
				out.ToolCalls = append(out.ToolCalls, openAIToolCall{
					ID:   call.ID,
					Type: "function",
					Function: openAIFunctionCall{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
			msgs = append(msgs, out)
		case models.MessageTool:
			msgs = append(msgs, openAIMessage{
				Role:       "tool",
				Content:    m.Content,
				ToolCallID: m.ToolCallID,
				Name:       m.Name,
			})
		}
	}
	return msgs
}

// OpenAI API types
type openAIChatRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	Temperature    float64               `json:"temperature"`
	Tools          []openAITool          `json:"tools,omitempty"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Name       string           `json:"name,omitempty"`
}

type openAIToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openAIFunctionCall `json:"function"`
}

type openAIFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openAIChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int           `json:"index"`
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
}
