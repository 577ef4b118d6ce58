package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"travel-agents/internal/models"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// GeminiModel calls Google's Gemini API through the genai SDK.
type GeminiModel struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiModel(ctx context.Context, apiKey, model string, temperature float64, httpClient *http.Client) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiModel{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

func (m *GeminiModel) Invoke(ctx context.Context, req Request) (*Response, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(m.temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 tool.Name,
				Description:          tool.Description,
				ParametersJsonSchema: tool.Parameters.ToMap(),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	} else if req.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}

	res, err := m.client.Models.GenerateContent(ctx, m.model, toGeminiContents(req.Messages), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	out := &Response{Content: res.Text()}
	for _, call := range res.FunctionCalls() {
		id := call.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{
			ID:   id,
			Name: call.Name,
			Args: call.Args,
		})
	}
	return out, nil
}

// toGeminiContents maps the conversation to Gemini turns. Consecutive tool
// results are folded into one user turn, which is how the API expects
// parallel function responses.
func toGeminiContents(messages []models.Message) []*genai.Content {
	var contents []*genai.Content
	var pending []*genai.Part

	flush := func() {
		if len(pending) > 0 {
			contents = append(contents, genai.NewContentFromParts(pending, genai.RoleUser))
			pending = nil
		}
	}

	for _, m := range messages {
		switch m.Type {
		case models.MessageHuman:
			flush()
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case models.MessageAI:
			flush()
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, call := range m.ToolCalls {
				parts = append(parts, genai.NewPartFromFunctionCall(call.Name, call.Args))
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
		case models.MessageTool:
			pending = append(pending, genai.NewPartFromFunctionResponse(m.Name, toolResponse(m.Content)))
		}
	}
	flush()
	return contents
}

// toolResponse wraps a tool's JSON payload in the object Gemini requires.
func toolResponse(content string) map[string]any {
	var decoded any
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return map[string]any{"output": content}
	}
	if obj, ok := decoded.(map[string]any); ok {
		if _, isErr := obj["error"]; isErr {
			return obj
		}
	}
	return map[string]any{"output": decoded}
}
