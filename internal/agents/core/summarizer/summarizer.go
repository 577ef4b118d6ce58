// Package summarizer writes the short chat reply that accompanies structured results.
package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
)

const systemPrompt = `You write the chat reply that accompanies search results in a travel planning app.
The results are shown to the user as cards next to your reply.
Write 2 to 4 friendly sentences that highlight what stands out in the results.
Use ONLY facts present in the JSON you are given. Never invent names, prices, times or ratings.
Do not use Markdown lists or headings.`

// Placeholder returns the fixed reply used when summaries are turned off.
func Placeholder(kind string, count int) string {
	return fmt.Sprintf("Here are %d %s options for you. Take a look at the details below.", count, kind)
}

type Summarizer struct {
	model llm.ChatModel
}

func New(model llm.ChatModel) *Summarizer {
	return &Summarizer{model: model}
}

// Summarize describes results, which must marshal to JSON.
func (s *Summarizer) Summarize(ctx context.Context, kind string, results interface{}) (string, error) {
	raw, err := json.Marshal(results)
	if err != nil {
		return "", errors.NewInternalError(fmt.Errorf("marshal %s results: %w", kind, err))
	}
	return s.SummarizeJSON(ctx, kind, string(raw))
}

// SummarizeJSON is Summarize for results that are already JSON text.
func (s *Summarizer) SummarizeJSON(ctx context.Context, kind, resultsJSON string) (string, error) {
	prompt := fmt.Sprintf("Result type: %s\n\nResults JSON:\n%s", kind, resultsJSON)

	resp, err := s.model.Invoke(ctx, llm.Prompt(systemPrompt, prompt))
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", errors.NewMalformedModelOutputError("empty summary")
	}
	return summary, nil
}
