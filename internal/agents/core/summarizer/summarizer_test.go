package summarizer

import (
	"context"
	"testing"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	model := llmtest.NewScriptedModel(llmtest.Text("  Two direct flights leave Lisbon in the morning.  "))
	s := New(model)

	summary, err := s.Summarize(context.Background(), "flights", []map[string]string{{"id": "1", "price": "120.00"}})
	require.NoError(t, err)
	assert.Equal(t, "Two direct flights leave Lisbon in the morning.", summary)

	prompt := model.Requests()[0].Messages[0].Content
	assert.Contains(t, prompt, "Result type: flights")
	assert.Contains(t, prompt, `"price":"120.00"`)
}

func TestSummarize_EmptyReply(t *testing.T) {
	s := New(llmtest.NewScriptedModel(llmtest.Text("   ")))

	_, err := s.SummarizeJSON(context.Background(), "hotels", "[]")

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedModelOutput))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "Here are 5 hotel options for you. Take a look at the details below.", Placeholder("hotel", 5))
}
