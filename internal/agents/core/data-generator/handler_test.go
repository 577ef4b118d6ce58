package datagenerator

import (
	"context"
	"strings"
	"testing"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm/llmtest"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_FillsNullFieldsAndKeepsKnownOnes(t *testing.T) {
	model := llmtest.NewScriptedModel(llmtest.Text("```json\n" + `[
		{"id":"changed","name":"Park Hyatt Tokyo","address":"3-7-1-2 Nishi Shinjuku","description":"Quiet luxury","rating":4.7,"userRatingsTotal":2100,"priceLevel":"$$$$","amenities":["spa","pool"],"location":{"lat":1,"lng":2},"extra":"dropped"},
		{"id":"changed","name":"Hotel Gracery","address":"Kabukicho","description":"Godzilla on the roof","rating":"not a number","userRatingsTotal":900,"priceLevel":"$$","amenities":["bar"],"location":{"lat":3,"lng":4}}
	]` + "\n```"))
	gen := newTestGenerator(t, model)

	loc := &models.Coordinates{Lat: 35.6892, Lng: 139.6922}
	templates := []models.Hotel{
		{ID: "h1", Location: loc},
		{ID: "h2", Location: loc},
	}

	out, err := Generate(context.Background(), gen, Request[models.Hotel]{
		Data:        templates,
		Context:     map[string]interface{}{"destination": "Tokyo"},
		Description: "hotel options near the traveller's hotel",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "h1", out[0].ID)
	assert.Equal(t, "h2", out[1].ID)
	assert.Equal(t, *loc, *out[0].Location)
	assert.Equal(t, *loc, *out[1].Location)
	require.NotNil(t, out[0].Name)
	assert.Equal(t, "Park Hyatt Tokyo", *out[0].Name)
	require.NotNil(t, out[0].Rating)
	assert.InDelta(t, 4.7, *out[0].Rating, 0.001)
	assert.Equal(t, []string{"spa", "pool"}, out[0].Amenities)

	// A mistyped value is dropped, the rest of the record survives.
	assert.Nil(t, out[1].Rating)
	require.NotNil(t, out[1].Name)
	assert.Equal(t, "Hotel Gracery", *out[1].Name)

	reqs := model.Requests()
	require.Len(t, reqs, 1)
	prompt := reqs[0].Messages[0].Content
	assert.Contains(t, prompt, "hotel")
	assert.Contains(t, prompt, "Tokyo")
	assert.Contains(t, prompt, "name, priceLevel, rating")
	assert.NotContains(t, prompt, "placeId")
}

func TestGenerate_LengthAlwaysMatchesInput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		count  int
	}{
		{"fewer records", `[{"name":"One"}]`, 3},
		{"more records", `[{"name":"One"},{"name":"Two"},{"name":"Three"}]`, 2},
		{"single object", `{"name":"Solo"}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newTestGenerator(t, llmtest.NewScriptedModel(llmtest.Text(tt.output)))

			templates := make([]models.Activity, tt.count)
			for i := range templates {
				templates[i] = models.Activity{ID: string(rune('a' + i))}
			}

			out, err := Generate(context.Background(), gen, Request[models.Activity]{
				Data:        templates,
				Description: "activities",
			})
			require.NoError(t, err)
			require.Len(t, out, tt.count)
			for i := range out {
				assert.Equal(t, templates[i].ID, out[i].ID)
			}
			require.NotNil(t, out[0].Name)
		})
	}
}

func TestGenerate_MalformedOutput(t *testing.T) {
	gen := newTestGenerator(t, llmtest.NewScriptedModel(llmtest.Text("Sure! Here are some hotels.")))

	_, err := Generate(context.Background(), gen, Request[models.Hotel]{
		Data: []models.Hotel{{ID: "h1"}},
	})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedModelOutput))
}

func TestGenerate_EmptyOutputIsMalformed(t *testing.T) {
	for _, output := range []string{`[]`, `null`, `[{}]`, `[{"name":null}]`} {
		t.Run(output, func(t *testing.T) {
			gen := newTestGenerator(t, llmtest.NewScriptedModel(llmtest.Text(output)))

			out, err := Generate(context.Background(), gen, Request[models.Hotel]{
				Data: []models.Hotel{{ID: "h1"}, {ID: "h2"}},
			})

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedModelOutput))
			assert.Nil(t, out)
		})
	}
}

func TestGenerate_ModelErrorPropagates(t *testing.T) {
	modelErr := errors.NewLLMTimeoutError("standard", 0)
	gen := newTestGenerator(t, llmtest.NewScriptedModel(llmtest.Fail(modelErr)))

	_, err := Generate(context.Background(), gen, Request[models.Hotel]{
		Data: []models.Hotel{{ID: "h1"}},
	})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeLLMTimeout))
}

func TestGenerate_NothingToFillSkipsModel(t *testing.T) {
	model := llmtest.NewScriptedModel()
	gen := newTestGenerator(t, model)

	item := models.Tips{
		ID:             "t1",
		Destination:    "Lisbon",
		Transportation: models.StringPtr("Take the metro."),
		Safety:         models.StringPtr("Watch for pickpockets."),
		WhenToVisit:    models.StringPtr("Spring."),
	}

	out, err := GenerateOne(context.Background(), gen, item, nil, "tips")
	require.NoError(t, err)
	assert.Equal(t, item, out)
	assert.Zero(t, model.CallCount())

	empty, err := Generate(context.Background(), gen, Request[models.Tips]{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGenerateOne(t *testing.T) {
	model := llmtest.NewScriptedModel(llmtest.Text(`{"destination":"Somewhere else","transportation":"Trams and ferries.","safety":"Generally safe.","whenToVisit":"May or September."}`))
	gen := newTestGenerator(t, model)

	out, err := GenerateOne(context.Background(), gen, models.Tips{ID: "t1", Destination: "Lisbon"},
		map[string]interface{}{"destination": "Lisbon"}, "travel tips")
	require.NoError(t, err)

	assert.Equal(t, "Lisbon", out.Destination)
	assert.Equal(t, "Trams and ferries.", *out.Transportation)
	assert.True(t, out.Complete())
	assert.True(t, strings.Contains(model.Requests()[0].Messages[0].Content, "safety, transportation, whenToVisit"))
}

// ==== Test Helper Functions ====

func newTestGenerator(t *testing.T, model *llmtest.ScriptedModel) *Generator {
	t.Helper()
	return NewGenerator(LoadConfig(), model, logger.NewTestLogger(t))
}
