package placesagent

import (
	"context"
	"fmt"
	"sync"
	"testing"

	datagenerator "travel-agents/internal/agents/core/data-generator"
	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/llm/llmtest"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/places"
	"travel-agents/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokyoHotel  = &models.Coordinates{Lat: 35.6892, Lng: 139.6922}
	tokyoCenter = &models.Coordinates{Lat: 35.6762, Lng: 139.6503}
)

func TestHotelAgent_UsesNearbySearchWithHotelCoordinates(t *testing.T) {
	rating := 4.6
	searcher := &fakePlaces{results: []models.Place{
		{PlaceID: "p1", Name: "Park Hyatt Tokyo", Address: "3-7-1-2 Nishi Shinjuku", Rating: &rating, Location: tokyoHotel},
		{PlaceID: "p2", Name: "Keio Plaza", Address: "2-2-1 Nishi Shinjuku"},
	}}
	standard := llmtest.NewScriptedModel()
	fast := llmtest.NewScriptedModel(llmtest.Text("Two hotels close to where you are staying."))
	agent := NewHotelAgent(&Config{UseExternalSearch: true, GenerateSummaries: true}, testDeps(t, fast, standard, searcher), logger.NewTestLogger(t))

	update := agent.Execute(context.Background(), models.AgentState{
		Trip: models.Trip{
			Destination:       models.StringPtr("Tokyo"),
			DestinationCoords: tokyoCenter,
			HotelCoords:       tokyoHotel,
		},
	})

	require.Len(t, searcher.requests, 1)
	assert.Equal(t, places.NearbyRequest{Type: "hotel", Latitude: 35.6892, Longitude: 139.6922}, searcher.requests[0])
	assert.Zero(t, standard.CallCount(), "generator must not run")

	results, ok := update.Data.(*models.HotelResults)
	require.True(t, ok)
	assert.Equal(t, models.ResultHotels, results.Type)
	require.Len(t, results.Options, 2)
	assert.Equal(t, "Park Hyatt Tokyo", *results.Options[0].Name)
	assert.Equal(t, "p1", *results.Options[0].PlaceID)
	assert.InDelta(t, 4.6, *results.Options[0].Rating, 0.001)
	assert.Equal(t, "Two hotels close to where you are staying.", results.Summary)
	require.Len(t, update.Messages, 1)
	assert.Equal(t, results.Summary, update.Messages[0].Content)
}

func TestHotelAgent_GeneratesFiveTemplates(t *testing.T) {
	standard := llmtest.NewScriptedModel()
	standard.Handler = func(req llm.Request) (*llm.Response, error) {
		return &llm.Response{Content: `[{"name":"A"},{"name":"B"},{"name":"C"},{"name":"D"},{"name":"E"}]`}, nil
	}
	fast := llmtest.NewScriptedModel()
	agent := NewHotelAgent(&Config{UseExternalSearch: false, GenerateSummaries: false}, testDeps(t, fast, standard, nil), logger.NewTestLogger(t))

	update := agent.Execute(context.Background(), models.AgentState{
		Trip: models.Trip{Destination: models.StringPtr("Tokyo"), HotelCoords: tokyoHotel},
	})

	results, ok := update.Data.(*models.HotelResults)
	require.True(t, ok)
	require.Len(t, results.Options, 5)
	seen := map[string]bool{}
	for _, h := range results.Options {
		_, err := uuid.Parse(h.ID)
		require.NoError(t, err)
		seen[h.ID] = true
		assert.Nil(t, h.PlaceID)
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, "Here are 5 hotel options for you. Take a look at the details below.", results.Summary)
	assert.Zero(t, fast.CallCount())

	require.Equal(t, 1, standard.CallCount())
	prompt := standard.Requests()[0].Messages[0].Content
	assert.Contains(t, prompt, "hotel")
	assert.Contains(t, prompt, `"destination": "Tokyo"`)
	assert.Contains(t, prompt, "Records (5)")
}

func TestAgents_TemplateCountsAndCoordinatePreference(t *testing.T) {
	tests := []struct {
		name      string
		build     func(*Config, Dependencies, logger.Logger) executor
		count     int
		placeType string
		wantLat   float64
	}{
		{"hotel", func(c *Config, d Dependencies, l logger.Logger) executor {
			return NewHotelAgent(c, d, l)
		}, 5, "hotel", tokyoHotel.Lat},
		{"restaurant", func(c *Config, d Dependencies, l logger.Logger) executor {
			return NewRestaurantAgent(c, d, l)
		}, 6, "restaurant", tokyoHotel.Lat},
		{"activities", func(c *Config, d Dependencies, l logger.Logger) executor {
			return NewActivitiesAgent(c, d, l)
		}, 8, "activities", tokyoCenter.Lat},
		{"nature", func(c *Config, d Dependencies, l logger.Logger) executor {
			return NewNatureAgent(c, d, l)
		}, 4, "nature", tokyoCenter.Lat},
		{"selfie", func(c *Config, d Dependencies, l logger.Logger) executor {
			return NewSelfieAgent(c, d, l)
		}, 3, "selfie", tokyoCenter.Lat},
	}

	trip := models.Trip{Destination: models.StringPtr("Tokyo"), DestinationCoords: tokyoCenter, HotelCoords: tokyoHotel}

	for _, tt := range tests {
		t.Run(tt.name+" generator", func(t *testing.T) {
			standard := llmtest.NewScriptedModel(llmtest.Text(`[{"name":"Somewhere"}]`))
			agent := tt.build(&Config{}, testDeps(t, llmtest.NewScriptedModel(), standard, nil), logger.NewTestLogger(t))

			update := agent.Execute(context.Background(), models.AgentState{Trip: trip})

			require.NotNil(t, update.Data)
			assert.Equal(t, models.ResultType(resultTypeFor(tt.name)), update.Data.ResultType())
			assert.Contains(t, standard.Requests()[0].Messages[0].Content, fmt.Sprintf("Records (%d)", tt.count))
		})

		t.Run(tt.name+" nearby", func(t *testing.T) {
			searcher := &fakePlaces{results: []models.Place{{PlaceID: "p1", Name: "Somewhere"}}}
			agent := tt.build(&Config{UseExternalSearch: true}, testDeps(t, llmtest.NewScriptedModel(), llmtest.NewScriptedModel(), searcher), logger.NewTestLogger(t))

			agent.Execute(context.Background(), models.AgentState{Trip: trip})

			require.Len(t, searcher.requests, 1)
			assert.Equal(t, tt.placeType, searcher.requests[0].Type)
			assert.Equal(t, tt.wantLat, searcher.requests[0].Latitude)
		})
	}
}

func TestAgent_FallsBackToDestinationCoordinates(t *testing.T) {
	searcher := &fakePlaces{results: []models.Place{{PlaceID: "p1", Name: "Sushi Dai"}}}
	agent := NewRestaurantAgent(&Config{UseExternalSearch: true}, testDeps(t, llmtest.NewScriptedModel(), llmtest.NewScriptedModel(), searcher), logger.NewTestLogger(t))

	agent.Execute(context.Background(), models.AgentState{
		Trip: models.Trip{Destination: models.StringPtr("Tokyo"), DestinationCoords: tokyoCenter},
	})

	require.Len(t, searcher.requests, 1)
	assert.Equal(t, tokyoCenter.Lat, searcher.requests[0].Latitude)
}

func TestAgent_EmptyNearbyResultsSkipGenerator(t *testing.T) {
	searcher := &fakePlaces{}
	standard := llmtest.NewScriptedModel()
	agent := NewActivitiesAgent(&Config{UseExternalSearch: true}, testDeps(t, llmtest.NewScriptedModel(), standard, searcher), logger.NewTestLogger(t))

	update := agent.Execute(context.Background(), models.AgentState{
		Trip: models.Trip{Destination: models.StringPtr("Tokyo"), DestinationCoords: tokyoCenter},
	})

	require.Len(t, searcher.requests, 1)
	assert.Zero(t, standard.CallCount(), "generator must not run")
	results, ok := update.Data.(*models.ActivityResults)
	require.True(t, ok)
	assert.Empty(t, results.Options)
	require.Len(t, update.Messages, 1)
	assert.Equal(t, results.Summary, update.Messages[0].Content)
}

func TestAgent_EmptyGeneratorOutputBecomesApology(t *testing.T) {
	for _, output := range []string{`[]`, `null`} {
		t.Run(output, func(t *testing.T) {
			standard := llmtest.NewScriptedModel(llmtest.Text(output))
			agent := NewHotelAgent(&Config{}, testDeps(t, llmtest.NewScriptedModel(), standard, nil), logger.NewTestLogger(t))

			update := agent.Execute(context.Background(), models.AgentState{
				Trip: models.Trip{Destination: models.StringPtr("Tokyo"), HotelCoords: tokyoHotel},
			})

			require.Len(t, update.Messages, 1)
			assert.Equal(t, errors.ApologyMessage, update.Messages[0].Content)
			assert.Nil(t, update.Data)
			assert.Equal(t, 1, standard.CallCount())
		})
	}
}

func TestAgent_AsksForDestination(t *testing.T) {
	fast := llmtest.NewScriptedModel(llmtest.Text("Which city are you visiting?"))
	standard := llmtest.NewScriptedModel()
	agent := NewHotelAgent(LoadConfig(), testDeps(t, fast, standard, nil), logger.NewTestLogger(t))

	update := agent.Execute(context.Background(), models.AgentState{
		Messages: []models.Message{models.NewHumanMessage("find me a hotel")},
	})

	require.Len(t, update.Messages, 1)
	assert.Equal(t, "Which city are you visiting?", update.Messages[0].Content)
	assert.Nil(t, update.Data)
	assert.Zero(t, standard.CallCount())
	assert.Contains(t, fast.Requests()[0].System, "hotel")
}

func TestAgent_FailuresBecomeApology(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		fast     *llmtest.ScriptedModel
		standard *llmtest.ScriptedModel
		places   *fakePlaces
	}{
		{
			name:     "places error",
			config:   &Config{UseExternalSearch: true},
			fast:     llmtest.NewScriptedModel(),
			standard: llmtest.NewScriptedModel(),
			places:   &fakePlaces{err: errors.NewPlacesSearchFailedError("hotel", fmt.Errorf("403"))},
		},
		{
			name:     "generator garbage",
			config:   &Config{},
			fast:     llmtest.NewScriptedModel(),
			standard: llmtest.NewScriptedModel(llmtest.Text("I cannot help with that")),
		},
		{
			name:     "summary failure",
			config:   &Config{GenerateSummaries: true},
			fast:     llmtest.NewScriptedModel(llmtest.Fail(errors.NewLLMInvocationFailedError("fast", fmt.Errorf("429")))),
			standard: llmtest.NewScriptedModel(llmtest.Text(`[{"name":"Hotel Gracery"}]`)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var searcher Searcher
			if tt.places != nil {
				searcher = tt.places
			}
			deps := Dependencies{
				Loader:    llmtest.Loader(tt.fast, tt.standard, tt.standard),
				Generator: datagenerator.NewGenerator(datagenerator.LoadConfig(), tt.standard, logger.NewTestLogger(t)),
				Places:    searcher,
			}
			agent := NewHotelAgent(tt.config, deps, logger.NewTestLogger(t))

			update := agent.Execute(context.Background(), models.AgentState{
				Trip: models.Trip{Destination: models.StringPtr("Tokyo"), HotelCoords: tokyoHotel},
			})

			require.Len(t, update.Messages, 1)
			assert.Equal(t, errors.ApologyMessage, update.Messages[0].Content)
			assert.Nil(t, update.Data)
		})
	}
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Art gallery", humanize("art_gallery"))
	assert.Equal(t, "", humanize(""))
	assert.Equal(t, "Japanese", cuisineOf("japanese_restaurant"))
	assert.Equal(t, "", cuisineOf("restaurant"))
}

// ==== Test Helper Functions ====

type executor interface {
	Execute(ctx context.Context, state models.AgentState) models.StateUpdate
}

type fakePlaces struct {
	mu       sync.Mutex
	results  []models.Place
	err      error
	requests []places.NearbyRequest
}

func (f *fakePlaces) SearchNearby(ctx context.Context, req places.NearbyRequest) ([]models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.results, f.err
}

func testDeps(t *testing.T, fast, standard *llmtest.ScriptedModel, searcher *fakePlaces) Dependencies {
	t.Helper()
	deps := Dependencies{
		Loader:    llmtest.Loader(fast, standard, standard),
		Generator: datagenerator.NewGenerator(datagenerator.LoadConfig(), standard, logger.NewTestLogger(t)),
	}
	if searcher != nil {
		deps.Places = searcher
	}
	return deps
}

func resultTypeFor(name string) string {
	switch name {
	case "hotel":
		return "hotels"
	case "restaurant":
		return "restaurants"
	default:
		return name
	}
}
