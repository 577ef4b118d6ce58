package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"travel-agents/internal/common/config"
	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm/llmtest"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/models"
	"travel-agents/internal/orchestrator"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_WiresTurnPipeline(t *testing.T) {
	model := llmtest.NewScriptedModel(llmtest.Text(`{"intent": "unsupported"}`))
	a, err := build(testConfig(), llmtest.Loader(model, model, model), logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	assert.NoError(t, a.Ready(context.Background()))
	require.NotNil(t, a.Catalog)
	_, ok := a.Catalog.ByIntent(string(models.IntentFlights))
	assert.True(t, ok)

	out := a.Orchestrator.Run(context.Background(), models.AgentState{
		Messages: []models.Message{models.NewHumanMessage("Tell me a joke")},
	})
	assert.Equal(t, models.IntentUnsupported, out.Intent)
	assert.Equal(t, orchestrator.UnsupportedMessage, out.Messages[len(out.Messages)-1].Content)
	assert.Equal(t, 1, model.CallCount())
}

func TestBuild_TipsCacheUsesRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Features.TipsCache.Enabled = true
	cfg.Database.Redis.Address = mr.Addr()

	model := llmtest.NewScriptedModel()
	a, err := build(cfg, llmtest.Loader(model, model, model), logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Redis)
	assert.NoError(t, a.Ready(context.Background()))

	mr.Close()
	assert.Error(t, a.Ready(context.Background()))
}

func TestNew_RejectsUnknownModelCompany(t *testing.T) {
	cfg := testConfig()
	cfg.Models.Smart.Company = "unknown"

	_, err := New(context.Background(), cfg, logger.NewTestLogger(t))

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigurationInvalid))
}

func TestLoadCatalog(t *testing.T) {
	t.Run("built in", func(t *testing.T) {
		catalog, err := loadCatalog("")
		require.NoError(t, err)
		assert.NotEmpty(t, catalog.Agents)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadCatalog(filepath.Join(t.TempDir(), "agents.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load agent registry")
	})

	t.Run("intent without agent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "agents.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"version": "1.0.0",
			"agents": [{"id": "arithmetic", "displayName": "Calc", "category": "travel", "taskType": "arithmetic", "intent": "arithmetic"}]
		}`), 0644))

		_, err := loadCatalog(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no agent registered for intent flights")
	})
}

// ==== Test Helper Functions ====

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "travel-agents-test"
	spec := config.ModelSpec{Company: "openai", Name: "test-model"}
	cfg.Models = config.ModelsConfig{Fast: spec, Standard: spec, Smart: spec}
	cfg.Providers.OpenAI.BaseURL = "http://127.0.0.1:1"
	cfg.Providers.OpenAI.APIKey = "sk-test"
	cfg.APIs.LLM.Timeout = 1000
	cfg.APIs.Amadeus.BaseURL = "http://127.0.0.1:1"
	cfg.APIs.Amadeus.ClientID = "id"
	cfg.APIs.Amadeus.ClientSecret = "secret"
	cfg.APIs.Amadeus.Timeout = 1000
	cfg.APIs.Wikipedia.BaseURL = "http://127.0.0.1:1"
	cfg.APIs.Wikipedia.Timeout = 1000
	cfg.Agents.MaxToolIterations = 6
	cfg.Agents.TurnTimeout = 5000
	cfg.Agents.TipsTimeout = 5000
	cfg.Features.TipsCache.TTL = 60000
	return cfg
}
