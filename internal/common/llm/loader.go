package llm

import (
	"context"
	"fmt"

	"travel-agents/internal/common/config"
	"travel-agents/internal/common/errors"
	httpclient "travel-agents/internal/common/http"
	"travel-agents/internal/common/logger"
)

// Loader holds one ready ChatModel per tier. All tiers are built up front so
// a bad configuration fails at startup rather than on the first request.
type Loader struct {
	models map[Tier]ChatModel
}

// NewLoader builds and instruments a model for every configured tier.
func NewLoader(ctx context.Context, cfg *config.Config, log logger.Logger) (*Loader, error) {
	timeout := config.GetDuration(cfg.APIs.LLM.Timeout)
	client := httpclient.NewClient(timeout)

	specs := map[Tier]config.ModelSpec{
		TierFast:     cfg.Models.Fast,
		TierStandard: cfg.Models.Standard,
		TierSmart:    cfg.Models.Smart,
	}

	loaded := make(map[Tier]ChatModel, len(specs))
	for tier, spec := range specs {
		var model ChatModel
		switch spec.Company {
		case "openai":
			if cfg.Providers.OpenAI.APIKey == "" {
				return nil, errors.NewConfigurationInvalidError(fmt.Sprintf("tier %s: OPENAI_API_KEY is not set", tier))
			}
			model = NewOpenAIModel(cfg.Providers.OpenAI.BaseURL, cfg.Providers.OpenAI.APIKey, spec.Name, spec.Temperature, client)
		case "google":
			if cfg.Providers.Google.APIKey == "" {
				return nil, errors.NewConfigurationInvalidError(fmt.Sprintf("tier %s: GOOGLE_API_KEY is not set", tier))
			}
			gm, err := NewGeminiModel(ctx, cfg.Providers.Google.APIKey, spec.Name, spec.Temperature, client.HTTPClient())
			if err != nil {
				return nil, errors.NewConfigurationInvalidError(fmt.Sprintf("tier %s: %v", tier, err))
			}
			model = gm
		default:
			return nil, errors.NewConfigurationInvalidError(fmt.Sprintf("tier %s: unsupported model company %q", tier, spec.Company))
		}

		log.Info("Model tier loaded", map[string]interface{}{
			"tier":    string(tier),
			"company": spec.Company,
			"model":   spec.Name,
		})
		loaded[tier] = Instrument(tier, model, timeout, log)
	}

	return &Loader{models: loaded}, nil
}

// NewStaticLoader wraps prebuilt models, typically fakes in tests.
func NewStaticLoader(models map[Tier]ChatModel) *Loader {
	return &Loader{models: models}
}

// Model returns the model for tier. It panics on an unknown tier, which is a
// programming error.
func (l *Loader) Model(tier Tier) ChatModel {
	m, ok := l.models[tier]
	if !ok {
		panic(fmt.Sprintf("llm: no model loaded for tier %q", tier))
	}
	return m
}
