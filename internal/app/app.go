// internal/app/app.go
package app

import (
	"context"
	"fmt"

	destinationtips "travel-agents/internal/agents/content/destination-tips"
	datagenerator "travel-agents/internal/agents/core/data-generator"
	placesagent "travel-agents/internal/agents/core/places-agent"
	classifyintent "travel-agents/internal/agents/routing/classify-intent"
	"travel-agents/internal/agents/travel/arithmetic"
	flightsearch "travel-agents/internal/agents/travel/flight-search"
	"travel-agents/internal/common/auth"
	"travel-agents/internal/common/config"
	"travel-agents/internal/common/database"
	"travel-agents/internal/common/flights"
	httpclient "travel-agents/internal/common/http"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/observability"
	"travel-agents/internal/common/places"
	"travel-agents/internal/common/wikipedia"
	"travel-agents/internal/models"
	"travel-agents/internal/orchestrator"
	"travel-agents/pkg/registry"
)

// App holds every long-lived component of the service.
type App struct {
	Config       *config.Config
	Orchestrator *orchestrator.Orchestrator
	Tips         *destinationtips.Handler
	Catalog      *registry.AgentRegistry
	// Redis is nil when the tips cache is disabled.
	Redis  *database.RedisClient
	Obs    *observability.Observability
	logger logger.Logger
}

// New builds the full component graph. Any configuration problem is
// returned here so the process fails at startup.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	loader, err := llm.NewLoader(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	return build(cfg, loader, log)
}

// build wires components around an existing loader. Tests pass scripted models.
func build(cfg *config.Config, loader *llm.Loader, log logger.Logger) (*App, error) {
	catalog, err := loadCatalog(cfg.Agents.RegistryPath)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenCache(
		flights.TokenURL(cfg.APIs.Amadeus.BaseURL),
		cfg.APIs.Amadeus.ClientID,
		cfg.APIs.Amadeus.ClientSecret,
		auth.WithBuffer(config.GetDuration(cfg.APIs.Amadeus.TokenBuffer)),
		auth.WithHTTPClient(httpclient.NewClient(config.GetDuration(cfg.APIs.Amadeus.Timeout)).HTTPClient()),
		auth.WithLogger(log),
	)
	flightClient := flights.NewClient(
		cfg.APIs.Amadeus.BaseURL,
		cfg.APIs.Amadeus.MaxResults,
		tokens,
		httpclient.NewClient(config.GetDuration(cfg.APIs.Amadeus.Timeout)),
		log,
	)

	var placesClient *places.Client
	if cfg.Features.UseExternalSearch {
		placesClient = places.NewClient(
			cfg.APIs.Places.BaseURL,
			cfg.APIs.Places.APIKey,
			cfg.APIs.Places.RadiusM,
			cfg.APIs.Places.MaxResults,
			httpclient.NewClient(config.GetDuration(cfg.APIs.Places.Timeout)),
			log,
		)
	}

	wiki := wikipedia.NewClient(
		cfg.APIs.Wikipedia.BaseURL,
		httpclient.NewClient(config.GetDuration(cfg.APIs.Wikipedia.Timeout)).WithUserAgent(cfg.APIs.Wikipedia.UserAgent),
		log,
	)

	var redis *database.RedisClient
	if cfg.Features.TipsCache.Enabled {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		redis = rc
		log.Info("Tips cache enabled", map[string]interface{}{"address": cfg.Database.Redis.Address})
	}

	a := assemble(cfg, loader, flightClient, placesClient, wiki, redis, log)
	a.Catalog = catalog
	return a, nil
}

// loadCatalog reads the agent catalog and checks it covers every routable intent.
func loadCatalog(path string) (*registry.AgentRegistry, error) {
	var (
		catalog *registry.AgentRegistry
		err     error
	)
	if path != "" {
		catalog, err = registry.LoadRegistry(path)
	} else {
		catalog, err = registry.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load agent registry: %w", err)
	}

	var routable []string
	for _, intent := range models.AllIntents {
		if intent != models.IntentUnsupported {
			routable = append(routable, string(intent))
		}
	}
	if err := catalog.Validate(routable...); err != nil {
		return nil, fmt.Errorf("invalid agent registry: %w", err)
	}
	return catalog, nil
}

func assemble(cfg *config.Config, loader *llm.Loader, flightClient *flights.Client, placesClient *places.Client, wiki *wikipedia.Client, redis *database.RedisClient, log logger.Logger) *App {
	generator := datagenerator.NewGenerator(datagenerator.LoadConfig(), loader.Model(llm.TierStandard), log)

	flightConfig := flightsearch.LoadConfig()
	flightConfig.MaxToolIterations = cfg.Agents.MaxToolIterations
	flightConfig.GenerateSummaries = cfg.Features.GenerateSummaries

	arithmeticConfig := arithmetic.LoadConfig()
	arithmeticConfig.MaxToolIterations = cfg.Agents.MaxToolIterations
	arithmeticConfig.GenerateSummaries = cfg.Features.GenerateSummaries

	placesConfig := placesagent.LoadConfig()
	placesConfig.UseExternalSearch = cfg.Features.UseExternalSearch
	placesConfig.GenerateSummaries = cfg.Features.GenerateSummaries

	deps := placesagent.Dependencies{Loader: loader, Generator: generator}
	var geocoder orchestrator.Geocoder
	if placesClient != nil {
		deps.Places = placesClient
		geocoder = placesClient
	}

	tipsConfig := destinationtips.LoadConfig()
	tipsConfig.Timeout = config.GetDuration(cfg.Agents.TipsTimeout)
	tipsConfig.CacheEnabled = redis != nil
	tipsConfig.CacheTTL = config.GetDuration(cfg.Features.TipsCache.TTL)
	var cache destinationtips.Cache
	if redis != nil {
		cache = redis
	}

	nodes := map[models.Intent]orchestrator.Node{
		models.IntentArithmetic: arithmetic.NewHandler(arithmeticConfig, loader, log),
		models.IntentFlights:    flightsearch.NewHandler(flightConfig, loader, flightClient, log),
		models.IntentHotel:      placesagent.NewHotelAgent(placesConfig, deps, log),
		models.IntentRestaurant: placesagent.NewRestaurantAgent(placesConfig, deps, log),
		models.IntentActivities: placesagent.NewActivitiesAgent(placesConfig, deps, log),
		models.IntentNature:     placesagent.NewNatureAgent(placesConfig, deps, log),
		models.IntentSelfie:     placesagent.NewSelfieAgent(placesConfig, deps, log),
	}

	orchConfig := orchestrator.LoadConfig()
	orchConfig.UseExternalSearch = cfg.Features.UseExternalSearch
	orchConfig.TurnTimeout = config.GetDuration(cfg.Agents.TurnTimeout)

	obs := observability.New(cfg.App.Name, cfg.App.Version, cfg.Tracing, log)
	router := classifyintent.NewHandler(classifyintent.LoadConfig(), loader, log)

	return &App{
		Config:       cfg,
		Orchestrator: orchestrator.New(orchConfig, router, nodes, geocoder, obs, log),
		Tips:         destinationtips.NewHandler(tipsConfig, loader, wiki, generator, cache, log),
		Redis:        redis,
		Obs:          obs,
		logger:       log,
	}
}

// Ready reports whether the optional dependencies are reachable.
func (a *App) Ready(ctx context.Context) error {
	if a.Redis == nil {
		return nil
	}
	return a.Redis.Ping(ctx)
}

func (a *App) Close() {
	a.Obs.Shutdown()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("Failed to close redis client", map[string]interface{}{"error": err.Error()})
		}
	}
}
