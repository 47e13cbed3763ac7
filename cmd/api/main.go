package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"server/internal/adapter/repo"
	"server/internal/copygen"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/pipeline"
	"server/internal/render"
	"server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store, staticDir := buildStore(cfg, logger)

	jobs := repo.NewJobRepository(dbpool)
	demands := repo.NewDemandRepository(dbpool)

	generator := copygen.NewGenerator(buildProviders(cfg, logger), cfg.CopyTimeout, logger)
	renderer := render.NewAdRenderer(nil)

	orchestrator := pipeline.NewOrchestrator(jobs, store, generator, renderer, pipeline.Options{
		Workers:         cfg.PipelineWorkers,
		PipelineTimeout: cfg.PipelineTimeout,
	}, logger)
	sweeper := pipeline.NewSweeper(jobs, cfg.SweepInterval, cfg.SweepStaleAfter, logger)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		orchestrator.Run(workerCtx)
	}()
	go sweeper.Run(workerCtx)

	limiter := middleware.NewLimiter(cfg.RateLimitPerMin)
	defer limiter.Stop()

	app := &handlers.App{
		Logger:  logger,
		Jobs:    orchestrator,
		Repo:    jobs,
		Demands: demands,
		Store:   store,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:        logger,
		JWTSecret:     cfg.JWTSecret,
		Limiter:       limiter,
		CountryLookup: buildCountryLookup(cfg, logger),
		CORSOrigins:   []string{"http://localhost:3000"},
		DefaultLocale: "en",
		StaticDir:     staticDir,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}

	// Let in-flight generation jobs finish before the process exits.
	stopWorkers()
	select {
	case <-workersDone:
	case <-time.After(cfg.PipelineTimeout):
		logger.Warn().Msg("worker drain timed out")
	}
	logger.Info().Msg("server stopped")
}

func buildStore(cfg *infra.Config, logger zerolog.Logger) (storage.Store, string) {
	switch cfg.StorageBackend {
	case infra.StorageBackendSupabase:
		store, err := storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize supabase storage")
		}
		return store, ""
	default:
		store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize filesystem storage")
		}
		return store, cfg.StoragePath
	}
}

// buildProviders returns copy providers in priority order; the generator
// uses the first configured one.
func buildProviders(cfg *infra.Config, logger zerolog.Logger) []copygen.Provider {
	client := &http.Client{Timeout: cfg.ProviderTimeout}
	var providers []copygen.Provider
	if cfg.OpenAIAPIKey != "" {
		p, err := copygen.NewOpenAIProvider(copygen.OpenAIOptions{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			HTTPClient: client,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize openai provider")
		}
		providers = append(providers, p)
	}
	if cfg.GeminiAPIKey != "" {
		p, err := copygen.NewGeminiProvider(copygen.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: client,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize gemini provider")
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		logger.Warn().Msg("no copy provider configured, all jobs will use fallback copy")
	}
	return providers
}

func buildCountryLookup(cfg *infra.Config, logger zerolog.Logger) middleware.CountryLookup {
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale detection degrades to headers")
		return nil
	}
	if resolver == nil {
		return nil
	}
	return resolver.CountryCode
}
