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

	"mediastudio/internal/adapter/repo"
	"mediastudio/internal/generation"
	"mediastudio/internal/http/handlers"
	"mediastudio/internal/http/httpapi"
	"mediastudio/internal/infra"
	"mediastudio/internal/metrics"
	"mediastudio/internal/providers/genai"
	"mediastudio/internal/providers/prompt"
	"mediastudio/internal/storage"
)

func main() {
	_ = godotenv.Load(".env", ".env.local")

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	if err := repo.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	store, err := newBlobStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure object store")
	}

	client, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		TextModel:  cfg.GeminiModel,
		VideoModel: cfg.VeoModel,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure gemini client")
	}
	refiner, err := prompt.NewRefiner(client)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure prompt refiner")
	}

	m := metrics.New()
	jobs := repo.NewJobRepository(pool)
	templates := repo.NewTemplateRepository(pool)
	runner := generation.NewRunner(ctx, cfg.GenerationWorkers, logger)
	poller := generation.NewPoller(client, cfg.PollInterval, cfg.PollMaxWait, logger, m)
	materializer := generation.NewMaterializer(client, store, logger)
	service := generation.NewService(jobs, refiner, client, poller, materializer, runner, logger, m)

	app := handlers.NewApp(service, templates, store, logger, m.Handler())
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if !runner.Wait(cfg.HTTPIdleTimeout) {
		logger.Warn().Msg("background generations still running at shutdown")
	}
	logger.Info().Msg("server stopped")
}

// newBlobStore prefers MinIO when an endpoint is configured and falls back to
// the local filesystem store for development.
func newBlobStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (storage.BlobStore, error) {
	if cfg.MinioEndpoint != "" {
		return storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			PublicBaseURL: cfg.MinioPublicBaseURL,
		})
	}
	logger.Warn().Str("path", cfg.StoragePath).Msg("MINIO_ENDPOINT not set, using local filesystem store")
	return storage.NewFileStore(cfg.StoragePath, "http://localhost:"+cfg.Port+"/static")
}
