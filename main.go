package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Chative-core-poc-v1/intent-gateway/internal/agent/model"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/agent/responder"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/agent/tools"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/api"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/core"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service/cache"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service/resilient"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service/weather"
	logx "github.com/Chative-core-poc-v1/intent-gateway/pkg/logger"
	pkgredis "github.com/Chative-core-poc-v1/intent-gateway/pkg/redis"
)

// AppConfig defines all configurable parameters of the gateway,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config
	Cache cache.RedisConfig
	HTTP  api.Config

	// Providers
	Weather weather.Config

	// Reply rendering
	Response model.ResponseModelConfig
	Prompt   model.ResponsePromptConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load(".env")

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(cfg.Environment),
		Level:       cfg.LogLevel,
	})
	if envErr != nil {
		logx.Debug().Err(envErr).Msg("No .env file loaded")
	}

	store, closeStore := newStore(ctx, cfg)
	defer closeStore()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := resilient.NewMetrics(promReg)

	registry := service.NewRegistry()
	weatherSvc := weather.New(cfg.Weather, resilient.WithStore(store), resilient.WithMetrics(metrics))
	if err := registry.RegisterService(weather.Name, weatherSvc); err != nil {
		logx.Fatal().Err(err).Msg("Failed to register weather service")
	}
	registry.MapIntentToService(tools.IntentWeatherQuery, weather.Name)
	registry.MapIntentToService(tools.IntentWeatherForecast, weather.Name)

	intentTools, err := tools.ForIntents(registry, tools.WeatherSpecs())
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build intent tools")
	}
	toolRunner, err := tools.NewRunner(ctx, intentTools)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build tools runner")
	}

	var chatModel einomodel.BaseChatModel
	if cfg.Response.Enabled() {
		cm, err := responder.NewChatModel(ctx, cfg.Response)
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to create response model")
		}
		chatModel = cm
	} else {
		logx.Info().Msg("GEMINI_API_KEY not set, replies use deterministic summaries")
	}
	resp, err := responder.New(ctx, chatModel, cfg.Response.Model, cfg.Prompt)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build responder")
	}
	logx.Info().Bool("model_replies", resp.UsesModel()).Str("model", cfg.Response.Model).Msg("Responder ready")

	toolInfos, err := tools.GetToolInfos(ctx, intentTools)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to describe intent tools")
	}

	srv := api.New(cfg.HTTP, api.Deps{
		Registry:  registry,
		Responder: resp,
		Tools:     toolRunner,
		ToolInfos: toolInfos,
		Gatherer:  promReg,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logx.Info().Msg("Shutting down")
	case err := <-errCh:
		if err != nil {
			logx.Error().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// newStore returns the Redis-backed cache when REDIS_URL is set and the
// in-memory store otherwise.
func newStore(ctx context.Context, cfg AppConfig) (cache.Store, func()) {
	if !cfg.Redis.Enabled() {
		logx.Info().Msg("REDIS_URL not set, using in-memory response cache")
		return cache.NewMemoryStore(), func() {}
	}
	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	logx.Info().Msg("Connected to Redis")
	return cache.NewRedisStore(rdb, cfg.Cache), func() { rdb.Close() }
}
