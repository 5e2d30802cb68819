package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/weather-trading-insights/internal/api/http"
	"github.com/i474232898/weather-trading-insights/internal/cache"
	"github.com/i474232898/weather-trading-insights/internal/config"
	"github.com/i474232898/weather-trading-insights/internal/logging"
	"github.com/i474232898/weather-trading-insights/internal/narrative"
	"github.com/i474232898/weather-trading-insights/internal/scheduler"
	"github.com/i474232898/weather-trading-insights/internal/store"
	"github.com/i474232898/weather-trading-insights/internal/weather"
	"github.com/i474232898/weather-trading-insights/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure logging")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	// Favorites: SQLite when a path is configured, otherwise in memory.
	var favorites weather.FavoriteStore
	if cfg.DatabasePath != "" {
		sqlStore, err := store.NewSQLiteStore(startCtx, cfg.DatabasePath, log)
		if err != nil {
			log.WithError(err).Fatal("failed to open favorites database")
		}
		defer sqlStore.Close()
		favorites = sqlStore
	} else {
		log.Info("DATABASE_PATH not set; favorites are kept in memory")
		favorites = store.NewMemoryStore()
	}

	// Extended-bundle cache: Redis when reachable, otherwise in memory.
	var bundles weather.BundleCache = cache.NewMemoryBundleCache(cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(startCtx).Err(); err != nil {
			log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable; using in-memory cache")
			_ = rdb.Close()
		} else {
			defer rdb.Close()
			bundles = cache.NewRedisBundleCache(rdb, cfg.CacheTTL, log)
		}
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	omCfg := providers.DefaultOpenMeteoConfig()
	omCfg.RequestsPerSecond = cfg.OpenMeteoRPS
	omCfg.Burst = cfg.OpenMeteoBurst
	openMeteo := providers.NewOpenMeteoProvider(httpClient, omCfg, log)

	// Open-Meteo geocodes for free; Google is used when a key is provided.
	var locations weather.LocationProvider = openMeteo
	if cfg.GeocoderAPIKey != "" {
		locations = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}

	service := weather.NewService(openMeteo, locations, favorites, bundles, log)

	narrator := narrative.NewGenerator(narrative.Config{
		Provider:      cfg.LLMProvider,
		APIKey:        cfg.LLMAPIKey,
		Model:         cfg.LLMModel,
		Timeout:       cfg.LLMTimeout,
		FallbackDelay: cfg.LLMFallbackDelay,
	}, log)
	if !narrator.Available() {
		log.Info("no LLM API key configured; AI analysis returns rule-based advice")
	}

	// Scheduler that periodically warms the cache for favorites.
	if cfg.RefreshInterval > 0 {
		sched := scheduler.New(service, cfg.RefreshInterval, log)
		if err := sched.Start(); err != nil {
			log.WithError(err).Fatal("failed to start scheduler")
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "weather-trading-insights",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// LLM calls can take most of a minute.
		WriteTimeout: cfg.LLMTimeout + 10*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New())

	httpapi.RegisterRoutes(app, service, narrator, log)

	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	log.Info("shutdown complete")
}
