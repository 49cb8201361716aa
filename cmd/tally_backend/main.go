package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
	"github.com/monkesto/tally/internal/core/services"
	"github.com/monkesto/tally/internal/handlers"
	"github.com/monkesto/tally/internal/middleware"
	"github.com/monkesto/tally/internal/platform/config"
	"github.com/monkesto/tally/internal/platform/database"
	pgsqlrepo "github.com/monkesto/tally/internal/repositories/database/pgsql"
	"github.com/monkesto/tally/internal/repositories/memory"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage backend", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	serviceContainer := services.NewServiceContainer(cfg, repos)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.RateLimit(newRateLimiter(cfg)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting",
		slog.String("port", cfg.Port),
		slog.String("store_backend", cfg.StoreBackend))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildRepositories selects the storage backend. The in-memory backend needs
// no setup; the pgsql backend connects a pool and applies pending migrations
// first.
func buildRepositories(cfg *config.Config, logger *slog.Logger) (repos portsrepo.RepositoryProvider, cleanup func(), err error) {
	switch cfg.StoreBackend {
	case "pgsql":
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations"); err != nil {
			return repos, nil, err
		}
		logger.Info("Database migrations applied.")

		pool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return repos, nil, err
		}
		logger.Info("Database connection pool established.")
		return pgsqlrepo.NewRepositoryProvider(pool), pool.Close, nil
	default:
		logger.Info("Using in-memory storage backend.")
		return memory.NewRepositoryProvider(), func() {}, nil
	}
}

func newRateLimiter(cfg *config.Config) *limiter.Limiter {
	rate := limiter.Rate{
		Period: cfg.RateLimitWindow,
		Limit:  cfg.RateLimit,
	}
	return limiter.New(memorystore.NewStore(), rate)
}
