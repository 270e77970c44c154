// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/kennethmarkhui/inventory-api/internal/adapters/db"
	redis_a "github.com/kennethmarkhui/inventory-api/internal/adapters/redis_adapter"
	"github.com/kennethmarkhui/inventory-api/internal/adapters/storage"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
	"github.com/kennethmarkhui/inventory-api/internal/core/services"
	"github.com/kennethmarkhui/inventory-api/internal/handlers"
	"github.com/kennethmarkhui/inventory-api/internal/handlers/middleware"
	"github.com/kennethmarkhui/inventory-api/internal/pkg/config"
	"github.com/kennethmarkhui/inventory-api/internal/pkg/logger"
	"github.com/kennethmarkhui/inventory-api/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting catalog management service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	slogger.Info("loading configuration")
	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if cfg.App.Environment != "production" {
		if err := runMigrations(ctx, cfg, slogger.Logger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			// Don't exit in development, just warn
		}
	}

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		if deps.asynqClient != nil {
			if err := deps.asynqClient.Close(); err != nil {
				slogger.Error("failed to close Asynq client", slog.String("error", err.Error()))
			}
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       ports.Database
	redisClient    *redis.Client
	redisCache     ports.CacheRepository
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	fileStore      ports.FileStore
	catalogService *services.CatalogService
	itemHandler    *handlers.ItemHandler
	healthHandler  *handlers.HealthHandler
	exportHandler  *handlers.ExportHandler
	fileHandler    *handlers.FileHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	// Redis backs the cache and the cleanup queue. Both are optional: the
	// service runs without them, at the cost of no caching and no retry of
	// failed image discards.
	var taskEnqueuer ports.TaskEnqueuer
	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis",
			slog.String("host", cfg.Redis.Host),
			slog.String("port", cfg.Redis.Port),
		)

		redisClient := redis.NewClient(&redis.Options{
			Addr:            cfg.GetRedisAddress(),
			Password:        cfg.Redis.Password,
			DB:              cfg.Redis.DB,
			MaxRetries:      cfg.Redis.MaxRetries,
			MinRetryBackoff: cfg.Redis.MinRetryBackoff,
			MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
			DialTimeout:     cfg.Redis.DialTimeout,
			ReadTimeout:     cfg.Redis.ReadTimeout,
			WriteTimeout:    cfg.Redis.WriteTimeout,
			PoolSize:        cfg.Redis.PoolSize,
			MinIdleConns:    cfg.Redis.MinIdleConns,
			PoolTimeout:     cfg.Redis.PoolTimeout,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, continuing without cache and cleanup queue",
				slog.String("error", err.Error()))
			redisClient.Close()
		} else {
			deps.redisClient = redisClient
			deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

			asynqRedisOpt := asynq.RedisClientOpt{
				Addr:     cfg.Asynq.RedisAddr,
				Password: cfg.Asynq.RedisPassword,
				DB:       cfg.Asynq.RedisDB,
			}
			deps.asynqClient = asynq.NewClient(asynqRedisOpt)
			deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)
			taskEnqueuer = workers.NewAsynqEnqueuer(deps.asynqClient, logger)
		}
	}

	fileStore, err := buildFileStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}
	deps.fileStore = fileStore

	itemRepo := db.NewItemRepository(database, logger)

	deps.catalogService = services.NewCatalogService(itemRepo, fileStore, deps.redisCache, taskEnqueuer, logger)

	deps.itemHandler = handlers.NewItemHandler(deps.catalogService, logger)
	deps.healthHandler = handlers.NewHealthHandler(
		database,
		deps.redisClient,
		deps.asynqInspector,
		cfg,
		logger,
	)
	deps.exportHandler = handlers.NewExportHandler(itemRepo, logger)
	deps.fileHandler = handlers.NewFileHandler(fileStore, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// buildFileStore selects the image storage driver from configuration.
func buildFileStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.FileStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return storage.NewS3Store(ctx, &storage.S3Config{
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Endpoint:        cfg.Storage.Endpoint,
			UsePathStyle:    cfg.Storage.UsePathStyle,
		}, logger)
	default:
		return storage.NewLocalStore(cfg.Storage.LocalPath, logger)
	}
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux

	if cfg.App.Environment != "test" {
		handler = middleware.RequestID(handler)
		handler = middleware.Logger(slogger)(handler)
		handler = middleware.Recovery(slogger.Logger)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	registerRoutes(mux, deps, cfg)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	// Health and readiness endpoints
	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
	mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)

	// Catalog item endpoints
	mux.HandleFunc("GET "+apiV1+"/items", deps.itemHandler.ListItems)
	mux.HandleFunc("POST "+apiV1+"/items", deps.itemHandler.CreateItem)
	mux.HandleFunc("GET "+apiV1+"/items/{id}", deps.itemHandler.GetItem)
	mux.HandleFunc("PATCH "+apiV1+"/items/{id}", deps.itemHandler.UpdateItem)
	mux.HandleFunc("DELETE "+apiV1+"/items/{id}", deps.itemHandler.DeleteItem)

	// Export endpoints
	mux.HandleFunc("GET "+apiV1+"/items/export/xlsx", deps.exportHandler.ExportExcel)
	mux.HandleFunc("GET "+apiV1+"/items/export/json", deps.exportHandler.ExportJSON)

	// Stored image serving
	mux.HandleFunc("GET /uploads/{path...}", deps.fileHandler.ServeFile)

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.HandlerFunc(http.DefaultServeMux.ServeHTTP))
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
