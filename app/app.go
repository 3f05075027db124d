package app

import (
	"context"
	"errors"
	"go-property-api/config"
	"go-property-api/db"
	"go-property-api/handler"
	"go-property-api/logger"
	"go-property-api/media"
	"go-property-api/repository"
	"go-property-api/router"
	"go-property-api/service"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	shutdownTimeout = 10 * time.Second
	migrationsPath  = "file://db/migrations"
)

// buildMedia picks the upload backend. The GridFS store is also returned so its files can be served.
func buildMedia(database *mongo.Database) (media.Uploader, *media.GridFSStore, error) {
	cfg := config.AppConfig.Media
	switch cfg.Provider {
	case "gridfs":
		baseURL := config.AppConfig.Server.PublicBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:" + config.AppConfig.Server.Port
		}
		store, err := media.NewGridFSStore(database, cfg.BucketName, baseURL)
		if err != nil {
			return nil, nil, err
		}
		return media.WithCleanup(store), store, nil
	default:
		cld, err := media.NewCloudinaryUploader(cfg.CloudName, cfg.APIKey, cfg.APISecret)
		if err != nil {
			return nil, nil, err
		}
		return media.WithCleanup(cld), nil, nil
	}
}

func Run() {
	logger.Init()
	if err := config.LoadConfig("."); err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.SetLevel(config.AppConfig.Log.Level)
	logger.Log.Info("Configuration loaded successfully")

	client, database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	if err := db.RunMigrations(migrationsPath, config.AppConfig.Database.URI, config.AppConfig.Database.Name); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	var limiter *service.RateLimiter
	redisClient, err := db.ConnectRedis()
	switch {
	case err != nil:
		logger.Log.WithError(err).Warn("Redis unavailable, rate limiting disabled")
	case redisClient != nil:
		rl := config.AppConfig.RateLimit
		limiter = service.NewRateLimiter(redisClient, int64(rl.Requests), rl.Window)
	}

	uploader, store, err := buildMedia(database)
	if err != nil {
		logger.Log.Fatalf("Error configuring media provider: %v", err)
	}

	tokens, err := service.NewTokenServiceFromConfig()
	if err != nil {
		logger.Log.Fatalf("Error configuring tokens: %v", err)
	}

	// Layers for users and sessions
	userRepo := repository.NewUserRepository(database)
	authService := service.NewAuthService(userRepo, tokens, uploader)
	userService := service.NewUserService(userRepo, uploader)

	// Layers for properties
	propertyRepo := repository.NewPropertyRepository(database)
	propertyService := service.NewPropertyService(propertyRepo, uploader)

	tempDir := config.AppConfig.Media.TempDir
	deps := router.Deps{
		Auth:        handler.NewAuthHandler(authService, userService, tempDir),
		Properties:  handler.NewPropertyHandler(propertyService, tempDir),
		AuthService: authService,
		Limiter:     limiter,
		Metrics:     handler.NewMetrics(),
		DB: handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}),
		CORSOrigin:     config.AppConfig.Server.CORSOrigin,
		TrustedProxies: config.AppConfig.RateLimit.TrustedProxies,
	}
	if store != nil {
		deps.Media = handler.NewMediaHandler(store)
	}

	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// in-flight handlers still use mongo and redis, so they close after the drain
	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, map[string]gfshutdown.Operation{
		"server": sequential(
			shutdownStep{"http-server", func(ctx context.Context) error {
				logger.Log.Warn("Shutdown signal received, draining HTTP server")
				return srv.Shutdown(ctx)
			}},
			shutdownStep{"mongodb", client.Disconnect},
			shutdownStep{"redis", func(context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Close()
			}},
		),
	})

	exitCode := <-wait
	logger.Log.Infof("Server exited with code %d", exitCode)
	os.Exit(exitCode)
}
