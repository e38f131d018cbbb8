package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mediadeck/crm/backend/internal/api/handlers"
	"github.com/mediadeck/crm/backend/internal/cache"
	"github.com/mediadeck/crm/backend/internal/config"
	"github.com/mediadeck/crm/backend/internal/database"
	"github.com/mediadeck/crm/backend/internal/health"
	"github.com/mediadeck/crm/backend/internal/middleware"
	"github.com/mediadeck/crm/backend/internal/repository"
	"github.com/mediadeck/crm/backend/internal/search"
	"github.com/mediadeck/crm/backend/internal/services"
	"github.com/mediadeck/crm/backend/pkg/utils"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	_ = godotenv.Load()

	utils.InitLogger()
	logger := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to databases")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	repos := repository.NewRepositoryManager(dbManager.DB)
	searchCache := cache.New(cache.NewRedisStore(dbManager.Redis), logger)
	engine := search.NewEngine(search.DefaultRankingConfig(), logger)

	searchService := services.NewSearchService(
		repos,
		searchCache,
		engine,
		logger,
		cfg.Search.ResultTTL,
		cfg.Search.AggregateTTL,
	)

	searchHandler := handlers.NewSearchHandler(searchService, logger, cfg.Search.FetchTimeout)
	healthChecker := health.NewHealthChecker(dbManager, logger)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(rateLimiter.RateLimit())

	router.GET("/health", healthChecker.Handler())

	api := router.Group("/api")
	{
		api.GET("/search", searchHandler.HandleSearch)
		api.POST("/search", searchHandler.HandleSearchAction)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting search server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}
