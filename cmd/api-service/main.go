package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-scanner/internal/api/config"
	delivery "golang-stock-scanner/internal/api/delivery/http"
	_ "golang-stock-scanner/internal/api/docs"
	apiservice "golang-stock-scanner/internal/api/service"
	"golang-stock-scanner/internal/scanner/repository"
	"golang-stock-scanner/internal/scanner/service"
	"golang-stock-scanner/pkg/logger"
	"golang-stock-scanner/pkg/postgres"
	"golang-stock-scanner/pkg/ratelimit"
	"golang-stock-scanner/pkg/redis"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the API service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting API Service", logger.StringField("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	snapshotRepo := repository.NewStockSnapshotRepository(db.DB)
	cacheRepo := repository.NewScanCacheRepository(redisClient.Client)
	googleFinanceRepo := repository.NewGoogleFinanceRepository(cfg.GoogleFinance, appLogger)

	// Initialize services
	scanCfg := cfg.Scan.WithDefaults()
	scanSvc, err := service.NewScanService(scanCfg, appLogger, googleFinanceRepo, snapshotRepo, cacheRepo)
	if err != nil {
		appLogger.Fatal("Failed to initialize scan service", logger.ErrorField(err))
	}
	searchSvc := service.NewSearchService(snapshotRepo, appLogger, scanCfg.SearchLimit)
	tickerSvc := service.NewTickerService(scanSvc, appLogger, scanCfg.DefaultTickers, scanCfg.TickerTapeConcurrency, scanCfg.TickerTapeTTL)

	if cfg.Seed.Enabled {
		seedSvc := service.NewSeedService(snapshotRepo, appLogger, cfg.Seed.Exchange)
		inserted, err := seedSvc.SeedFromFile(ctx, cfg.Seed.File)
		if err != nil {
			appLogger.Error("Failed to seed tickers", logger.ErrorField(err), logger.StringField("file", cfg.Seed.File))
		} else {
			appLogger.Info("Seeded tickers", logger.IntField("inserted", int(inserted)), logger.StringField("file", cfg.Seed.File))
		}
	}

	if cfg.Scheduler.Enabled {
		publisher := apiservice.NewStreamPublisher(redisClient.Client, cfg.Redis.StreamMaxLen)
		scheduler, err := apiservice.NewRefreshScheduler(cfg.Scheduler, snapshotRepo, publisher, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize refresh scheduler", logger.ErrorField(err))
		}
		go scheduler.Start(ctx)
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(delivery.RequestContext())
	e.Use(delivery.RequestLogger(appLogger))
	e.Use(delivery.RateLimit(ratelimit.NewIPLimiter(cfg.RateLimit)))

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")
	delivery.NewScanHandler(scanSvc, appLogger).RegisterRoutes(apiV1)
	delivery.NewSearchHandler(searchSvc, appLogger).RegisterRoutes(apiV1)
	delivery.NewTickerHandler(tickerSvc, appLogger).RegisterRoutes(apiV1)

	e.GET("/health", delivery.HealthCheck)
	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Stock Scanner API
// @version 1.0
// @description Fundamental indicator scanner and scoring API.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
