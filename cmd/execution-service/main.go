package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-scanner/internal/executor/config"
	"golang-stock-scanner/internal/executor/delivery/consumer"
	executorrepo "golang-stock-scanner/internal/executor/repository"
	"golang-stock-scanner/internal/executor/service"
	scannerrepo "golang-stock-scanner/internal/scanner/repository"
	scannerservice "golang-stock-scanner/internal/scanner/service"
	"golang-stock-scanner/pkg/common"
	"golang-stock-scanner/pkg/logger"
	"golang-stock-scanner/pkg/postgres"
	"golang-stock-scanner/pkg/redis"
	"golang-stock-scanner/pkg/telegram"

	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the execution service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Execution Service", logger.StringField("name", cfg.App.Name))

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

	// MKSTREAM creates the stream if it doesn't exist
	if err := redisClient.EnsureGroup(ctx, common.RedisStreamScanRefresh, common.RedisStreamGroup); err != nil {
		appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
	}

	// Initialize repositories
	streamRepo := executorrepo.NewRefreshStreamRepository(redisClient.Client)
	snapshotRepo := scannerrepo.NewStockSnapshotRepository(db.DB)
	cacheRepo := scannerrepo.NewScanCacheRepository(redisClient.Client)
	googleFinanceRepo := scannerrepo.NewGoogleFinanceRepository(cfg.GoogleFinance, appLogger)

	scanSvc, err := scannerservice.NewScanService(cfg.Scan, appLogger, googleFinanceRepo, snapshotRepo, cacheRepo)
	if err != nil {
		appLogger.Fatal("Failed to initialize scan service", logger.ErrorField(err))
	}

	telegramNotifier, err := telegram.NewOptionalClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
	}
	if telegramNotifier == nil {
		appLogger.Warn("Telegram bot token not configured, verdict alerts disabled")
	}

	executorSvc := service.NewExecutorService(cfg.Executor, appLogger, streamRepo, snapshotRepo, scanSvc, telegramNotifier)

	redisConsumer := consumer.NewRedisConsumer(cfg.Executor, executorSvc, appLogger)
	redisConsumer.Start(ctx)

	appLogger.Info("Execution service started. Waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down execution service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Execution service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "execution-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-executor.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing execution-service CLI: %s\n", err)
		os.Exit(1)
	}
}
