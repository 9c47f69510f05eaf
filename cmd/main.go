package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	apiconfig "golang-stock-scanner/internal/api/config"
	"golang-stock-scanner/internal/scanner/repository"
	"golang-stock-scanner/internal/scanner/service"
	"golang-stock-scanner/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	exchange   string
	profile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "stock-scanner",
	Short: "A CLI for scanning stocks from Google Finance",
	Long:  `Stock scanner extracts fundamental indicators from Google Finance quote pages and scores them with an explainable profile.`,
}

var scanCmd = &cobra.Command{
	Use:   "scan TICKER",
	Short: "Scan one ticker and print the indicators and score as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	var cfg apiconfig.Config
	if configPath != "" {
		loaded, err := apiconfig.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = *loaded
	}
	if profile != "" {
		cfg.Scan.Profile = profile
	}

	appLogger := logger.NewNop()
	if verbose {
		l, err := logger.New("debug", "console")
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		appLogger = l
	}
	defer func() { _ = appLogger.Sync() }()

	fetcher := repository.NewGoogleFinanceRepository(cfg.GoogleFinance, appLogger)
	scanSvc, err := service.NewScanService(cfg.Scan, appLogger, fetcher, nil, nil)
	if err != nil {
		return err
	}

	result, err := scanSvc.Scan(cmd.Context(), args[0], exchange, true)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func main() {
	scanCmd.Flags().StringVarP(&exchange, "exchange", "e", "", "Exchange code (default BVMF)")
	scanCmd.Flags().StringVarP(&profile, "profile", "p", "", "Scoring profile name")
	scanCmd.Flags().StringVarP(&configPath, "config", "c", "", "Optional configuration file")
	scanCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
	rootCmd.AddCommand(scanCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'\n", err)
		os.Exit(1)
	}
}
