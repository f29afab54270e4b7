package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"portfolio_tracker/internal/pkg/logger"
	"portfolio_tracker/internal/tui"
	"portfolio_tracker/internal/view"
)

var fallbackChains = []string{"ethereum", "optimism", "polygon", "arbitrum", "sepolia"}

var (
	serverURL string
	address   string
	chain     string
	logFile   string
	timeout   time.Duration

	rootCmd = &cobra.Command{
		Use:   "portfolio_view",
		Short: "Terminal view of a wallet's token portfolio",
		Long:  "Connects to a portfolio tracker server and shows the total value, distribution and holdings of a wallet.",
		RunE:  run,
	}
)

func init() {
	_ = godotenv.Load()

	rootCmd.Flags().StringVar(&serverURL, "server", envOr("PORTFOLIO_SERVER_URL", "http://localhost:8080"), "portfolio tracker server base URL")
	rootCmd.Flags().StringVar(&address, "address", "", "wallet address to connect on start")
	rootCmd.Flags().StringVar(&chain, "chain", "", "network identifier (default: server default)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write debug logs to this file")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	zapLogger, err := newFileLogger(logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.SetHandler(zapslog.NewHandler(zapLogger.Core(), zapslog.WithName("portfolio_view")))

	fetcher := view.NewFetcher(serverURL, timeout, zapLogger)

	chains := fallbackChains
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	if ids, err := fetcher.Networks(ctx); err != nil {
		slog.Warn("Could not list server networks, using built-in list", "error", err)
	} else if len(ids) > 0 {
		chains = ids
	}
	cancel()

	program := tea.NewProgram(tui.New(fetcher, address, chain, chains, zapLogger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

// newFileLogger logs to path at debug level, or nowhere when path is empty.
// The terminal is owned by the UI, so logs never go to stdout.
func newFileLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
