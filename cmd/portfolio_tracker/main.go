package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"portfolio_tracker/internal/app/service"
	"portfolio_tracker/internal/infrastructure/configloader"
	"portfolio_tracker/internal/infrastructure/httpclient"
	clientprovider "portfolio_tracker/internal/infrastructure/network/client"
	networkdefinition "portfolio_tracker/internal/infrastructure/network/definition"
	"portfolio_tracker/internal/infrastructure/restapi"
	"portfolio_tracker/internal/pkg/logger"
)

const defaultConfigPath = "config/config.yml"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "WARN: failed to load .env file: %v\n", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := newZapLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	slogLevel, _ := logger.ParseLevel(cfg.Logging.Level)
	logger.SetHandler(slogzap.Option{Level: slogLevel, Logger: zapLogger}.NewZapHandler())
	appLogger := logger.NewSlogAdapter()

	logger.Info("Portfolio tracker starting", "config", cfgPath)

	networkProvider := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.Alchemy.DefaultNetwork, cfg.Alchemy.Networks)
	providerCfg := cfg.ProviderConfig(networkProvider.GetAllNetworkDefinitions(), os.LookupEnv)
	for _, def := range networkProvider.GetAllNetworkDefinitions() {
		if _, ok := providerCfg.APIKey(def.Identifier); !ok {
			logger.Warn("No Alchemy API key configured, requests for this network will be rejected", "network", def.Identifier)
		}
	}

	rpcTimeout := time.Duration(cfg.Alchemy.RequestTimeoutMillis) * time.Millisecond
	clientProvider := clientprovider.NewAlchemyClientProvider(appLogger, rpcTimeout)

	priceClient := httpclient.NewCoinGeckoClient(
		cfg.CoinGecko.BaseURL,
		cfg.CoinGecko.APIKey,
		cfg.CoinGecko.VsCurrency,
		time.Duration(cfg.CoinGecko.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)

	portfolioService := service.NewPortfolioService(
		networkProvider,
		clientProvider,
		priceClient,
		providerCfg,
		appLogger,
		cfg.PortfolioService,
	)
	logger.Info("PortfolioService initialized",
		"max_concurrent_requests", cfg.PortfolioService.MaxConcurrentRequests,
		"metadata_batch_size", cfg.PortfolioService.MetadataBatchSize)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := restapi.SetupRouter(restapi.NewPortfolioHandler(portfolioService), cfg, zapLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server exiting")
}

// newZapLogger builds a JSON production logger at the configured level,
// additionally writing to logging.file when set.
func newZapLogger(cfg configloader.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.File != "" {
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, cfg.File)
	}
	return zapCfg.Build()
}
