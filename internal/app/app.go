package app

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/bobmcallan/papertrade/internal/clients/eodhd"
	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/interfaces"
	"github.com/bobmcallan/papertrade/internal/services/portfolio"
	"github.com/bobmcallan/papertrade/internal/services/quote"
	"github.com/bobmcallan/papertrade/internal/services/trade"
	surrealstorage "github.com/bobmcallan/papertrade/internal/storage/surrealdb"
)

// App wires configuration, storage, the quote client, and the domain
// services into one container the server and tests construct from.
type App struct {
	Config *common.Config
	Logger *common.Logger

	Storage interfaces.StorageManager

	QuoteClient interfaces.QuoteClient

	QuoteService     interfaces.QuoteService
	PortfolioService interfaces.PortfolioService
	TradeService     interfaces.TradeService

	StartupTime time.Time
}

// NewApp builds the application from config files and environment. The
// config path may be empty, in which case PAPERTRADE_CONFIG and the default
// papertrade.toml locations are consulted.
func NewApp(configPath string) (*App, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	common.LoadVersionFromFile()

	paths := []string{}
	if configPath != "" {
		paths = append(paths, configPath)
	}
	if envPath := os.Getenv("PAPERTRADE_CONFIG"); envPath != "" {
		paths = append(paths, envPath)
	}
	paths = append(paths, "papertrade.toml", "config/papertrade.toml")

	config, err := common.LoadConfig(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storage, err := surrealstorage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	quoteClient := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
	)

	quoteService := quote.NewService(quoteClient, logger)
	portfolioService := portfolio.NewService(storage, quoteService, logger)
	tradeService := trade.NewService(storage, quoteService, portfolioService, logger)

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storage,
		QuoteClient:      quoteClient,
		QuoteService:     quoteService,
		PortfolioService: portfolioService,
		TradeService:     tradeService,
		StartupTime:      time.Now(),
	}, nil
}

// Close releases storage connections.
func (a *App) Close() error {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
