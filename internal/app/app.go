// Package app wires configuration, storage, clients and services into the
// shared core used by cmd/tally-server.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/tally/internal/clients/eodhd"
	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/services/analysis"
	"github.com/bobmcallan/tally/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	EODHDClient     *eodhd.Client
	AnalysisService interfaces.AnalysisService
	MCPServer       *server.MCPServer
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, the statement client, the analysis service
// and the MCP server. configPath may be empty, in which case TALLY_CONFIG,
// then the binary directory, then a development fallback are tried.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("TALLY_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "tally.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/tally.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	if config.Storage.Market.Path != "" && !filepath.IsAbs(config.Storage.Market.Path) {
		config.Storage.Market.Path = filepath.Join(binDir, config.Storage.Market.Path)
	}
	if config.Storage.Reports.Path != "" && !filepath.IsAbs(config.Storage.Reports.Path) {
		config.Storage.Reports.Path = filepath.Join(binDir, config.Storage.Reports.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - statement fetching will fail")
	}

	clientOpts := []eodhd.ClientOption{
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
	}
	if config.Clients.EODHD.BaseURL != "" {
		clientOpts = append(clientOpts, eodhd.WithBaseURL(config.Clients.EODHD.BaseURL))
	}
	eodhdClient := eodhd.NewClient(config.Clients.EODHD.APIKey, clientOpts...)

	analysisService := analysis.NewService(eodhdClient, eodhdClient, storageManager, config, logger)

	mcpServer := server.NewMCPServer(
		"tally",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		EODHDClient:     eodhdClient,
		AnalysisService: analysisService,
		MCPServer:       mcpServer,
		StartupTime:     startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createAnalyzeTickerTool(), handleAnalyzeTicker(a.AnalysisService, logger))
	s.AddTool(createGetStatementsTool(), handleGetStatements(a.AnalysisService, logger))
	s.AddTool(createGetRatiosTool(), handleGetRatios(a.AnalysisService, logger))
	s.AddTool(createEstimateBetaTool(), handleEstimateBeta(a.AnalysisService, logger))
	s.AddTool(createValueCompanyTool(), handleValueCompany(a.AnalysisService, logger))
	s.AddTool(createListReportsTool(), handleListReports(a.Storage, logger))
}
