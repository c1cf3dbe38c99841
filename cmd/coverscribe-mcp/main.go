package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/coverscribe/coverscribe/internal/app"
	"github.com/coverscribe/coverscribe/internal/common"
)

func main() {
	configPath := os.Getenv("COVERSCRIBE_CONFIG")
	if configPath == "" {
		configPath = "coverscribe.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console-only logger at warn level to keep the MCP stdio channel clean.
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"coverscribe",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGetReportTool(), handleGetReport(application.ReportService, logger))
	mcpServer.AddTool(createGenerateReportTool(), handleGenerateReport(application.ReportService, logger))
	mcpServer.AddTool(createMarketMoversTool(), handleMarketMovers(application.PortfolioService, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
