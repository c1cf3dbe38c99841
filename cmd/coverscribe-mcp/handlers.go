package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/interfaces"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleGetReport implements the get_report tool
func handleGetReport(reports interfaces.ReportService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return textResult("Error: ticker parameter is required"), nil
		}

		result, found := reports.GetCached(ctx, ticker)
		if !found {
			return textResult(fmt.Sprintf("No cached memo for %s. Use generate_report to create one.", ticker)), nil
		}

		return textResult(formatReport(result)), nil
	}
}

// handleGenerateReport implements the generate_report tool
func handleGenerateReport(reports interfaces.ReportService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return textResult("Error: ticker parameter is required"), nil
		}
		refresh := request.GetBool("refresh", false)

		result, err := reports.Generate(ctx, ticker, refresh)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Memo generation failed")
			return textResult(fmt.Sprintf("Generation failed: %v", err)), nil
		}

		return textResult(formatReport(result)), nil
	}
}

// handleMarketMovers implements the market_movers tool
func handleMarketMovers(portfolio interfaces.PortfolioService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		refresh := request.GetBool("refresh", false)

		movers, err := portfolio.Movers(ctx, refresh)
		if err != nil {
			logger.Error().Err(err).Msg("Movers fetch failed")
			return textResult(fmt.Sprintf("Movers fetch failed: %v", err)), nil
		}

		return textResult(formatMovers(movers)), nil
	}
}
