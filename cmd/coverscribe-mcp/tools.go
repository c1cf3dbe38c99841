package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetReportTool returns the get_report tool definition
func createGetReportTool() mcp.Tool {
	return mcp.NewTool("get_report",
		mcp.WithDescription("Retrieve the cached initiation-of-coverage memo for a stock ticker. Does not trigger generation."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("US exchange ticker symbol (e.g. AAPL, BRK.B)"),
		),
	)
}

// createGenerateReportTool returns the generate_report tool definition
func createGenerateReportTool() mcp.Tool {
	return mcp.NewTool("generate_report",
		mcp.WithDescription("Generate an initiation-of-coverage memo for a stock ticker. Collects SEC filings, earnings transcripts, web research, and financial metrics, then writes the memo. Slow: can take minutes."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("US exchange ticker symbol (e.g. AAPL, BRK.B)"),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Bypass all caches and re-fetch every source (default: false)"),
		),
	)
}

// createMarketMoversTool returns the market_movers tool definition
func createMarketMoversTool() mcp.Tool {
	return mcp.NewTool("market_movers",
		mcp.WithDescription("Get the current trading day's top stock gainers and losers"),
		mcp.WithBoolean("refresh",
			mcp.Description("Bypass the snapshot cache (default: false)"),
		),
	)
}
