package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/coverscribe/coverscribe/internal/models"
)

// formatReport formats a memo result as markdown
func formatReport(result *models.ReportResult) string {
	var sb strings.Builder

	source := "freshly generated"
	if result.Cached {
		source = "cached"
	}
	sb.WriteString(fmt.Sprintf("# %s — Initiation of Coverage\n\n", result.Payload.Ticker))
	sb.WriteString(fmt.Sprintf("**Generated:** %s (%s)\n\n", result.GeneratedAt.Format(time.RFC3339), source))
	sb.WriteString("---\n\n")
	sb.WriteString(result.Payload.Report)
	sb.WriteString("\n")

	return sb.String()
}

// formatMovers formats the market movers snapshot as markdown
func formatMovers(movers *models.MarketMovers) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Market Movers — %s\n\n", movers.AsOf))

	writeMoverTable(&sb, "Top Gainers", movers.TopGainers)
	writeMoverTable(&sb, "Top Losers", movers.TopLosers)

	return sb.String()
}

func writeMoverTable(sb *strings.Builder, title string, movers []models.Mover) {
	sb.WriteString(fmt.Sprintf("### %s\n\n", title))
	if len(movers) == 0 {
		sb.WriteString("None.\n\n")
		return
	}

	sb.WriteString("| Ticker | Price | Change | Change % | Volume |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, m := range movers {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %+.2f | %+.2f%% | %d |\n",
			m.Ticker, m.Price, m.ChangeAmount, m.ChangePercent, m.Volume))
	}
	sb.WriteString("\n")
}
