package report

import (
	"fmt"
	"strings"

	"github.com/coverscribe/coverscribe/internal/models"
)

// systemPrompt fixes the memo structure. The section headings here are the
// same ones the parser classifies on, so generation and parsing stay in
// step.
const systemPrompt = `You are a senior equity research analyst writing an initiation-of-coverage memo.

Write in markdown with exactly these top-level sections, in this order:

## Investment Thesis
## Business Overview
## Financial Summary
## Valuation
## Key Customers & Partnerships
## Competitive Landscape
## Key Debates
## Key Risks
## Appendix: Earnings Call Q&A

Formatting rules:
- Number items in the customers, competitive, debates, and risks sections as "### 1. Title" sub-headings.
- In Key Debates, give each debate a "**Bull Case:**" and a "**Bear Case:**" line.
- Present financial figures and estimates as markdown tables; suffix estimate column headers with "E" (e.g. FY2026E).
- Mark one pivotal observation in Business Overview with a "**Key Insight:**" prefix.
- In the appendix, format management commentary as "**Q:**" and "**A:**" pairs drawn from the transcripts.
- Be specific and quantitative. Do not invent figures absent from the provided context.`

// maxSectionChars bounds each context section so a long 10-K cannot crowd
// everything else out of the prompt.
const maxSectionChars = 30000

// buildPrompt assembles the user prompt from whichever research sources
// succeeded. Missing sources are simply absent from the context; the model
// is told what it has.
func buildPrompt(ticker string, filing *models.FilingData, transcripts *models.TranscriptData, research *models.ResearchData, financials *models.FinancialSnapshot) string {
	var b strings.Builder

	company := companyName(filing, financials)
	if company != "" {
		fmt.Fprintf(&b, "Write an initiation-of-coverage memo for %s (%s).\n\n", company, ticker)
	} else {
		fmt.Fprintf(&b, "Write an initiation-of-coverage memo for %s.\n\n", ticker)
	}

	b.WriteString("Use only the research context below.\n")

	if filing != nil {
		fmt.Fprintf(&b, "\n# SEC 10-K FILING (fiscal year %s, filed %s)\n\n", filing.FiscalYear, filing.FiledAt)
		for name, text := range filing.Sections {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", name, clip(text))
		}
	}

	if transcripts != nil && len(transcripts.Transcripts) > 0 {
		b.WriteString("\n# EARNINGS CALL TRANSCRIPTS\n\n")
		for _, tr := range transcripts.Transcripts {
			fmt.Fprintf(&b, "## Q%d %d\n\n%s\n\n", tr.Quarter, tr.Year, clip(tr.Transcript))
		}
	}

	if research != nil && research.Narrative != "" {
		b.WriteString("\n# RECENT WEB RESEARCH\n\n")
		b.WriteString(clip(research.Narrative))
		b.WriteString("\n")
	}

	if financials != nil {
		b.WriteString("\n# FINANCIAL SNAPSHOT\n\n")
		b.WriteString(formatFinancials(financials))
	}

	return b.String()
}

func companyName(filing *models.FilingData, financials *models.FinancialSnapshot) string {
	if filing != nil && filing.CompanyName != "" {
		return filing.CompanyName
	}
	if financials != nil && financials.CompanyName != "" {
		return financials.CompanyName
	}
	return ""
}

func clip(text string) string {
	if len(text) > maxSectionChars {
		return text[:maxSectionChars]
	}
	return text
}

func formatFinancials(f *models.FinancialSnapshot) string {
	var b strings.Builder
	if f.Sector != "" {
		fmt.Fprintf(&b, "Sector: %s / %s\n", f.Sector, f.Industry)
	}
	writeMetric(&b, "Market Cap", f.MarketCap)
	writeMetric(&b, "Last Price", f.LastPrice)
	writeMetric(&b, "Change %% (day)", f.ChangePercent)
	writeMetric(&b, "P/E (trailing)", f.PERatio)
	writeMetric(&b, "P/E (forward)", f.ForwardPE)
	writeMetric(&b, "Price/Sales (TTM)", f.PriceToSales)
	writeMetric(&b, "EV/EBITDA", f.EVToEBITDA)
	writeMetric(&b, "Profit Margin", f.ProfitMargin)
	writeMetric(&b, "Operating Margin (TTM)", f.OperatingMargin)
	writeMetric(&b, "Revenue (TTM)", f.RevenueTTM)
	writeMetric(&b, "Revenue Growth YoY", f.RevenueGrowthYoY)
	writeMetric(&b, "Dividend Yield", f.DividendYield)
	writeMetric(&b, "52-Week High", f.Week52High)
	writeMetric(&b, "52-Week Low", f.Week52Low)
	return b.String()
}

func writeMetric(b *strings.Builder, label string, value float64) {
	if value == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %g\n", label, value)
}
