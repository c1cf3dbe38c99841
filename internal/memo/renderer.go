package memo

import (
	"html"
	"regexp"
	"strings"
)

var boldRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// inline escapes text for HTML and converts **bold** runs to <strong>.
// Escaping happens first so the bold markers survive untouched.
func inline(text string) string {
	escaped := html.EscapeString(text)
	return boldRe.ReplaceAllString(escaped, "<strong>$1</strong>")
}

// Render produces the styled HTML document for a parsed memo. The mapping
// from block kind to markup is fixed and stateless: each kind has exactly
// one template and only the text content varies.
//
// The investment thesis callout, when present, always renders first under
// the document header; every other block keeps source order.
func Render(doc Document) string {
	var b strings.Builder

	b.WriteString(`<div class="memo">` + "\n")
	b.WriteString(`<header class="memo-header">` + "\n")
	b.WriteString(`<h1>` + inline(doc.Ticker))
	if doc.CompanyName != "" {
		b.WriteString(` <span class="company-name">` + inline(doc.CompanyName) + `</span>`)
	}
	b.WriteString("</h1>\n")
	b.WriteString(`<div class="memo-subtitle">Initiation of Coverage`)
	if doc.GeneratedAt != "" {
		b.WriteString(` <span class="memo-date">` + inline(doc.GeneratedAt) + `</span>`)
	}
	b.WriteString("</div>\n</header>\n")

	thesis, rest := splitThesis(doc.Blocks)
	if thesis != nil {
		renderBlock(&b, *thesis)
	}
	for _, block := range rest {
		renderBlock(&b, block)
	}

	b.WriteString("</div>\n")
	return b.String()
}

// splitThesis pulls the first titled valuation callout (the investment
// thesis) out of the sequence. Untitled callouts are Key Insight extracts
// and stay in place.
func splitThesis(blocks []Block) (*Block, []Block) {
	for i, block := range blocks {
		if block.Kind == BlockValuationCallout && block.Title != "" {
			rest := make([]Block, 0, len(blocks)-1)
			rest = append(rest, blocks[:i]...)
			rest = append(rest, blocks[i+1:]...)
			return &blocks[i], rest
		}
	}
	return nil, blocks
}

func renderBlock(b *strings.Builder, block Block) {
	switch block.Kind {
	case BlockHeading:
		b.WriteString(`<h2 class="section-heading">` + inline(block.Title) + "</h2>\n")

	case BlockValuationCallout:
		if block.Title != "" {
			b.WriteString(`<div class="thesis-box">` + "\n")
			b.WriteString(`<div class="thesis-label">` + inline(block.Title) + "</div>\n")
			renderParagraphs(b, block.Text)
			b.WriteString("</div>\n")
		} else {
			b.WriteString(`<div class="insight-callout">` + inline(block.Text) + "</div>\n")
		}

	case BlockNumberedSub:
		b.WriteString(`<div class="subsection">` + "\n")
		b.WriteString(`<h3>` + inline(block.Title) + "</h3>\n")
		for _, child := range block.Children {
			renderBlock(b, child)
		}
		b.WriteString("</div>\n")

	case BlockRiskItem:
		renderCard(b, "risk-item", block)

	case BlockCustomerItem:
		renderCard(b, "customer-card", block)

	case BlockCompetitorItem:
		renderCard(b, "competitor-card", block)

	case BlockDebateItem:
		b.WriteString(`<div class="debate-item">` + "\n")
		b.WriteString(`<div class="debate-question">` + inline(block.Title) + "</div>\n")
		if block.Text != "" {
			renderParagraphs(b, block.Text)
		}
		if block.BullCase != "" {
			b.WriteString(`<div class="bull-case"><span class="case-label">Bull Case</span> ` + inline(block.BullCase) + "</div>\n")
		}
		if block.BearCase != "" {
			b.WriteString(`<div class="bear-case"><span class="case-label">Bear Case</span> ` + inline(block.BearCase) + "</div>\n")
		}
		b.WriteString("</div>\n")

	case BlockQAItem:
		b.WriteString(`<div class="qa-item">` + "\n")
		b.WriteString(`<div class="qa-question">` + inline(block.Question) + "</div>\n")
		b.WriteString(`<div class="qa-answer">` + inline(block.Answer) + "</div>\n")
		b.WriteString("</div>\n")

	case BlockDataTable:
		renderTable(b, block.Table)

	case BlockParagraph:
		fallthrough
	default:
		renderParagraphs(b, block.Text)
	}
}

// renderCard is the shared card template for risk/customer/competitor
// items: an accent-bordered box with a bold title.
func renderCard(b *strings.Builder, class string, block Block) {
	b.WriteString(`<div class="` + class + `">` + "\n")
	b.WriteString(`<div class="card-title">` + inline(block.Title) + "</div>\n")
	renderParagraphs(b, block.Text)
	b.WriteString("</div>\n")
}

func renderParagraphs(b *strings.Builder, text string) {
	for _, para := range splitParagraphs(text) {
		b.WriteString(`<p>` + inline(para) + "</p>\n")
	}
}

// renderTable emits the data table: column 0 is the left-aligned label
// column, all others right-aligned; estimate columns and negative cells get
// marker classes; margin/growth rows indent their label.
func renderTable(b *strings.Builder, table *Table) {
	if table == nil {
		return
	}

	b.WriteString(`<table class="data-table">` + "\n<thead>\n<tr>\n")
	for i, h := range table.Headers {
		classes := []string{"col-label"}
		if i > 0 {
			classes = []string{"col-value"}
			if table.Estimate[i] {
				classes = append(classes, "col-estimate")
			}
		}
		b.WriteString(`<th class="` + strings.Join(classes, " ") + `">` + inline(h) + "</th>\n")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")

	for _, row := range table.Rows {
		rowClass := ""
		if row.MarginGrowth {
			rowClass = ` class="row-margin"`
		}
		b.WriteString("<tr" + rowClass + ">\n")
		for i, cell := range row.Cells {
			classes := []string{"col-label"}
			if i > 0 {
				classes = []string{"col-value"}
				if i < len(table.Estimate) && table.Estimate[i] {
					classes = append(classes, "col-estimate")
				}
				if cell.Negative {
					classes = append(classes, "negative")
				}
			}
			b.WriteString(`<td class="` + strings.Join(classes, " ") + `">` + inline(cell.Text) + "</td>\n")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
}
