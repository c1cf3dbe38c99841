package memo

import "strings"

// StyleCSS is the stylesheet for rendered memos. It is embedded into
// standalone documents (PDF export, email bodies) and mirrored by the web
// client's stylesheet; the class names are part of the renderer's contract.
const StyleCSS = `
body { font-family: Georgia, 'Times New Roman', serif; color: #1a1a2e; margin: 0; background: #fff; }
.memo { max-width: 880px; margin: 0 auto; padding: 32px 40px; line-height: 1.55; }
.memo-header { border-bottom: 3px solid #1a1a2e; padding-bottom: 12px; margin-bottom: 20px; }
.memo-header h1 { margin: 0; font-size: 26px; letter-spacing: 0.5px; }
.company-name { font-size: 18px; font-weight: normal; color: #555; }
.memo-subtitle { font-size: 13px; text-transform: uppercase; letter-spacing: 2px; color: #8a6d1f; margin-top: 4px; }
.memo-date { color: #888; letter-spacing: normal; text-transform: none; margin-left: 8px; }
.section-heading { font-size: 17px; border-bottom: 1px solid #d9d4c5; padding-bottom: 4px; margin: 26px 0 12px; }
.thesis-box { background: #f6f3ea; border-left: 4px solid #8a6d1f; padding: 14px 18px; margin: 18px 0; }
.thesis-label { font-size: 12px; font-weight: bold; text-transform: uppercase; letter-spacing: 2px; color: #8a6d1f; margin-bottom: 6px; }
.insight-callout { background: #eef3f6; border-left: 4px solid #2c5f77; padding: 10px 16px; margin: 12px 0; font-style: italic; }
.risk-item { border-left: 3px solid #a33b3b; padding: 8px 14px; margin: 10px 0; background: #faf6f6; }
.customer-card { border-left: 3px solid #2c5f77; padding: 8px 14px; margin: 10px 0; background: #f5f8fa; }
.competitor-card { border-left: 3px solid #666; padding: 8px 14px; margin: 10px 0; background: #f7f7f7; }
.card-title { font-weight: bold; margin-bottom: 4px; }
.debate-item { margin: 14px 0; padding: 10px 14px; border: 1px solid #d9d4c5; }
.debate-question { font-weight: bold; margin-bottom: 8px; }
.bull-case { color: #1e5c34; margin: 6px 0; }
.bear-case { color: #7a2424; margin: 6px 0; }
.case-label { font-size: 11px; font-weight: bold; text-transform: uppercase; letter-spacing: 1px; margin-right: 6px; }
.qa-item { margin: 12px 0; }
.qa-question { font-weight: bold; }
.qa-answer { color: #333; margin-top: 4px; padding-left: 14px; border-left: 2px solid #d9d4c5; }
.data-table { border-collapse: collapse; width: 100%; margin: 14px 0; font-size: 14px; }
.data-table th, .data-table td { border-bottom: 1px solid #d9d4c5; padding: 6px 10px; }
.data-table thead th { border-bottom: 2px solid #1a1a2e; font-size: 12px; text-transform: uppercase; letter-spacing: 1px; }
.data-table .col-label { text-align: left; }
.data-table .col-value { text-align: right; font-variant-numeric: tabular-nums; }
.data-table .col-estimate { background: #f6f3ea; }
.data-table .negative { color: #a33b3b; }
.data-table .row-margin .col-label { padding-left: 26px; font-style: italic; color: #555; }
`

// StandaloneHTML wraps a rendered memo fragment into a complete document
// with the stylesheet inlined, suitable for PDF printing or email.
func StandaloneHTML(title, fragment string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + inline(title) + "</title>\n")
	b.WriteString("<style>" + StyleCSS + "</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(fragment)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
