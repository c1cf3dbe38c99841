package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/common"
)

func newTestService(chromeEnabled bool) *Service {
	return NewService(&common.PDFConfig{
		ChromeEnabled: chromeEnabled,
		Timeout:       "45s",
	}, arbor.NewLogger())
}

func TestExportMarkdown(t *testing.T) {
	service := newTestService(false)

	tests := []struct {
		name     string
		markdown string
		title    string
	}{
		{
			name:     "Memo Sections",
			markdown: "# AVGO\n\n## Investment Thesis\n\nStrong **AI tailwinds** ahead.\n\n## Key Risks\n\n- Concentration\n- China exposure",
			title:    "AVGO Initiation",
		},
		{
			name:     "Empty Markdown",
			markdown: "",
			title:    "Empty",
		},
		{
			name: "Financial Table",
			markdown: `## Financial Summary

| Metric | FY2024 | FY2025E |
|--------|--------|---------|
| Revenue | $51.6B | $62.0B |
| Gross Margin | +63.0% | (1.2%) |

End of table.`,
			title: "Financials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfBytes, err := service.ExportMarkdown(tt.markdown, tt.title)
			assert.NoError(t, err)
			assert.NotEmpty(t, pdfBytes)
			assert.Equal(t, "%PDF", string(pdfBytes[:4]))
		})
	}
}

func TestExportHTMLRequiresChrome(t *testing.T) {
	service := newTestService(false)

	_, err := service.ExportHTML(context.Background(), "<html><body>x</body></html>", "x")
	assert.Error(t, err)
}
