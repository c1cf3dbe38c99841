package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ExportMarkdown renders the raw memo markdown to PDF with fpdf. This is
// the browserless fallback: no CSS styling, but every section, table, and
// emphasis run survives.
func (s *Service) ExportMarkdown(markdown, title string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Rendering markdown to PDF")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 10)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
	)
	source := []byte(markdown)
	tree := md.Parser().Parse(text.NewReader(source))

	renderer := &memoRenderer{
		pdf:    doc,
		source: source,
		font:   "Helvetica",
		size:   10,
	}
	if err := ast.Walk(tree, renderer.walk); err != nil {
		s.logger.Error().Err(err).Msg("Markdown PDF render failed")
		return nil, fmt.Errorf("failed to render markdown to PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to produce PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("Markdown PDF rendered")
	return buf.Bytes(), nil
}

// memoRenderer walks the goldmark AST and draws into an fpdf page.
type memoRenderer struct {
	pdf    *fpdf.Fpdf
	source []byte
	font   string
	size   float64
	bold   bool
	italic bool
	inList bool
}

func (r *memoRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *memoRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		r.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(7)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(5, string(node.Text(r.source)))
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.List:
		r.inList = entering
		if !entering {
			r.pdf.Ln(2)
		}
	case *ast.ListItem:
		if entering {
			r.pdf.Ln(5)
			r.pdf.SetX(20)
			r.pdf.Write(5, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			r.pdf.Ln(3)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(3)
		}
	case *extast.Table:
		if entering {
			r.table(node)
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *memoRenderer) heading(n *ast.Heading, entering bool) {
	if entering {
		r.pdf.Ln(6)
		size := 11.0
		switch n.Level {
		case 1:
			size = 16
		case 2:
			size = 13
		case 3:
			size = 11.5
		}
		r.pdf.SetFont(r.font, "B", size)
		return
	}
	r.pdf.Ln(6)
	r.updateFont()
}

func (r *memoRenderer) table(n *extast.Table) {
	var rows [][]string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *extast.TableHeader, *extast.TableRow:
			rows = append(rows, r.cells(child))
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	colWidth := 180.0 / float64(len(rows[0]))
	r.pdf.Ln(3)
	r.pdf.SetFont(r.font, "B", 8.5)
	for i, row := range rows {
		if i == 1 {
			r.pdf.SetFont(r.font, "", 8.5)
		}
		for j, cell := range row {
			align := "R"
			if j == 0 {
				align = "L"
			}
			r.pdf.CellFormat(colWidth, 5.5, cell, "1", 0, align, false, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(3)
	r.updateFont()
}

func (r *memoRenderer) cells(n ast.Node) []string {
	var row []string
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			row = append(row, string(cell.Text(r.source)))
		}
	}
	return row
}
