package memo

import (
	"regexp"
	"sort"
	"strings"
)

// Section classification is an ordered, case-insensitive substring match on
// the heading. First match wins; order matters because headings like
// "Key Debates and Risks" must hit their primary classifier.
type sectionKind int

const (
	sectionThesis sectionKind = iota
	sectionRisks
	sectionDebates
	sectionCustomers
	sectionCompetitive
	sectionValuation
	sectionFinancial
	sectionAppendix
	sectionGeneric
)

var sectionClassifiers = []struct {
	keyword string
	kind    sectionKind
}{
	{"investment thesis", sectionThesis},
	{"key risks", sectionRisks},
	{"key debates", sectionDebates},
	{"key customers", sectionCustomers},
	{"partnership", sectionCustomers},
	{"competitive", sectionCompetitive},
	{"valuation", sectionValuation},
	{"financial", sectionFinancial},
	{"appendix", sectionAppendix},
	{"earnings call q&a", sectionAppendix},
}

var (
	topHeadingRe    = regexp.MustCompile(`(?m)^##\s+(.+)\s*$`)
	docTitleRe      = regexp.MustCompile(`(?m)^#\s+[^#].*$`)
	numberedSubRe   = regexp.MustCompile(`(?m)^###\s+(\d+)\.\s*(.+?)\s*$`)
	numberedBoldRe  = regexp.MustCompile(`(?m)^\*\*(\d+)\.\s*([^*]+?)\s*\*\*`)
	qaPairRe        = regexp.MustCompile(`(?ms)^\*{0,2}Q:?\*{0,2}:?[ \t]*(.*?)\n\s*\*{0,2}A:?\*{0,2}:?[ \t]*(.*?)(?:\n\s*\n|\z)`)
	keyInsightRe    = regexp.MustCompile(`(?i)\*{0,2}key insight:?\*{0,2}:?\s*`)
	tableRowRe      = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	tableSepRe      = regexp.MustCompile(`^\s*\|[\s:|-]+\|\s*$`)
	marginGrowthRe  = regexp.MustCompile(`(?i)(margin|growth|yoy)`)
	parenNegativeRe = regexp.MustCompile(`^\((.+)\)$`)
	blankLineRe     = regexp.MustCompile(`\n\s*\n`)
	bullSpanRe      = labeledSpanRe("Bull Case")
	bearSpanRe      = labeledSpanRe("Bear Case")
)

func labeledSpanRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)\*{0,2}` + regexp.QuoteMeta(label) + `:?\*{0,2}:?\s*(.*?)(?:\n\s*\n|\n\s*\*{0,2}(?:Bull|Bear) Case|\z)`)
}

// Parse splits raw memo text into an ordered block sequence. It never
// returns an error: sections that do not match their expected shape fall
// back to plain paragraphs.
func Parse(raw string) []Block {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var blocks []Block
	for _, sec := range splitSections(raw) {
		blocks = append(blocks, parseSection(sec)...)
	}
	return blocks
}

type section struct {
	title string
	body  string
}

// splitSections breaks the document on "## " headings. Text before the
// first heading keeps its paragraphs but drops a leading "# Title" line.
func splitSections(raw string) []section {
	locs := topHeadingRe.FindAllStringSubmatchIndex(raw, -1)

	var sections []section
	preamble := raw
	if len(locs) > 0 {
		preamble = raw[:locs[0][0]]
	}
	preamble = strings.TrimSpace(docTitleRe.ReplaceAllString(preamble, ""))
	if preamble != "" {
		sections = append(sections, section{title: "", body: preamble})
	}

	for i, loc := range locs {
		title := strings.TrimSpace(raw[loc[2]:loc[3]])
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(raw[loc[1]:end])
		sections = append(sections, section{title: title, body: body})
	}
	return sections
}

func classify(title string) sectionKind {
	lower := strings.ToLower(title)
	for _, c := range sectionClassifiers {
		if strings.Contains(lower, c.keyword) {
			return c.kind
		}
	}
	return sectionGeneric
}

// parseSection dispatches to the kind-specific sub-parser. Every sub-parser
// reports whether it matched; on no-match the section degrades to a heading
// plus generic paragraphs.
func parseSection(sec section) []Block {
	if sec.title == "" {
		return genericBlocks(sec.body)
	}

	switch classify(sec.title) {
	case sectionThesis:
		return []Block{{
			Kind:  BlockValuationCallout,
			Title: sec.title,
			Text:  sec.body,
		}}

	case sectionRisks:
		return headedSection(sec, func(body string) ([]Block, bool) {
			return numberedItems(body, BlockRiskItem)
		})

	case sectionDebates:
		return headedSection(sec, parseDebates)

	case sectionCustomers:
		return headedSection(sec, func(body string) ([]Block, bool) {
			return numberedItems(body, BlockCustomerItem)
		})

	case sectionCompetitive:
		return headedSection(sec, func(body string) ([]Block, bool) {
			return numberedItems(body, BlockCompetitorItem)
		})

	case sectionValuation, sectionFinancial:
		return headedSection(sec, parseTabular)

	case sectionAppendix:
		return headedSection(sec, parseQA)

	default:
		return headedSection(sec, parseSubsections)
	}
}

// parseSubsections splits a generic section on "### N. Title" sub-headings,
// nesting each sub-heading's paragraphs as children. Sections without the
// markers fall through to plain paragraphs.
func parseSubsections(body string) ([]Block, bool) {
	locs := numberedSubRe.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return nil, false
	}

	var blocks []Block
	if lead := strings.TrimSpace(body[:locs[0][0]]); lead != "" {
		blocks = append(blocks, genericBlocks(lead)...)
	}

	for i, loc := range locs {
		title := strings.TrimSpace(body[loc[4]:loc[5]])
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, Block{
			Kind:     BlockNumberedSub,
			Title:    title,
			Children: genericBlocks(strings.TrimSpace(body[loc[1]:end])),
		})
	}
	return blocks, true
}

// headedSection emits the section heading, then the sub-parser's blocks, or
// generic paragraphs when the sub-parser reports no match.
func headedSection(sec section, attempt func(string) ([]Block, bool)) []Block {
	blocks := []Block{{Kind: BlockHeading, Title: sec.title}}
	if parsed, ok := attempt(sec.body); ok {
		return append(blocks, parsed...)
	}
	return append(blocks, genericBlocks(sec.body)...)
}

// numberedItems tries the two numbered-item shapes in order: "### N. Title"
// sub-headings first, then "**N. Title**" bold lines. The first pattern
// with at least one match wins.
func numberedItems(body string, kind BlockKind) ([]Block, bool) {
	for _, re := range []*regexp.Regexp{numberedSubRe, numberedBoldRe} {
		items, ok := splitNumbered(body, re, kind)
		if ok {
			return items, true
		}
	}
	return nil, false
}

func splitNumbered(body string, re *regexp.Regexp, kind BlockKind) ([]Block, bool) {
	locs := re.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return nil, false
	}

	var blocks []Block

	// Text before the first item stays as plain paragraphs.
	if lead := strings.TrimSpace(body[:locs[0][0]]); lead != "" {
		blocks = append(blocks, paragraphBlocks(lead)...)
	}

	for i, loc := range locs {
		title := strings.TrimSpace(body[loc[4]:loc[5]])
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := strings.TrimSpace(body[loc[1]:end])
		blocks = append(blocks, Block{Kind: kind, Title: title, Text: text})
	}
	return blocks, true
}

// parseDebates splits on "### N. Question" sub-headings and pulls the
// labeled bull/bear spans out of each. A debate with a missing span keeps
// the other side and leaves the missing field empty; item text outside the
// spans stays on the block as context.
func parseDebates(body string) ([]Block, bool) {
	locs := numberedSubRe.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return nil, false
	}

	var blocks []Block
	if lead := strings.TrimSpace(body[:locs[0][0]]); lead != "" {
		blocks = append(blocks, paragraphBlocks(lead)...)
	}

	for i, loc := range locs {
		question := strings.TrimSpace(body[loc[4]:loc[5]])
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := body[loc[1]:end]

		blocks = append(blocks, Block{
			Kind:     BlockDebateItem,
			Title:    question,
			BullCase: labeledSpan(text, bullSpanRe),
			BearCase: labeledSpan(text, bearSpanRe),
			Text:     spanRemainder(text, bullSpanRe, bearSpanRe),
		})
	}
	return blocks, true
}

// labeledSpan extracts the text after "Label:" (with or without bold
// markers) up to the next labeled span or blank line.
func labeledSpan(text string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// spanRemainder returns the text with each regexp's label and captured span
// cut out, preserving whatever else the item contained. Only the labels and
// their spans go; surrounding prose stays.
func spanRemainder(text string, res ...*regexp.Regexp) string {
	type span struct{ start, end int }
	var cuts []span
	for _, re := range res {
		if m := re.FindStringSubmatchIndex(text); m != nil {
			cuts = append(cuts, span{m[0], m[3]})
		}
	}
	if len(cuts) == 0 {
		return strings.TrimSpace(text)
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].start < cuts[j].start })

	var b strings.Builder
	pos := 0
	for _, c := range cuts {
		if c.start > pos {
			b.WriteString(text[pos:c.start])
		}
		if c.end > pos {
			pos = c.end
		}
	}
	if pos < len(text) {
		b.WriteString(text[pos:])
	}
	return strings.TrimSpace(b.String())
}

// parseQA extracts repeated "Q: ... A: ..." pairs. Text around and between
// the pairs (call participants, moderator notes) is kept as paragraphs.
func parseQA(body string) ([]Block, bool) {
	locs := qaPairRe.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return nil, false
	}

	var blocks []Block
	matched := false
	pos := 0
	for _, loc := range locs {
		if gap := strings.TrimSpace(body[pos:loc[0]]); gap != "" {
			blocks = append(blocks, paragraphBlocks(gap)...)
		}
		pos = loc[1]

		q := strings.TrimSpace(body[loc[2]:loc[3]])
		a := strings.TrimSpace(body[loc[4]:loc[5]])
		if q == "" && a == "" {
			continue
		}
		matched = true
		blocks = append(blocks, Block{Kind: BlockQAItem, Question: q, Answer: a})
	}
	if !matched {
		return nil, false
	}
	if trail := strings.TrimSpace(body[pos:]); trail != "" {
		blocks = append(blocks, paragraphBlocks(trail)...)
	}
	return blocks, true
}

// parseTabular looks for a markdown pipe table in the body. Paragraph text
// around the table is kept in position.
func parseTabular(body string) ([]Block, bool) {
	lines := strings.Split(body, "\n")

	start, end := -1, -1
	for i := 0; i+1 < len(lines); i++ {
		if tableRowRe.MatchString(lines[i]) && tableSepRe.MatchString(lines[i+1]) {
			start = i
			end = i + 2
			for end < len(lines) && tableRowRe.MatchString(lines[end]) {
				end++
			}
			break
		}
	}
	if start < 0 || end-start < 3 {
		return nil, false
	}

	var blocks []Block
	if lead := strings.TrimSpace(strings.Join(lines[:start], "\n")); lead != "" {
		blocks = append(blocks, genericBlocks(lead)...)
	}

	blocks = append(blocks, Block{Kind: BlockDataTable, Table: buildTable(lines[start], lines[start+2:end])})

	if trail := strings.TrimSpace(strings.Join(lines[end:], "\n")); trail != "" {
		blocks = append(blocks, genericBlocks(trail)...)
	}
	return blocks, true
}

func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func buildTable(headerLine string, rowLines []string) *Table {
	headers := splitTableRow(headerLine)

	estimate := make([]bool, len(headers))
	for i, h := range headers {
		if i == 0 {
			continue // label column
		}
		// "FY2026E" style suffix or an explicit "est" anywhere.
		estimate[i] = strings.HasSuffix(h, "E") || strings.Contains(strings.ToLower(h), "est")
	}

	table := &Table{Headers: headers, Estimate: estimate}
	for _, line := range rowLines {
		cells := splitTableRow(line)
		if len(cells) == 0 {
			continue
		}
		row := TableRow{MarginGrowth: marginGrowthRe.MatchString(cells[0])}
		for i, c := range cells {
			row.Cells = append(row.Cells, normalizeCell(c, i == 0, row.MarginGrowth))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// normalizeCell applies sign formatting: negative values render as
// "(value)", and positive numeric values in margin/growth rows gain an
// explicit "+". Label cells pass through untouched.
func normalizeCell(text string, isLabel, marginGrowth bool) TableCell {
	if isLabel {
		return TableCell{Text: text}
	}

	if m := parenNegativeRe.FindStringSubmatch(text); m != nil {
		return TableCell{Text: "(" + strings.TrimPrefix(strings.TrimSpace(m[1]), "-") + ")", Negative: true}
	}
	if strings.HasPrefix(text, "-") {
		return TableCell{Text: "(" + strings.TrimPrefix(text, "-") + ")", Negative: true}
	}
	if marginGrowth && text != "" && !strings.HasPrefix(text, "+") && text[0] >= '0' && text[0] <= '9' {
		return TableCell{Text: "+" + text}
	}
	return TableCell{Text: text}
}

// genericBlocks splits a body into paragraphs, lifting any "Key Insight:"
// paragraph into its own callout with the label stripped.
func genericBlocks(body string) []Block {
	var blocks []Block
	for _, para := range splitParagraphs(body) {
		if keyInsightRe.MatchString(para) {
			blocks = append(blocks, Block{
				Kind: BlockValuationCallout,
				Text: strings.TrimSpace(keyInsightRe.ReplaceAllString(para, "")),
			})
			continue
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: para})
	}
	return blocks
}

// paragraphBlocks is genericBlocks without the callout extraction, for
// lead-in text inside structured sections.
func paragraphBlocks(body string) []Block {
	var blocks []Block
	for _, para := range splitParagraphs(body) {
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: para})
	}
	return blocks
}

func splitParagraphs(body string) []string {
	var paras []string
	for _, chunk := range blankLineRe.Split(body, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			paras = append(paras, chunk)
		}
	}
	return paras
}
