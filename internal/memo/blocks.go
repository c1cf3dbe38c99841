// Package memo turns raw generated memo text into an ordered sequence of
// typed section blocks and renders those blocks to styled HTML. Parsing is
// best-effort: malformed input degrades to plain paragraphs, it never fails.
package memo

// BlockKind identifies which structural template a parsed section maps to.
// The renderer matches on it exhaustively; an unknown kind renders as a
// plain paragraph.
type BlockKind string

const (
	BlockHeading          BlockKind = "heading"
	BlockParagraph        BlockKind = "paragraph"
	BlockNumberedSub      BlockKind = "numbered-subsection"
	BlockCustomerItem     BlockKind = "customer-item"
	BlockCompetitorItem   BlockKind = "competitor-item"
	BlockDebateItem       BlockKind = "debate-item"
	BlockRiskItem         BlockKind = "risk-item"
	BlockQAItem           BlockKind = "qa-item"
	BlockDataTable        BlockKind = "data-table"
	BlockValuationCallout BlockKind = "valuation-callout"
)

// Block is one parsed section element. Ordering is significant and preserved
// from the source text; blocks carry no references to one another.
//
// Field use is kind-specific: Text for paragraph-like kinds, Children for
// numbered subsections, BullCase/BearCase for debate items, Question/Answer
// for Q&A items, Table for data tables.
type Block struct {
	Kind     BlockKind
	Title    string
	Text     string
	Children []Block
	BullCase string
	BearCase string
	Question string
	Answer   string
	Table    *Table
}

// Table is a parsed markdown pipe table with per-column and per-cell
// presentation flags computed at parse time.
type Table struct {
	Headers []string
	// Estimate marks columns whose header names a forward estimate.
	// Index-aligned with Headers.
	Estimate []bool
	Rows     []TableRow
}

// TableRow is one data row. MarginGrowth rows get indented labels and
// explicit "+" signs on positive values.
type TableRow struct {
	Cells        []TableCell
	MarginGrowth bool
}

// TableCell carries the display text after sign normalization.
type TableCell struct {
	Text     string
	Negative bool
}

// Document is a parsed memo plus the header fields the renderer places
// above the block sequence.
type Document struct {
	Ticker      string
	CompanyName string
	GeneratedAt string
	Blocks      []Block
}
