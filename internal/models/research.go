package models

// FilingData holds the extracted sections of a company's latest 10-K filing.
// This is the payload stored under the sec-filing cache category.
type FilingData struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"companyName"`
	FiledAt     string `json:"filedAt"`
	FiscalYear  string `json:"fiscalYear"`
	// Sections maps item name (e.g. "Business", "Risk Factors", "MD&A")
	// to extracted text
	Sections map[string]string `json:"sections"`
}

// Transcript is a single earnings call transcript.
type Transcript struct {
	Year       int    `json:"year"`
	Quarter    int    `json:"quarter"`
	Transcript string `json:"transcript"`
}

// TranscriptData holds recent earnings call transcripts for a company.
// This is the payload stored under the earnings-transcript cache category.
type TranscriptData struct {
	Ticker      string       `json:"ticker"`
	CompanyName string       `json:"companyName"`
	Transcripts []Transcript `json:"transcripts"`
}

// ResearchSource identifies one web page that contributed to the research
// narrative.
type ResearchSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ResearchData holds the assembled web research narrative for a ticker.
// This is the payload stored under the web-research cache category.
type ResearchData struct {
	Ticker    string           `json:"ticker"`
	Narrative string           `json:"narrative"`
	Sources   []ResearchSource `json:"sources"`
}

// FinancialSnapshot holds computed financial metrics for a ticker.
// This is the payload stored under the financial-snapshot cache category.
type FinancialSnapshot struct {
	Ticker           string  `json:"ticker"`
	CompanyName      string  `json:"companyName"`
	Sector           string  `json:"sector"`
	Industry         string  `json:"industry"`
	MarketCap        float64 `json:"marketCap"`
	PERatio          float64 `json:"peRatio"`
	ForwardPE        float64 `json:"forwardPE"`
	PriceToSales     float64 `json:"priceToSales"`
	EVToEBITDA       float64 `json:"evToEbitda"`
	ProfitMargin     float64 `json:"profitMargin"`
	OperatingMargin  float64 `json:"operatingMargin"`
	RevenueTTM       float64 `json:"revenueTTM"`
	RevenueGrowthYoY float64 `json:"revenueGrowthYoY"`
	DividendYield    float64 `json:"dividendYield"`
	Week52High       float64 `json:"week52High"`
	Week52Low        float64 `json:"week52Low"`
	LastPrice        float64 `json:"lastPrice"`
	ChangePercent    float64 `json:"changePercent"`
}

// Mover is a single entry in the daily top gainers/losers list.
type Mover struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	ChangeAmount  float64 `json:"changeAmount"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
}

// MarketMovers is the computed market snapshot for the portfolio view.
// This is the payload stored under the portfolio-snapshot cache category.
type MarketMovers struct {
	AsOf       string  `json:"asOf"` // Trading day (2006-01-02)
	TopGainers []Mover `json:"topGainers"`
	TopLosers  []Mover `json:"topLosers"`
}
