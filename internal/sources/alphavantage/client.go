// Package alphavantage provides a client for the Alpha Vantage API, used
// for financial ratios, quote data, and the daily top gainers/losers list.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/coverscribe/coverscribe/internal/interfaces"
	"github.com/coverscribe/coverscribe/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Alpha Vantage API.
	DefaultBaseURL = "https://www.alphavantage.co"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per minute on
	// the free tier is 25; one per second stays well inside burst limits).
	DefaultRateLimit = 1

	// moversLimit caps each side of the gainers/losers list.
	moversLimit = 10
)

// Client fetches financial data from Alpha Vantage.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Alpha Vantage client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ interfaces.FinancialSource = (*Client)(nil)

// get performs a GET against the query endpoint for one function.
func (c *Client) get(ctx context.Context, function string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().Str("function", function).Msg("Alpha Vantage request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("alpha vantage error: %s (status: %d)", string(msg), resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// overviewResponse is the OVERVIEW function response. Every numeric field
// arrives as a string; "None" and "-" mean absent.
type overviewResponse struct {
	Symbol                     string `json:"Symbol"`
	Name                       string `json:"Name"`
	Sector                     string `json:"Sector"`
	Industry                   string `json:"Industry"`
	MarketCapitalization       string `json:"MarketCapitalization"`
	PERatio                    string `json:"PERatio"`
	ForwardPE                  string `json:"ForwardPE"`
	PriceToSalesRatioTTM       string `json:"PriceToSalesRatioTTM"`
	EVToEBITDA                 string `json:"EVToEBITDA"`
	ProfitMargin               string `json:"ProfitMargin"`
	OperatingMarginTTM         string `json:"OperatingMarginTTM"`
	RevenueTTM                 string `json:"RevenueTTM"`
	QuarterlyRevenueGrowthYOY  string `json:"QuarterlyRevenueGrowthYOY"`
	DividendYield              string `json:"DividendYield"`
	FiftyTwoWeekHigh           string `json:"52WeekHigh"`
	FiftyTwoWeekLow            string `json:"52WeekLow"`
}

// quoteResponse is the GLOBAL_QUOTE function response.
type quoteResponse struct {
	GlobalQuote struct {
		Price         string `json:"05. price"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// Snapshot combines the OVERVIEW and GLOBAL_QUOTE functions into one
// financial snapshot. A quote failure degrades to overview-only data.
func (c *Client) Snapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	var overview overviewResponse
	if err := c.get(ctx, "OVERVIEW", params, &overview); err != nil {
		return nil, err
	}
	if overview.Symbol == "" {
		return nil, fmt.Errorf("no overview data for %s", ticker)
	}

	snapshot := &models.FinancialSnapshot{
		Ticker:           ticker,
		CompanyName:      overview.Name,
		Sector:           overview.Sector,
		Industry:         overview.Industry,
		MarketCap:        parseNumeric(overview.MarketCapitalization),
		PERatio:          parseNumeric(overview.PERatio),
		ForwardPE:        parseNumeric(overview.ForwardPE),
		PriceToSales:     parseNumeric(overview.PriceToSalesRatioTTM),
		EVToEBITDA:       parseNumeric(overview.EVToEBITDA),
		ProfitMargin:     parseNumeric(overview.ProfitMargin),
		OperatingMargin:  parseNumeric(overview.OperatingMarginTTM),
		RevenueTTM:       parseNumeric(overview.RevenueTTM),
		RevenueGrowthYoY: parseNumeric(overview.QuarterlyRevenueGrowthYOY),
		DividendYield:    parseNumeric(overview.DividendYield),
		Week52High:       parseNumeric(overview.FiftyTwoWeekHigh),
		Week52Low:        parseNumeric(overview.FiftyTwoWeekLow),
	}

	var quote quoteResponse
	if err := c.get(ctx, "GLOBAL_QUOTE", cloneParams(params), &quote); err != nil {
		if c.logger != nil {
			c.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote fetch failed, snapshot has no price")
		}
		return snapshot, nil
	}
	snapshot.LastPrice = parseNumeric(quote.GlobalQuote.Price)
	snapshot.ChangePercent = parseNumeric(quote.GlobalQuote.ChangePercent)

	return snapshot, nil
}

// moversResponse is the TOP_GAINERS_LOSERS function response.
type moversResponse struct {
	LastUpdated string      `json:"last_updated"`
	TopGainers  []moverItem `json:"top_gainers"`
	TopLosers   []moverItem `json:"top_losers"`
}

type moverItem struct {
	Ticker           string `json:"ticker"`
	Price            string `json:"price"`
	ChangeAmount     string `json:"change_amount"`
	ChangePercentage string `json:"change_percentage"`
	Volume           string `json:"volume"`
}

// Movers returns the day's top gainers and losers, capped on each side.
func (c *Client) Movers(ctx context.Context) (*models.MarketMovers, error) {
	var result moversResponse
	if err := c.get(ctx, "TOP_GAINERS_LOSERS", nil, &result); err != nil {
		return nil, err
	}
	if len(result.TopGainers) == 0 && len(result.TopLosers) == 0 {
		return nil, fmt.Errorf("movers response was empty")
	}

	movers := &models.MarketMovers{}
	for i, item := range result.TopGainers {
		if i >= moversLimit {
			break
		}
		movers.TopGainers = append(movers.TopGainers, toMover(item))
	}
	for i, item := range result.TopLosers {
		if i >= moversLimit {
			break
		}
		movers.TopLosers = append(movers.TopLosers, toMover(item))
	}
	return movers, nil
}

func toMover(item moverItem) models.Mover {
	volume, _ := strconv.ParseInt(item.Volume, 10, 64)
	return models.Mover{
		Ticker:        item.Ticker,
		Price:         parseNumeric(item.Price),
		ChangeAmount:  parseNumeric(item.ChangeAmount),
		ChangePercent: parseNumeric(item.ChangePercentage),
		Volume:        volume,
	}
}

// parseNumeric parses the API's stringly-typed numbers. "None", "-", and
// unparseable values come back as zero; percent signs are stripped.
func parseNumeric(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" || s == "None" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func cloneParams(params url.Values) url.Values {
	clone := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			clone.Add(k, v)
		}
	}
	return clone
}
