// Package edgar provides a client for the sec-api.io filing query and
// extractor endpoints, used to pull sectioned text out of a company's most
// recent 10-K.
package edgar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/coverscribe/coverscribe/internal/interfaces"
	"github.com/coverscribe/coverscribe/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the sec-api.io API.
	DefaultBaseURL = "https://api.sec-api.io"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// tenKItems lists the extractor item codes pulled from each 10-K, with the
// section names used in prompts.
var tenKItems = []struct {
	code string
	name string
}{
	{"1", "Business"},
	{"1A", "Risk Factors"},
	{"7", "Management's Discussion and Analysis"},
	{"8", "Financial Statements and Supplementary Data"},
}

// Client queries and extracts SEC filings via sec-api.io.
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

// NewClient creates a new sec-api.io client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ interfaces.FilingSource = (*Client)(nil)

// filingQuery is the query endpoint request body.
type filingQuery struct {
	Query string                         `json:"query"`
	From  string                         `json:"from"`
	Size  string                         `json:"size"`
	Sort  []map[string]map[string]string `json:"sort"`
}

type filing struct {
	CompanyName         string `json:"companyName"`
	FiledAt             string `json:"filedAt"`
	PeriodOfReport      string `json:"periodOfReport"`
	LinkToFilingDetails string `json:"linkToFilingDetails"`
}

type filingQueryResponse struct {
	Filings []filing `json:"filings"`
}

// LatestTenK finds the company's most recent 10-K and extracts the business,
// risk-factor, and MD&A sections. A section that fails to extract is
// skipped; at least one section must extract for the call to succeed.
func (c *Client) LatestTenK(ctx context.Context, ticker string) (*models.FilingData, error) {
	filing, err := c.queryLatestTenK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	data := &models.FilingData{
		Ticker:      ticker,
		CompanyName: filing.CompanyName,
		FiledAt:     filing.FiledAt,
		FiscalYear:  fiscalYear(filing.PeriodOfReport),
		Sections:    make(map[string]string),
	}

	for _, item := range tenKItems {
		text, err := c.extractSection(ctx, filing.LinkToFilingDetails, item.code)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn().
					Err(err).
					Str("ticker", ticker).
					Str("item", item.code).
					Msg("Filing section extraction failed, skipping")
			}
			continue
		}
		if text != "" {
			data.Sections[item.name] = text
		}
	}

	if len(data.Sections) == 0 {
		return nil, fmt.Errorf("no sections extracted from %s 10-K", ticker)
	}

	return data, nil
}

func (c *Client) queryLatestTenK(ctx context.Context, ticker string) (*filing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := filingQuery{
		Query: fmt.Sprintf(`ticker:%s AND formType:"10-K"`, ticker),
		From:  "0",
		Size:  "1",
		Sort:  []map[string]map[string]string{{"filedAt": {"order": "desc"}}},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filing query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	if c.logger != nil {
		c.logger.Debug().Str("ticker", ticker).Msg("SEC filing query")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(msg), Endpoint: "/"}
	}

	var result filingQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode filing query response: %w", err)
	}
	if len(result.Filings) == 0 {
		return nil, fmt.Errorf("no 10-K filings found for %s", ticker)
	}

	return &result.Filings[0], nil
}

// extractSection calls the extractor endpoint for one filing item.
func (c *Client) extractSection(ctx context.Context, filingURL, item string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("url", filingURL)
	params.Set("item", item)
	params.Set("type", "text")
	params.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/extractor?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", &APIError{StatusCode: resp.StatusCode, Message: string(msg), Endpoint: "/extractor"}
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read section text: %w", err)
	}
	return string(text), nil
}

// fiscalYear pulls the year out of a period-of-report date (2006-01-02).
func fiscalYear(periodOfReport string) string {
	if len(periodOfReport) >= 4 {
		return periodOfReport[:4]
	}
	return ""
}
