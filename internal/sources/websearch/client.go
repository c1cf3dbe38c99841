// Package websearch assembles a research narrative for a ticker from web
// search results: it queries the Brave Search API, fetches the top result
// pages, extracts their main content, and joins the converted markdown into
// a single narrative with source attribution.
package websearch

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

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/coverscribe/coverscribe/internal/interfaces"
	"github.com/coverscribe/coverscribe/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Brave Search API.
	DefaultBaseURL = "https://api.search.brave.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 1

	// DefaultMaxPages is how many result pages get fetched and extracted.
	DefaultMaxPages = 3

	// DefaultMaxResults is how many search results to request.
	DefaultMaxResults = 10

	// maxPageMarkdown caps the markdown contribution of a single page so
	// one long article cannot crowd out the rest of the prompt.
	maxPageMarkdown = 8000
)

// Client performs web research via Brave Search.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	maxPages   int
	maxResults int
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

// WithMaxPages sets how many result pages are fetched.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		c.maxPages = n
	}
}

// WithMaxResults sets how many search results to request per query.
func WithMaxResults(n int) ClientOption {
	return func(c *Client) {
		c.maxResults = n
	}
}

// NewClient creates a new web research client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		maxPages:   DefaultMaxPages,
		maxResults: DefaultMaxResults,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ interfaces.ResearchSource = (*Client)(nil)

type searchResponse struct {
	Web struct {
		Results []searchResult `json:"results"`
	} `json:"web"`
}

type searchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Research searches for recent coverage of the company and assembles a
// markdown narrative. Pages that fail to fetch or extract contribute only
// their search snippet; the call fails only when the search itself fails or
// returns nothing.
func (c *Client) Research(ctx context.Context, ticker, company string) (*models.ResearchData, error) {
	query := ticker + " stock analysis outlook"
	if company != "" {
		query = company + " (" + ticker + ") stock analysis outlook"
	}

	results, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no search results for %s", ticker)
	}

	data := &models.ResearchData{Ticker: ticker}
	var narrative strings.Builder

	for i, result := range results {
		if i >= c.maxPages {
			break
		}
		data.Sources = append(data.Sources, models.ResearchSource{
			Title: result.Title,
			URL:   result.URL,
		})

		narrative.WriteString("## " + result.Title + "\n\n")

		content, err := c.fetchPageMarkdown(ctx, result.URL)
		if err != nil || content == "" {
			if err != nil && c.logger != nil {
				c.logger.Warn().
					Err(err).
					Str("url", result.URL).
					Msg("Page fetch failed, using search snippet")
			}
			content = result.Description
		}
		narrative.WriteString(content + "\n\n")
	}

	data.Narrative = strings.TrimSpace(narrative.String())
	return data, nil
}

func (c *Client) search(ctx context.Context, query string) ([]searchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(c.maxResults))
	params.Set("freshness", "pm") // past month

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/res/v1/web/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	if c.logger != nil {
		c.logger.Debug().Str("query", query).Msg("Web search request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API error: %s (status: %d)", string(msg), resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return result.Web.Results, nil
}

// fetchPageMarkdown downloads a result page, strips page chrome, and
// converts the main content to markdown.
func (c *Client) fetchPageMarkdown(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; coverscribe/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return "", fmt.Errorf("page content type %s is not HTML", ct)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	// Strip page chrome before extracting the main content.
	doc.Find("script, style, nav, header, footer, aside, form, iframe").Remove()

	content := doc.Find("main, article, .content, #content").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	html, err := content.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize page content: %w", err)
	}

	converter := md.NewConverter(pageURL, true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert page to markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if len(markdown) > maxPageMarkdown {
		markdown = markdown[:maxPageMarkdown]
	}
	return markdown, nil
}
