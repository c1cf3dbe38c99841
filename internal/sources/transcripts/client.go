// Package transcripts provides a client for the API Ninjas earnings
// transcript endpoint.
package transcripts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/coverscribe/coverscribe/internal/interfaces"
	"github.com/coverscribe/coverscribe/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the API Ninjas API.
	DefaultBaseURL = "https://api.api-ninjas.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 2

	// maxQuartersBack bounds the walk back through quarters when recent
	// ones have no transcript yet.
	maxQuartersBack = 8
)

// Client fetches earnings call transcripts.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	now        func() time.Time
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

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new transcript client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ interfaces.TranscriptSource = (*Client)(nil)

type transcriptResponse struct {
	Transcript string `json:"transcript"`
}

// Latest walks back through recent quarters and collects up to n
// transcripts, newest first. Quarters with no transcript are skipped, not
// errors; the call fails only when every probed quarter comes back empty.
func (c *Client) Latest(ctx context.Context, ticker string, n int) (*models.TranscriptData, error) {
	data := &models.TranscriptData{Ticker: ticker}

	year, quarter := previousQuarter(c.now())
	for probed := 0; probed < maxQuartersBack && len(data.Transcripts) < n; probed++ {
		text, err := c.fetch(ctx, ticker, year, quarter)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn().
					Err(err).
					Str("ticker", ticker).
					Int("year", year).
					Int("quarter", quarter).
					Msg("Transcript fetch failed, skipping quarter")
			}
		} else if text != "" {
			data.Transcripts = append(data.Transcripts, models.Transcript{
				Year:       year,
				Quarter:    quarter,
				Transcript: text,
			})
		}
		year, quarter = stepBack(year, quarter)
	}

	if len(data.Transcripts) == 0 {
		return nil, fmt.Errorf("no transcripts found for %s", ticker)
	}
	return data, nil
}

func (c *Client) fetch(ctx context.Context, ticker string, year, quarter int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("ticker", ticker)
	params.Set("year", strconv.Itoa(year))
	params.Set("quarter", strconv.Itoa(quarter))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/earningstranscript?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	if c.logger != nil {
		c.logger.Debug().
			Str("ticker", ticker).
			Int("year", year).
			Int("quarter", quarter).
			Msg("Transcript request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// The endpoint returns 404 for quarters with no transcript.
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcript API error: %s (status: %d)", string(msg), resp.StatusCode)
	}

	var result transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode transcript response: %w", err)
	}
	return result.Transcript, nil
}

// previousQuarter returns the last fully completed calendar quarter
// relative to t. Transcripts for the current quarter rarely exist yet.
func previousQuarter(t time.Time) (int, int) {
	year := t.Year()
	quarter := (int(t.Month())-1)/3 + 1
	return stepBack(year, quarter)
}

func stepBack(year, quarter int) (int, int) {
	if quarter == 1 {
		return year - 1, 4
	}
	return year, quarter - 1
}
