// Package apify wraps the Apify web-scraper actor's synchronous run endpoint.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const runSyncPath = "/v2/acts/apify~web-scraper/run-sync-get-dataset-items"

// StartURL seeds the crawl.
type StartURL struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// ScrapeInput is the actor input payload.
type ScrapeInput struct {
	StartURLs           []StartURL `json:"startUrls"`
	MaxRequestsPerCrawl int        `json:"maxRequestsPerCrawl,omitempty"`
	MaxPagesPerCrawl    int        `json:"maxPagesPerCrawl,omitempty"`
	MaxConcurrency      int        `json:"maxConcurrency,omitempty"`
	PageFunction        string     `json:"pageFunction,omitempty"`
}

// DatasetItem is one scraped page as returned by the actor.
type DatasetItem struct {
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Client provides access to the Apify API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an Apify client. The run-sync endpoint blocks until the crawl
// finishes, so the default timeout is generous.
func New(token, baseURL string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("apify token required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("apify base url required")
	}
	client := &Client{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// RunWebScraper starts a synchronous web-scraper run and returns its dataset.
func (c *Client) RunWebScraper(ctx context.Context, input ScrapeInput) ([]DatasetItem, error) {
	if len(input.StartURLs) == 0 {
		return nil, errors.New("at least one start url required")
	}

	params := url.Values{}
	params.Set("token", c.token)
	params.Set("clean", "true")
	params.Set("format", "json")
	endpoint := c.baseURL + runSyncPath + "?" + params.Encode()

	encoded, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode scraper input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute scraper run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("apify run returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var items []DatasetItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode dataset items: %w", err)
	}
	return items, nil
}
