// Package serper wraps the Serper web search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultCountry  = "us"
	defaultLanguage = "en"
	defaultResults  = 10
)

// OrganicResult is a single organic search hit.
type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// RelatedSearch is a suggested follow-up query.
type RelatedSearch struct {
	Query string `json:"query"`
}

// Response models the Serper search payload.
type Response struct {
	SearchParameters struct {
		Query string `json:"q"`
	} `json:"searchParameters"`
	Organic         []OrganicResult `json:"organic,omitempty"`
	RelatedSearches []RelatedSearch `json:"relatedSearches,omitempty"`
}

// Query contains search parameters. Zero values use Serper defaults.
type Query struct {
	Text     string
	Country  string
	Language string
	Num      int
}

// Client provides access to the Serper search API.
type Client struct {
	apiKey     string
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

// New creates a Serper client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("serper api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("serper base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search runs a web search and returns the raw response.
func (c *Client) Search(ctx context.Context, query Query) (*Response, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, errors.New("query must not be empty")
	}
	body := map[string]any{
		"q":   text,
		"gl":  valueOr(query.Country, defaultCountry),
		"hl":  valueOr(query.Language, defaultLanguage),
		"num": numOr(query.Num, defaultResults),
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("serper search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode serper response: %w", err)
	}
	return &payload, nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func numOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
