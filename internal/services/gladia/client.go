// Package gladia wraps the Gladia live transcription API: HTTP session
// initiation plus a websocket session with automatic reconnection.
package gladia

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

// AudioConfig describes the PCM stream the live session will receive.
type AudioConfig struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
	BitDepth   int    `json:"bit_depth"`
	Channels   int    `json:"channels"`
}

// InitiateRequest is the live session configuration.
type InitiateRequest struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
	BitDepth   int    `json:"bit_depth"`
	Channels   int    `json:"channels"`
	Model      string `json:"model,omitempty"`

	PreProcessing struct {
		AudioEnhancer bool `json:"audio_enhancer"`
	} `json:"pre_processing"`

	RealtimeProcessing struct {
		WordsAccurateTimestamps bool `json:"words_accurate_timestamps"`
	} `json:"realtime_processing"`

	MessagesConfig struct {
		ReceivePartialTranscripts bool `json:"receive_partial_transcripts"`
		ReceiveFinalTranscripts   bool `json:"receive_final_transcripts"`
	} `json:"messages_config"`
}

// Session is a provisioned live transcription session. URL is the websocket
// endpoint to stream audio into.
type Session struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url"`
}

// SessionStatus reports the processing state of a live session.
type SessionStatus struct {
	ID             string          `json:"id"`
	RequestID      string          `json:"request_id"`
	Status         string          `json:"status"`
	CreatedAt      string          `json:"created_at"`
	CompletedAt    *string         `json:"completed_at"`
	CustomMetadata map[string]any  `json:"custom_metadata"`
	ErrorCode      *int            `json:"error_code"`
	Kind           string          `json:"kind"`
	Result         json.RawMessage `json:"result"`
}

// ErrSessionNotFound reports a session id unknown to the API.
var ErrSessionNotFound = errors.New("gladia session not found")

// Client provides access to the Gladia HTTP API.
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

// New creates a Gladia client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gladia api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("gladia base url required")
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

// NewInitiateRequest builds a session config with the stream parameters and
// the message settings the live session relies on.
func NewInitiateRequest(audio AudioConfig, model string) InitiateRequest {
	req := InitiateRequest{
		Encoding:   audio.Encoding,
		SampleRate: audio.SampleRate,
		BitDepth:   audio.BitDepth,
		Channels:   audio.Channels,
		Model:      model,
	}
	req.MessagesConfig.ReceivePartialTranscripts = true
	req.MessagesConfig.ReceiveFinalTranscripts = true
	return req
}

// InitiateSession provisions a live transcription session.
func (c *Client) InitiateSession(ctx context.Context, config InitiateRequest) (*Session, error) {
	encoded, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("encode session config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/live", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Gladia-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("initiate session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(resp.Body)
		return nil, classifyHTTPStatus(resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if session.URL == "" {
		return nil, errors.New("session response missing websocket url")
	}
	return &session, nil
}

// GetSession fetches the current status of a live session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("session id required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/live/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Gladia-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get session status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(resp.Body)
		return nil, classifyHTTPStatus(resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var status SessionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &status, nil
}

func classifyHTTPStatus(status int, detail string) error {
	kind := KindAPI
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = KindTimeout
	}
	return &Error{Kind: kind, Detail: fmt.Sprintf("gladia returned %d: %s", status, detail)}
}
