// Package airia wraps the Airia pipeline execution API used to generate
// session prep briefs.
package airia

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

const defaultUserInput = "Generate session prep brief"

// Client provides access to the Airia pipeline API.
type Client struct {
	apiKey     string
	baseURL    string
	pipelineID string
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

// New creates an Airia client bound to one pipeline.
func New(apiKey, baseURL, pipelineID string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("airia api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("airia base url required")
	}
	pipelineID = strings.TrimSpace(pipelineID)
	if pipelineID == "" {
		return nil, errors.New("airia pipeline id required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		pipelineID: pipelineID,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type executionRequest struct {
	AsyncOutput          bool              `json:"asyncOutput"`
	IncludeToolsResponse bool              `json:"includeToolsResponse"`
	UserInput            string            `json:"userInput"`
	PromptVariables      map[string]string `json:"promptVariables"`
}

type executionResponse struct {
	Result any `json:"result"`
	Report []struct {
		StepType string `json:"stepType,omitempty"`
		Outputs  []struct {
			Value string `json:"value,omitempty"`
		} `json:"outputs,omitempty"`
	} `json:"report,omitempty"`
}

// ExecutePipeline runs the configured pipeline with the given prompt
// variables and returns its text output. The result is taken from the
// top-level result string when present, otherwise concatenated from the
// execution report's step output values.
func (c *Client) ExecutePipeline(ctx context.Context, promptVariables map[string]string) (string, error) {
	payload := executionRequest{
		AsyncOutput:          false,
		IncludeToolsResponse: false,
		UserInput:            defaultUserInput,
		PromptVariables:      promptVariables,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode execution request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/PipelineExecution/%s", c.baseURL, url.PathEscape(c.pipelineID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute pipeline: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("airia pipeline returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded executionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode pipeline response: %w", err)
	}

	if text, ok := decoded.Result.(string); ok && strings.TrimSpace(text) != "" {
		return text, nil
	}

	var parts []string
	for _, step := range decoded.Report {
		for _, output := range step.Outputs {
			if strings.TrimSpace(output.Value) != "" {
				parts = append(parts, output.Value)
			}
		}
	}
	if len(parts) == 0 {
		return "", errors.New("pipeline response carried no output text")
	}
	return strings.Join(parts, "\n"), nil
}
