// Package brightdata wraps the Bright Data people dataset API. Discovery is
// asynchronous: a trigger call returns a snapshot id which is polled until the
// dataset run finishes.
package brightdata

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

// Sleeper abstracts waiting between snapshot polls so tests can skip delays.
type Sleeper func(ctx context.Context, d time.Duration) error

func defaultSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Experience is one position in a profile's work history.
type Experience struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Activity is one item of recent public activity.
type Activity struct {
	Interaction string `json:"interaction,omitempty"`
	Link        string `json:"link,omitempty"`
	Title       string `json:"title,omitempty"`
}

// CurrentCompany describes the profile's present position.
type CurrentCompany struct {
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Location string `json:"location,omitempty"`
}

// ProfileInput echoes back the discovery input that matched this profile.
type ProfileInput struct {
	URL       string `json:"url,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Profile is one people record returned by a finished snapshot.
type Profile struct {
	ID             string         `json:"id,omitempty"`
	Name           string         `json:"name,omitempty"`
	Position       string         `json:"position,omitempty"`
	Headline       string         `json:"headline,omitempty"`
	About          string         `json:"about,omitempty"`
	CurrentCompany CurrentCompany `json:"current_company,omitempty"`
	Input          ProfileInput   `json:"input,omitempty"`
	Experience     []Experience   `json:"experience,omitempty"`
	RecentActivity []Activity     `json:"recent_activity,omitempty"`
	Interests      []string       `json:"interests,omitempty"`
}

// DiscoverInput is a single discovery record. Either URL or First/Last name
// must be populated depending on the discover mode.
type DiscoverInput struct {
	URL       string `json:"url,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DiscoverMode selects the dataset discovery strategy.
type DiscoverMode string

const (
	DiscoverByURL  DiscoverMode = "url"
	DiscoverByName DiscoverMode = "name"
)

// Client provides access to the Bright Data datasets API.
type Client struct {
	apiKey       string
	baseURL      string
	datasetID    string
	pollInterval time.Duration
	maxPolls     int
	httpClient   *http.Client
	sleep        Sleeper
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

// WithSleeper overrides the poll delay, used by tests.
func WithSleeper(sleep Sleeper) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithPolling overrides the snapshot poll cadence.
func WithPolling(interval time.Duration, maxPolls int) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
		if maxPolls > 0 {
			c.maxPolls = maxPolls
		}
	}
}

// New creates a Bright Data client.
func New(apiKey, baseURL, datasetID string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("brightdata api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("brightdata base url required")
	}
	datasetID = strings.TrimSpace(datasetID)
	if datasetID == "" {
		return nil, errors.New("brightdata dataset id required")
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		datasetID:    datasetID,
		pollInterval: 3 * time.Second,
		maxPolls:     15,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		sleep:        defaultSleeper,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Trigger starts a discovery run and returns the snapshot id. The trigger
// response carries the id either at the top level or nested under "people".
func (c *Client) Trigger(ctx context.Context, mode DiscoverMode, inputs []DiscoverInput) (string, error) {
	if len(inputs) == 0 {
		return "", errors.New("at least one discover input required")
	}

	params := url.Values{}
	params.Set("dataset_id", c.datasetID)
	params.Set("include_errors", "true")
	params.Set("type", "discover_new")
	params.Set("discover_by", string(mode))
	endpoint := c.baseURL + "/datasets/v3/trigger?" + params.Encode()

	encoded, err := json.Marshal(inputs)
	if err != nil {
		return "", fmt.Errorf("encode trigger inputs: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute trigger: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("brightdata trigger returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload struct {
		SnapshotID string `json:"snapshot_id"`
		People     struct {
			SnapshotID string `json:"snapshot_id"`
		} `json:"people"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode trigger response: %w", err)
	}
	snapshotID := payload.SnapshotID
	if snapshotID == "" {
		snapshotID = payload.People.SnapshotID
	}
	if snapshotID == "" {
		return "", errors.New("trigger response missing snapshot id")
	}
	return snapshotID, nil
}

// Snapshot fetches a snapshot once. While the run is still executing the API
// returns a status object instead of the profile array; in that case profiles
// is nil and running reports true.
func (c *Client) Snapshot(ctx context.Context, snapshotID string) (profiles []Profile, running bool, err error) {
	endpoint := fmt.Sprintf("%s/datasets/v3/snapshot/%s?format=json", c.baseURL, url.PathEscape(snapshotID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, false, fmt.Errorf("brightdata snapshot returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &profiles); err != nil {
			return nil, false, fmt.Errorf("decode snapshot profiles: %w", err)
		}
		return profiles, false, nil
	}

	var status struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &status); err != nil {
		return nil, false, fmt.Errorf("decode snapshot status: %w", err)
	}
	if status.Status == "running" {
		return nil, true, nil
	}
	return nil, false, fmt.Errorf("snapshot ended with status %q: %s", status.Status, status.Message)
}

// DiscoverProfiles triggers a discovery run and polls until profiles arrive
// or the poll budget is exhausted.
func (c *Client) DiscoverProfiles(ctx context.Context, mode DiscoverMode, inputs []DiscoverInput) ([]Profile, error) {
	snapshotID, err := c.Trigger(ctx, mode, inputs)
	if err != nil {
		return nil, err
	}

	// Ready snapshots return on the first check; the interval only separates
	// polls of a still-running run.
	for attempt := 0; attempt < c.maxPolls; attempt++ {
		profiles, running, err := c.Snapshot(ctx, snapshotID)
		if err != nil {
			return nil, err
		}
		if !running {
			return profiles, nil
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("snapshot %s still running after %d polls", snapshotID, c.maxPolls)
}
