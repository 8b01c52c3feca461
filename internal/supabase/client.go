// Package supabase persists conference records and saved transcripts.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"
)

// ErrConferenceNotFound reports a conference id with no database row.
var ErrConferenceNotFound = errors.New("conference not found")

// Conference is a stored conference record.
type Conference struct {
	ConferenceID    string `json:"conferenceid"`
	URL             string `json:"url"`
	MarkdownContent string `json:"markdown_content"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// TranscriptRecord is one saved transcription session.
type TranscriptRecord struct {
	SessionID         string   `json:"session_id"`
	TotalTranscripts  int      `json:"total_transcripts"`
	FullText          string   `json:"full_text"`
	TranscriptsData   []string `json:"transcripts_data"`
	SessionDurationMS *int64   `json:"session_duration_ms"`
	UserAgent         string   `json:"user_agent"`
	IPAddress         string   `json:"ip_address"`
}

// Client wraps the Supabase REST client for the tables this service uses.
type Client struct {
	client *supabase.Client
}

// New creates a Supabase client.
func New(url, apiKey string) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("supabase url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("supabase api key required")
	}
	client, err := supabase.NewClient(url, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Client{client: client}, nil
}

// GetConference fetches a conference row by its public id.
func (c *Client) GetConference(_ context.Context, conferenceID string) (*Conference, error) {
	if strings.TrimSpace(conferenceID) == "" {
		return nil, errors.New("conference id required")
	}

	var rows []Conference
	_, err := c.client.From("conferences").
		Select("*", "", false).
		Eq("conferenceid", conferenceID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("fetch conference %s: %w", conferenceID, err)
	}
	if len(rows) == 0 {
		return nil, ErrConferenceNotFound
	}
	return &rows[0], nil
}

// SaveTranscript inserts a transcript record and returns the stored row id.
func (c *Client) SaveTranscript(_ context.Context, record TranscriptRecord) (int64, error) {
	if record.SessionID == "" || record.FullText == "" {
		return 0, errors.New("session id and full text required")
	}

	var inserted []struct {
		ID int64 `json:"id"`
	}
	_, err := c.client.From("transcripts").
		Insert([]TranscriptRecord{record}, false, "", "representation", "").
		ExecuteTo(&inserted)
	if err != nil {
		return 0, fmt.Errorf("insert transcript: %w", err)
	}
	if len(inserted) == 0 {
		return 0, errors.New("insert returned no row")
	}
	return inserted[0].ID, nil
}
