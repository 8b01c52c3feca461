// Package schedule generates personalized conference schedules from stored
// conference material and a free-form attendee profile.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"confpilot/internal/logging"
	"confpilot/internal/supabase"
)

// ConferenceFetcher loads conference records. Satisfied by *supabase.Client.
type ConferenceFetcher interface {
	GetConference(ctx context.Context, conferenceID string) (*supabase.Conference, error)
}

// TextGenerator produces text from a prompt. Satisfied by *openai.Client.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Request asks for a schedule tailored to one attendee.
type Request struct {
	ConferenceID string `json:"conferenceId"`
	UserProfile  string `json:"userProfile"`
}

// Response carries the generated schedule.
type Response struct {
	ConferenceID  string `json:"conferenceId"`
	ConferenceURL string `json:"conferenceUrl"`
	UserProfile   string `json:"userProfile"`
	Schedule      string `json:"schedule"`
}

// Service builds schedules.
type Service struct {
	conferences ConferenceFetcher
	generator   TextGenerator
	logger      *slog.Logger
}

// NewService wires a schedule service.
func NewService(conferences ConferenceFetcher, generator TextGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{conferences: conferences, generator: generator, logger: logger}
}

const promptTemplate = `Generate a personalized schedule based on the following information:

<USER_PREFERENCES>
%s
</USER_PREFERENCES>


<CONFERENCE_DATA>
%s
</CONFERENCE_DATA>

Please analyze the conference content and user profile to generate a detailed, personalized schedule with:
Make it short and give only event and their time. Nothing extra
`

// Generate fetches the conference content and asks the model for a compact
// personalized schedule.
func (s *Service) Generate(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.ConferenceID) == "" {
		return nil, errors.New("conference id required")
	}

	conf, err := s.conferences.GetConference(ctx, req.ConferenceID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(promptTemplate, req.UserProfile, conf.MarkdownContent)
	generated, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate schedule: %w", err)
	}
	s.logger.Info("schedule generated",
		logging.String("conference_id", req.ConferenceID),
		logging.Int("bytes", len(generated)))

	return &Response{
		ConferenceID:  req.ConferenceID,
		ConferenceURL: conf.URL,
		UserProfile:   req.UserProfile,
		Schedule:      generated,
	}, nil
}
