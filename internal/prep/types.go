// Package prep orchestrates session prep: it resolves conference material,
// fans out to search, scraping, and people-data providers, and runs the
// brief-generation pipeline, with every stage backed by the research cache.
package prep

import (
	"context"

	"confpilot/internal/research"
	"confpilot/internal/services/apify"
	"confpilot/internal/services/brightdata"
	"confpilot/internal/services/serper"
)

// SearchProvider runs web searches. Satisfied by *serper.Client.
type SearchProvider interface {
	Search(ctx context.Context, query serper.Query) (*serper.Response, error)
}

// ScrapeProvider fetches page content. Satisfied by *apify.Client.
type ScrapeProvider interface {
	RunWebScraper(ctx context.Context, input apify.ScrapeInput) ([]apify.DatasetItem, error)
}

// PeopleProvider discovers speaker profiles. Satisfied by *brightdata.Client.
type PeopleProvider interface {
	DiscoverProfiles(ctx context.Context, mode brightdata.DiscoverMode, inputs []brightdata.DiscoverInput) ([]brightdata.Profile, error)
}

// BriefPipeline generates the prep brief text. Satisfied by *airia.Client.
type BriefPipeline interface {
	ExecutePipeline(ctx context.Context, promptVariables map[string]string) (string, error)
}

// Request identifies the session to prepare. ConferenceID falls back to the
// configured default when empty. ForceRefresh bypasses the prep cache.
type Request struct {
	SessionID    string `json:"sessionId"`
	ConferenceID string `json:"conferenceId,omitempty"`
	ForceRefresh bool   `json:"forceRefresh,omitempty"`
}

// Brief is the structured output of the brief-generation pipeline.
type Brief struct {
	SessionSummary struct {
		Headline     string `json:"headline"`
		WhyItMatters string `json:"why_it_matters"`
		AttendeeFit  string `json:"attendee_fit"`
	} `json:"session_summary"`
	KeyTakeaways []string `json:"key_takeaways"`
	CompanyBrief struct {
		Positioning      string `json:"positioning"`
		RecentMoves      string `json:"recent_moves"`
		CompetitiveAngle string `json:"competitive_angle"`
	} `json:"company_brief"`
	SpeakerBrief struct {
		Bio                 string `json:"bio"`
		ConferenceGoal      string `json:"conference_goal"`
		ConversationStarter string `json:"conversation_starter"`
	} `json:"speaker_brief"`
	SmartQuestions  []string `json:"smart_questions"`
	FollowUpActions []string `json:"follow_up_actions"`
	Sources         []Source `json:"sources"`
}

// Source is one cited link in a brief.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Research bundles everything gathered for a session.
type Research struct {
	ConferenceContext string                     `json:"conferenceContext"`
	CompanyResearch   []research.ResearchSnippet `json:"companyResearch"`
	TopicResearch     []research.ResearchSnippet `json:"topicResearch"`
	SpeakerResearch   []research.ResearchSnippet `json:"speakerResearch"`
	RelatedLinks      []string                   `json:"relatedLinks"`
	CacheInfo         research.CacheInfo         `json:"cacheInfo"`
}

// Result is a complete prep response.
type Result struct {
	Session     research.SessionOutline `json:"session"`
	Brief       Brief                   `json:"brief"`
	Research    Research                `json:"research"`
	GeneratedAt string                  `json:"generatedAt"`
}
