package research

import "confpilot/internal/services/brightdata"

// CacheInfo tags a prep response with whether it was served from cache.
type CacheInfo string

const (
	CacheHit  CacheInfo = "cache:hit"
	CacheMiss CacheInfo = "cache:miss"
)

// SnippetSource identifies which provider produced a research snippet.
type SnippetSource string

const (
	SourceSerper     SnippetSource = "serper"
	SourceApify      SnippetSource = "apify"
	SourceBrightData SnippetSource = "brightdata"
	SourceManual     SnippetSource = "manual"
	SourceOther      SnippetSource = "other"
)

// SessionOutline is one parsed conference session. sessionId is the natural
// key, unique within a conference's listing text.
type SessionOutline struct {
	SessionID          string `json:"sessionId"`
	Track              string `json:"track"`
	Speaker            string `json:"speaker"`
	SpeakerTitle       string `json:"speakerTitle,omitempty"`
	Company            string `json:"company,omitempty"`
	Room               string `json:"room,omitempty"`
	Time               string `json:"time,omitempty"`
	SessionTitle       string `json:"sessionTitle"`
	Description        string `json:"description"`
	SpeakerLinkedInURL string `json:"speakerLinkedInUrl,omitempty"`
}

// ResearchSnippet is a single unit of retrieved evidence.
type ResearchSnippet struct {
	Title   string        `json:"title"`
	Summary string        `json:"summary"`
	URL     string        `json:"url,omitempty"`
	Source  SnippetSource `json:"source"`
}

// RawConferenceMaterial is the cached raw conference listing text.
type RawConferenceMaterial struct {
	ConferenceID string `json:"conferenceId"`
	Content      string `json:"content"`
	Source       string `json:"source"` // "file" | "ingest" | "manual"
	CapturedAt   string `json:"capturedAt"`
}

// SpeakerProfileCache holds an enriched speaker snippet keyed by a derived
// identifier (LinkedIn URL when known, else normalized name+company).
type SpeakerProfileCache struct {
	Identifier string             `json:"identifier"`
	Snippet    ResearchSnippet    `json:"snippet"`
	Profile    brightdata.Profile `json:"profile"`
	ComputedAt string             `json:"computedAt"`
}

// SessionPrepCache is the full persisted result of one prep computation,
// including the raw pipeline output so a cache hit can re-parse the brief.
type SessionPrepCache struct {
	SessionID         string            `json:"sessionId"`
	SessionOutline    SessionOutline    `json:"sessionOutline"`
	ConferenceContext string            `json:"conferenceContext"`
	CompanyResearch   []ResearchSnippet `json:"companyResearch"`
	TopicResearch     []ResearchSnippet `json:"topicResearch"`
	SpeakerResearch   []ResearchSnippet `json:"speakerResearch"`
	RelatedLinks      []string          `json:"relatedLinks"`
	CacheInfo         CacheInfo         `json:"cacheInfo"`
	AiriaBriefRaw     string            `json:"airiaBriefRaw"`
	ComputedAt        string            `json:"computedAt"`
}
