package prep

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"confpilot/internal/conference"
	"confpilot/internal/logging"
	"confpilot/internal/research"
)

const timeLayout = time.RFC3339

// Service orchestrates session prep across the cache, conference material,
// and the research providers.
type Service struct {
	store               *research.Store
	material            *conference.MaterialSource
	search              SearchProvider
	scrape              ScrapeProvider
	people              PeopleProvider
	pipeline            BriefPipeline
	defaultConferenceID string
	logger              *slog.Logger
	now                 func() time.Time
}

// Deps carries the service's collaborators.
type Deps struct {
	Store               *research.Store
	Material            *conference.MaterialSource
	Search              SearchProvider
	Scrape              ScrapeProvider
	People              PeopleProvider
	Pipeline            BriefPipeline
	DefaultConferenceID string
	Logger              *slog.Logger
}

// NewService wires a prep service.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:               deps.Store,
		material:            deps.Material,
		search:              deps.Search,
		scrape:              deps.Scrape,
		people:              deps.People,
		pipeline:            deps.Pipeline,
		defaultConferenceID: deps.DefaultConferenceID,
		logger:              logger,
		now:                 time.Now,
	}
}

// SetClock overrides the timestamp source, used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// parseBrief decodes pipeline output. A malformed brief is a hard failure:
// serving a brief the pipeline did not actually produce would be worse than
// failing the request.
func parseBrief(raw string) (Brief, error) {
	var brief Brief
	if err := json.Unmarshal([]byte(raw), &brief); err != nil {
		return Brief{}, fmt.Errorf("pipeline output was not valid JSON: %w", err)
	}
	return brief, nil
}

// Prepare produces a full prep result for one session. Cached results are
// served for 15 minutes unless the request forces a refresh. A cached entry
// whose stored brief no longer parses fails the request rather than being
// silently recomputed.
func (s *Service) Prepare(ctx context.Context, req Request) (*Result, error) {
	conferenceID := req.ConferenceID
	if conferenceID == "" {
		conferenceID = s.defaultConferenceID
	}

	if !req.ForceRefresh {
		cached, err := s.store.LoadSessionPrep(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load cached prep: %w", err)
		}
		if cached != nil {
			brief, err := parseBrief(cached.AiriaBriefRaw)
			if err != nil {
				return nil, err
			}
			s.logger.Info("prep served from cache",
				logging.String("session_id", req.SessionID))
			return &Result{
				Session: cached.SessionOutline,
				Brief:   brief,
				Research: Research{
					ConferenceContext: cached.ConferenceContext,
					CompanyResearch:   cached.CompanyResearch,
					TopicResearch:     cached.TopicResearch,
					SpeakerResearch:   cached.SpeakerResearch,
					RelatedLinks:      cached.RelatedLinks,
					CacheInfo:         research.CacheHit,
				},
				GeneratedAt: cached.ComputedAt,
			}, nil
		}
	}

	material, _, err := s.material.Ensure(ctx, conferenceID)
	if err != nil {
		return nil, err
	}
	conferenceContext := conference.ExtractContext(material.Content)

	sessions := conference.ParseSessions(material.Content)
	session := conference.FindSession(sessions, req.SessionID)
	if session == nil {
		return nil, fmt.Errorf("session %s not found in conference content", req.SessionID)
	}

	var (
		topicResearch   []research.ResearchSnippet
		companyResearch []research.ResearchSnippet
		speakerResearch []research.ResearchSnippet
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		topicResearch, err = s.gatherTopicResearch(groupCtx, *session)
		return err
	})
	group.Go(func() error {
		var err error
		companyResearch, err = s.gatherCompanyResearch(groupCtx, *session)
		return err
	})
	group.Go(func() error {
		var err error
		speakerResearch, err = s.gatherSpeakerResearch(groupCtx, *session)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("gather research: %w", err)
	}

	allSnippets := make([]research.ResearchSnippet, 0,
		len(topicResearch)+len(companyResearch)+len(speakerResearch))
	allSnippets = append(allSnippets, topicResearch...)
	allSnippets = append(allSnippets, companyResearch...)
	allSnippets = append(allSnippets, speakerResearch...)
	relatedLinks := dedupeLinks(allSnippets)

	promptVariables, err := buildPromptVariables(*session, conferenceContext,
		companyResearch, topicResearch, speakerResearch, relatedLinks, research.CacheMiss)
	if err != nil {
		return nil, err
	}

	rawBrief, err := s.pipeline.ExecutePipeline(ctx, promptVariables)
	if err != nil {
		return nil, fmt.Errorf("execute brief pipeline: %w", err)
	}
	brief, err := parseBrief(rawBrief)
	if err != nil {
		return nil, err
	}

	payload := research.SessionPrepCache{
		SessionID:         session.SessionID,
		SessionOutline:    *session,
		ConferenceContext: conferenceContext,
		CompanyResearch:   companyResearch,
		TopicResearch:     topicResearch,
		SpeakerResearch:   speakerResearch,
		RelatedLinks:      relatedLinks,
		CacheInfo:         research.CacheMiss,
		AiriaBriefRaw:     rawBrief,
		ComputedAt:        s.now().UTC().Format(timeLayout),
	}
	if err := s.store.StoreSessionPrep(ctx, payload); err != nil {
		return nil, fmt.Errorf("cache prep result: %w", err)
	}
	s.logger.Info("prep computed",
		logging.String("session_id", session.SessionID),
		logging.Int("related_links", len(relatedLinks)))

	return &Result{
		Session: *session,
		Brief:   brief,
		Research: Research{
			ConferenceContext: conferenceContext,
			CompanyResearch:   companyResearch,
			TopicResearch:     topicResearch,
			SpeakerResearch:   speakerResearch,
			RelatedLinks:      relatedLinks,
			CacheInfo:         research.CacheMiss,
		},
		GeneratedAt: payload.ComputedAt,
	}, nil
}

// ListSessions returns every session parsed from the conference material.
func (s *Service) ListSessions(ctx context.Context, conferenceID string) ([]research.SessionOutline, error) {
	if conferenceID == "" {
		conferenceID = s.defaultConferenceID
	}
	material, _, err := s.material.Ensure(ctx, conferenceID)
	if err != nil {
		return nil, err
	}
	return conference.ParseSessions(material.Content), nil
}

// buildPromptVariables serializes the gathered research into the pipeline's
// prompt variables.
func buildPromptVariables(
	session research.SessionOutline,
	conferenceContext string,
	companyResearch, topicResearch, speakerResearch []research.ResearchSnippet,
	relatedLinks []string,
	cacheInfo research.CacheInfo,
) (map[string]string, error) {
	encode := func(name string, value any) (string, error) {
		data, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", name, err)
		}
		return string(data), nil
	}

	outline, err := encode("session_outline", session)
	if err != nil {
		return nil, err
	}
	company, err := encode("company_research", companyResearch)
	if err != nil {
		return nil, err
	}
	topic, err := encode("topic_research", topicResearch)
	if err != nil {
		return nil, err
	}
	speaker, err := encode("speaker_profile", speakerResearch)
	if err != nil {
		return nil, err
	}
	links, err := encode("related_links", relatedLinks)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"session_outline":    outline,
		"conference_context": conferenceContext,
		"company_research":   company,
		"topic_research":     topic,
		"speaker_profile":    speaker,
		"related_links":      links,
		"redis_cache_state":  string(cacheInfo),
	}, nil
}
