package prep

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"confpilot/internal/logging"
	"confpilot/internal/research"
	"confpilot/internal/services/brightdata"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

func normalizeName(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(strings.ToLower(value), " "))
}

// speakerCacheIdentifier derives the cache identity for a speaker: the
// LinkedIn URL when known, otherwise normalized name plus company.
func speakerCacheIdentifier(session research.SessionOutline) string {
	if session.SpeakerLinkedInURL != "" {
		return "url:" + strings.ToLower(session.SpeakerLinkedInURL)
	}
	name := normalizeName(session.Speaker)
	company := strings.TrimSpace(strings.ToLower(session.Company))
	return fmt.Sprintf("name:%s|company:%s", name, company)
}

// discoverPayload builds the people-data discovery input for a session's
// speaker. Returns ok=false when the session carries nothing to search by.
func discoverPayload(session research.SessionOutline) (brightdata.DiscoverMode, []brightdata.DiscoverInput, bool) {
	if session.SpeakerLinkedInURL != "" {
		return brightdata.DiscoverByURL, []brightdata.DiscoverInput{{URL: session.SpeakerLinkedInURL}}, true
	}

	parts := strings.Fields(session.Speaker)
	if len(parts) == 0 {
		return "", nil, false
	}
	firstName := parts[0]
	lastName := strings.Join(parts[1:], " ")
	if lastName == "" {
		lastName = firstName
	}
	return brightdata.DiscoverByName, []brightdata.DiscoverInput{{FirstName: firstName, LastName: lastName}}, true
}

// selectBestProfile scores candidate profiles against the session's speaker.
// Exact name match counts most, then company match, then having been
// discovered by URL. Ties keep the earliest candidate.
func selectBestProfile(profiles []brightdata.Profile, session research.SessionOutline) *brightdata.Profile {
	if len(profiles) == 0 {
		return nil
	}

	targetName := normalizeName(session.Speaker)
	targetCompany := strings.TrimSpace(strings.ToLower(session.Company))

	best := -1
	bestScore := -1.0
	for i, profile := range profiles {
		score := 0.0
		name := normalizeName(profile.Name)
		company := strings.TrimSpace(strings.ToLower(profile.CurrentCompany.Name))

		if name != "" && name == targetName {
			score += 2
		}
		if targetCompany != "" && company != "" && company == targetCompany {
			score += 1.5
		}
		if profile.Input.URL != "" {
			score += 0.5
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return &profiles[best]
}

func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return strings.TrimRight(text[:maxLen-1], " ") + "…"
}

// buildSpeakerSnippet renders a profile into a compact briefing snippet with
// the current role, a short bio, experience highlights, and conversation
// hooks.
func buildSpeakerSnippet(profile brightdata.Profile, session research.SessionOutline) research.ResearchSnippet {
	var lines []string

	currentTitle := profile.CurrentCompany.Title
	if currentTitle == "" {
		currentTitle = profile.Position
	}
	if currentTitle == "" {
		currentTitle = profile.Headline
	}
	companyName := profile.CurrentCompany.Name
	if currentTitle != "" || companyName != "" {
		var pieces []string
		if currentTitle != "" {
			pieces = append(pieces, currentTitle)
		}
		if companyName != "" {
			pieces = append(pieces, companyName)
		}
		lines = append(lines, "Current focus: "+strings.Join(pieces, " at "))
	}

	if profile.About != "" {
		lines = append(lines, "About: "+truncate(profile.About, 360))
	}

	experience := profile.Experience
	if len(experience) > 2 {
		experience = experience[:2]
	}
	if len(experience) > 0 {
		lines = append(lines, "Experience highlights:")
		for _, exp := range experience {
			var parts []string
			if exp.Title != "" {
				parts = append(parts, exp.Title)
			}
			if exp.Company != "" {
				parts = append(parts, exp.Company)
			}
			timeframe := ""
			if exp.StartDate != "" {
				end := "present"
				if exp.EndDate != "" {
					end = exp.EndDate
				}
				timeframe = fmt.Sprintf(" (%s – %s)", exp.StartDate, end)
			}
			lines = append(lines, "- "+strings.Join(parts, " at ")+timeframe)
		}
	}

	var hooks []string
	activities := profile.RecentActivity
	if len(activities) > 2 {
		activities = activities[:2]
	}
	for _, activity := range activities {
		if activity.Title == "" {
			continue
		}
		interaction := activity.Interaction
		if interaction == "" {
			interaction = "Latest update"
		}
		hooks = append(hooks, interaction+": "+truncate(activity.Title, 140))
	}
	if len(hooks) == 0 && companyName != "" {
		hooks = append(hooks, "Ask about current priorities at "+companyName+".")
	}
	if len(hooks) == 0 && len(experience) > 0 {
		role := experience[0].Title
		if role == "" {
			role = "their previous role"
		}
		hooks = append(hooks, "Ask about lessons from "+role+".")
	}
	if len(hooks) > 0 {
		lines = append(lines, "Conversation hooks:")
		for _, hook := range hooks {
			lines = append(lines, "- "+hook)
		}
	}

	if len(profile.Interests) > 0 {
		interests := profile.Interests
		if len(interests) > 4 {
			interests = interests[:4]
		}
		lines = append(lines, "Interests: "+strings.Join(interests, ", "))
	}

	name := profile.Name
	if name == "" {
		name = session.Speaker
	}
	url := profile.Input.URL
	if url == "" && profile.ID != "" {
		url = "https://www.linkedin.com/in/" + profile.ID
	}

	return research.ResearchSnippet{
		Title:   "Bright Data · " + name,
		Summary: strings.Join(lines, "\n"),
		URL:     url,
		Source:  research.SourceBrightData,
	}
}

// fetchSpeakerSnippet resolves a speaker's profile snippet, serving the
// 12-hour cache first. Provider failures are logged and reported as "no
// profile" so speaker research can fall back to a placeholder.
func (s *Service) fetchSpeakerSnippet(ctx context.Context, session research.SessionOutline) *research.ResearchSnippet {
	identifier := speakerCacheIdentifier(session)
	cached, err := s.store.LoadSpeakerProfile(ctx, identifier)
	if err != nil {
		s.logger.Warn("speaker profile cache read failed", logging.Error(err))
	}
	if cached != nil {
		snippet := cached.Snippet
		return &snippet
	}

	mode, inputs, ok := discoverPayload(session)
	if !ok {
		return nil
	}

	profiles, err := s.people.DiscoverProfiles(ctx, mode, inputs)
	if err != nil {
		s.logger.Warn("speaker profile discovery failed",
			logging.String("speaker", session.Speaker),
			logging.Error(err))
		return nil
	}
	best := selectBestProfile(profiles, session)
	if best == nil {
		return nil
	}

	snippet := buildSpeakerSnippet(*best, session)
	payload := research.SpeakerProfileCache{
		Identifier: identifier,
		Snippet:    snippet,
		Profile:    *best,
		ComputedAt: s.now().UTC().Format(timeLayout),
	}
	if err := s.store.StoreSpeakerProfile(ctx, payload); err != nil {
		s.logger.Warn("speaker profile cache write failed", logging.Error(err))
	}
	return &snippet
}
