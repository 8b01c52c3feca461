// Package conference parses raw conference listing text into structured
// session outlines and resolves the raw material itself.
package conference

import (
	"regexp"
	"strings"

	"confpilot/internal/research"
)

// Listing text is line oriented. A session record starts at a "Session ID:"
// line and ends at the next one or at end of input.
const (
	fieldSessionID    = "Session ID:"
	fieldTrack        = "Track:"
	fieldSpeaker      = "Speaker:"
	fieldRoom         = "Room:"
	fieldTime         = "Time:"
	fieldSessionTitle = "Session Title:"
	fieldDescription  = "Description:"
)

var speakerPattern = regexp.MustCompile(`^(.*?)\s*\((.*)\)$`)

// ParseSessions extracts every session outline from listing text, in source
// order. Records missing a session id or title are dropped; duplicate ids are
// kept. Text before the first session record is ignored.
func ParseSessions(content string) []research.SessionOutline {
	var (
		sessions  []research.SessionOutline
		current   *research.SessionOutline
		descLines []string
		inDesc    bool
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Description = strings.TrimSpace(strings.Join(descLines, "\n"))
		if current.SessionID != "" && current.SessionTitle != "" {
			sessions = append(sessions, *current)
		}
		current = nil
		descLines = nil
		inDesc = false
	}

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)

		if value, ok := fieldValue(line, fieldSessionID); ok {
			flush()
			current = &research.SessionOutline{SessionID: value}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case matchField(line, fieldTrack, &current.Track, &inDesc):
		case matchSpeaker(line, current, &inDesc):
		case matchField(line, fieldRoom, &current.Room, &inDesc):
		case matchField(line, fieldTime, &current.Time, &inDesc):
		case matchField(line, fieldSessionTitle, &current.SessionTitle, &inDesc):
		default:
			if _, ok := fieldValue(line, fieldDescription); ok {
				// The marker line itself carries no description text.
				inDesc = true
				descLines = descLines[:0]
			} else if inDesc {
				descLines = append(descLines, line)
			}
		}
	}
	flush()
	return sessions
}

func fieldValue(line, prefix string) (string, bool) {
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
}

func matchField(line, prefix string, target *string, inDesc *bool) bool {
	value, ok := fieldValue(line, prefix)
	if !ok {
		return false
	}
	*target = value
	*inDesc = false
	return true
}

// matchSpeaker splits a "Name (Title, Company)" speaker line. A single
// parenthesized piece is a bare title; with two or more pieces the first is
// the title and the remainder is the company.
func matchSpeaker(line string, outline *research.SessionOutline, inDesc *bool) bool {
	value, ok := fieldValue(line, fieldSpeaker)
	if !ok {
		return false
	}
	*inDesc = false

	match := speakerPattern.FindStringSubmatch(value)
	if match == nil {
		outline.Speaker = value
		return true
	}
	outline.Speaker = strings.TrimSpace(match[1])

	pieces := strings.Split(match[2], ",")
	for i := range pieces {
		pieces[i] = strings.TrimSpace(pieces[i])
	}
	outline.SpeakerTitle = pieces[0]
	if len(pieces) > 1 {
		outline.Company = strings.Join(pieces[1:], ", ")
	}
	return true
}

// ExtractContext returns the introductory text before the first "## Schedule"
// heading, trimmed. Without the heading the whole text is context.
func ExtractContext(content string) string {
	if idx := strings.Index(content, "## Schedule"); idx >= 0 {
		return strings.TrimSpace(content[:idx])
	}
	return strings.TrimSpace(content)
}

// FindSession returns the first session with the given id, or nil.
func FindSession(sessions []research.SessionOutline, sessionID string) *research.SessionOutline {
	for i := range sessions {
		if sessions[i].SessionID == sessionID {
			return &sessions[i]
		}
	}
	return nil
}
