package conference

import (
	"strings"
	"testing"
)

const sampleListing = `# Some Conference

Intro paragraph about the event.

## Schedule

Session ID: 100
Track: Infrastructure
Speaker: Jane Doe (CTO, Acme Robotics)
Room: Hall A
Time: 10:00 AM
Session Title: Scaling Things
Description:
First paragraph.

Second paragraph after a blank line.

Session ID: 101
Track: Agents
Speaker: Solo Act (Staff Engineer)
Session Title: No Company Listed
Description:
Short one.
`

func TestParseSessionsFields(t *testing.T) {
	sessions := ParseSessions(sampleListing)
	if len(sessions) != 2 {
		t.Fatalf("session count: got %d", len(sessions))
	}

	first := sessions[0]
	if first.SessionID != "100" || first.Track != "Infrastructure" {
		t.Errorf("first session header: %+v", first)
	}
	if first.Speaker != "Jane Doe" || first.SpeakerTitle != "CTO" || first.Company != "Acme Robotics" {
		t.Errorf("speaker split: %+v", first)
	}
	if first.Room != "Hall A" || first.Time != "10:00 AM" {
		t.Errorf("room/time: %+v", first)
	}
	if !strings.Contains(first.Description, "First paragraph.\n\nSecond paragraph") {
		t.Errorf("blank line inside description not preserved: %q", first.Description)
	}
	if strings.HasSuffix(first.Description, "\n") {
		t.Errorf("description not trimmed: %q", first.Description)
	}

	second := sessions[1]
	if second.Speaker != "Solo Act" || second.SpeakerTitle != "Staff Engineer" || second.Company != "" {
		t.Errorf("single-piece speaker parens: %+v", second)
	}
}

func TestParseSessionsSpeakerVariants(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		speaker string
		title   string
		company string
	}{
		{"plain name", "Speaker: Jane Doe", "Jane Doe", "", ""},
		{"title only", "Speaker: Jane Doe (CTO)", "Jane Doe", "CTO", ""},
		{"title and company", "Speaker: Jane Doe (CTO, Acme)", "Jane Doe", "CTO", "Acme"},
		{"company with comma", "Speaker: Jane Doe (VP, Acme, Inc)", "Jane Doe", "VP", "Acme, Inc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			content := "Session ID: 1\n" + tc.line + "\nSession Title: T\n"
			sessions := ParseSessions(content)
			if len(sessions) != 1 {
				t.Fatalf("session count: got %d", len(sessions))
			}
			got := sessions[0]
			if got.Speaker != tc.speaker || got.SpeakerTitle != tc.title || got.Company != tc.company {
				t.Errorf("got speaker=%q title=%q company=%q", got.Speaker, got.SpeakerTitle, got.Company)
			}
		})
	}
}

func TestParseSessionsDescriptionMarkerLineDiscarded(t *testing.T) {
	content := "Session ID: 1\nSession Title: T\nDescription: inline text\nfollowing line\n"
	sessions := ParseSessions(content)
	if len(sessions) != 1 {
		t.Fatalf("session count: got %d", len(sessions))
	}
	if sessions[0].Description != "following line" {
		t.Errorf("text on the Description line must be discarded: %q", sessions[0].Description)
	}
}

func TestParseSessionsDropsIncompleteRecords(t *testing.T) {
	content := `Session ID: 200
Track: Evals

Session ID: 201
Session Title: Kept
`
	sessions := ParseSessions(content)
	if len(sessions) != 1 || sessions[0].SessionID != "201" {
		t.Errorf("expected only the titled record, got %+v", sessions)
	}
}

func TestParseSessionsKeepsDuplicatesInOrder(t *testing.T) {
	content := `Session ID: 300
Session Title: First
Session ID: 300
Session Title: Second
`
	sessions := ParseSessions(content)
	if len(sessions) != 2 {
		t.Fatalf("session count: got %d", len(sessions))
	}
	if sessions[0].SessionTitle != "First" || sessions[1].SessionTitle != "Second" {
		t.Errorf("order not preserved: %+v", sessions)
	}
}

func TestParseSessionsIgnoresLeadingText(t *testing.T) {
	content := "Track: Orphan\nDescription: stray\nSession ID: 400\nSession Title: Real\n"
	sessions := ParseSessions(content)
	if len(sessions) != 1 || sessions[0].Track != "" {
		t.Errorf("leading lines must be ignored: %+v", sessions)
	}
}

func TestExtractContext(t *testing.T) {
	got := ExtractContext(sampleListing)
	if !strings.Contains(got, "Intro paragraph") {
		t.Errorf("context missing intro: %q", got)
	}
	if strings.Contains(got, "Session ID") {
		t.Errorf("context leaked schedule: %q", got)
	}

	noHeading := "Just some text with no schedule heading."
	if ExtractContext(noHeading) != noHeading {
		t.Errorf("whole text should be context without heading")
	}
}

func TestFindSession(t *testing.T) {
	sessions := ParseSessions(sampleListing)
	if found := FindSession(sessions, "101"); found == nil || found.SessionTitle != "No Company Listed" {
		t.Errorf("FindSession(101): %+v", found)
	}
	if found := FindSession(sessions, "999"); found != nil {
		t.Errorf("expected nil for unknown id, got %+v", found)
	}
}

func TestEmbeddedExampleParses(t *testing.T) {
	sessions := ParseSessions(exampleConference)
	if len(sessions) != 3 {
		t.Fatalf("bundled example sessions: got %d", len(sessions))
	}
	if FindSession(sessions, "933474") == nil {
		t.Error("bundled example must include session 933474")
	}
	if ExtractContext(exampleConference) == "" {
		t.Error("bundled example must carry intro context")
	}
}
