package research

import (
	"context"
	"testing"

	"confpilot/internal/cache"
)

func TestKeyScheme(t *testing.T) {
	if got := ConferenceKey("aiewf-2025"); got != "conference:aiewf-2025:raw" {
		t.Errorf("ConferenceKey: got %q", got)
	}
	if got := SessionPrepKey("933474"); got != "session:933474:prep" {
		t.Errorf("SessionPrepKey: got %q", got)
	}
	if got := SpeakerProfileKey("name:jane doe|company:acme"); got != "speaker:name:jane doe|company:acme:profile" {
		t.Errorf("SpeakerProfileKey: got %q", got)
	}
}

func TestSessionPrepRoundTrip(t *testing.T) {
	store := NewStore(cache.NewMemoryStore())
	ctx := context.Background()

	payload := SessionPrepCache{
		SessionID: "933474",
		SessionOutline: SessionOutline{
			SessionID:    "933474",
			Track:        "Infrastructure",
			Speaker:      "Jane Doe",
			SessionTitle: "Scaling Inference",
			Description:  "How we scaled.",
		},
		ConferenceContext: "Welcome to the conference.",
		TopicResearch: []ResearchSnippet{
			{Title: "Post", Summary: "A post.", URL: "https://example.com/post", Source: SourceSerper},
		},
		RelatedLinks:  []string{"https://example.com/post"},
		CacheInfo:     CacheMiss,
		AiriaBriefRaw: `{"key_takeaways":[]}`,
		ComputedAt:    "2026-06-01T09:00:00Z",
	}

	if err := store.StoreSessionPrep(ctx, payload); err != nil {
		t.Fatalf("StoreSessionPrep failed: %v", err)
	}

	loaded, err := store.LoadSessionPrep(ctx, "933474")
	if err != nil {
		t.Fatalf("LoadSessionPrep failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected cache hit")
	}
	if loaded.SessionOutline.Speaker != "Jane Doe" {
		t.Errorf("outline speaker: got %q", loaded.SessionOutline.Speaker)
	}
	if loaded.AiriaBriefRaw != payload.AiriaBriefRaw {
		t.Errorf("brief raw mismatch: got %q", loaded.AiriaBriefRaw)
	}
	if len(loaded.TopicResearch) != 1 || loaded.TopicResearch[0].Source != SourceSerper {
		t.Errorf("topic research mismatch: %+v", loaded.TopicResearch)
	}
}

func TestLoadMissReturnsNil(t *testing.T) {
	store := NewStore(cache.NewMemoryStore())
	ctx := context.Background()

	material, err := store.LoadConferenceMaterial(ctx, "absent")
	if err != nil {
		t.Fatalf("LoadConferenceMaterial failed: %v", err)
	}
	if material != nil {
		t.Error("expected nil on cache miss")
	}
}

func TestCorruptPrepEntryIsMiss(t *testing.T) {
	mem := cache.NewMemoryStore()
	mem.PutRaw(SessionPrepKey("933474"), "{truncated", 0)
	store := NewStore(mem)

	loaded, err := store.LoadSessionPrep(context.Background(), "933474")
	if err != nil {
		t.Fatalf("corrupt entry must read as miss, got error: %v", err)
	}
	if loaded != nil {
		t.Error("corrupt entry must read as miss")
	}
}
