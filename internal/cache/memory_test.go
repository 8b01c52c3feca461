package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreJSONRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	type payload struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Tags  []string `json:"tags"`
	}
	in := payload{Name: "keynote", Count: 3, Tags: []string{"ai", "infra"}}

	if err := store.SetJSON(ctx, "session:1:prep", in, time.Minute); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var out payload
	found, err := store.GetJSON(ctx, "session:1:prep", &out)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if !found {
		t.Fatal("expected hit for freshly stored key")
	}
	if out.Name != in.Name || out.Count != in.Count || len(out.Tags) != 2 {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	current := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return current })

	if err := store.SetString(ctx, "conference:x:raw", "content", 15*time.Minute); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}

	if _, found, _ := store.GetString(ctx, "conference:x:raw"); !found {
		t.Fatal("expected hit inside TTL window")
	}

	current = current.Add(16 * time.Minute)
	if _, found, _ := store.GetString(ctx, "conference:x:raw"); found {
		t.Error("expected miss after TTL expiry")
	}
}

func TestMemoryStoreCorruptPayloadIsMiss(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.PutRaw("speaker:a:profile", "{not json", 0)

	var target map[string]any
	found, err := store.GetJSON(ctx, "speaker:a:profile", &target)
	if err != nil {
		t.Fatalf("GetJSON returned error for corrupt payload: %v", err)
	}
	if found {
		t.Error("corrupt payload should be treated as a miss")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SetString(ctx, "k", "v", 0); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := store.GetString(ctx, "k"); found {
		t.Error("key should be gone after delete")
	}
	if err := store.Delete(ctx, "absent"); err != nil {
		t.Errorf("deleting an absent key should not error: %v", err)
	}
}
