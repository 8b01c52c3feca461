package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchSendsExpectedRequest(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("api key header: got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic":[{"title":"Result","link":"https://example.com","snippet":"A snippet"}]}`))
	}))
	defer server.Close()

	client, err := New("test-key", server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := client.Search(context.Background(), Query{Text: "ai inference", Num: 5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(resp.Organic) != 1 || resp.Organic[0].Link != "https://example.com" {
		t.Errorf("unexpected organic results: %+v", resp.Organic)
	}

	if captured["q"] != "ai inference" {
		t.Errorf("query: got %v", captured["q"])
	}
	if captured["gl"] != "us" || captured["hl"] != "en" {
		t.Errorf("locale defaults: gl=%v hl=%v", captured["gl"], captured["hl"])
	}
	if captured["num"] != float64(5) {
		t.Errorf("num: got %v", captured["num"])
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	client, err := New("key", "https://google.serper.dev")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.Search(context.Background(), Query{Text: "   "}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := New("key", server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = client.Search(context.Background(), Query{Text: "anything"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("  ", "https://google.serper.dev"); err == nil {
		t.Fatal("expected error for blank api key")
	}
}
