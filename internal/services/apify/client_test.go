package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRunWebScraperReturnsDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != runSyncPath {
			t.Errorf("path: got %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("token") != "test-token" {
			t.Errorf("token: got %q", query.Get("token"))
		}
		if query.Get("clean") != "true" || query.Get("format") != "json" {
			t.Errorf("query flags: clean=%q format=%q", query.Get("clean"), query.Get("format"))
		}

		var input ScrapeInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Fatalf("decode input: %v", err)
		}
		if len(input.StartURLs) != 2 {
			t.Errorf("start urls: got %d", len(input.StartURLs))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"url":"https://example.com/a","title":"Page A","text":"Body A"}]`))
	}))
	defer server.Close()

	client, err := New("test-token", server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	items, err := client.RunWebScraper(context.Background(), ScrapeInput{
		StartURLs: []StartURL{{URL: "https://example.com/a"}, {URL: "https://example.com/b"}},
	})
	if err != nil {
		t.Fatalf("RunWebScraper failed: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Page A" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestRunWebScraperRequiresStartURLs(t *testing.T) {
	client, err := New("token", "https://api.apify.com")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.RunWebScraper(context.Background(), ScrapeInput{}); err == nil {
		t.Fatal("expected error without start urls")
	}
}

func TestRunWebScraperSurfacesActorFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "actor run failed", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := New("token", server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = client.RunWebScraper(context.Background(), ScrapeInput{
		StartURLs: []StartURL{{URL: "https://example.com"}},
	})
	if err == nil {
		t.Fatal("expected error for failed run")
	}
}
