package prep

import (
	"context"
	"strings"

	"confpilot/internal/logging"
	"confpilot/internal/research"
	"confpilot/internal/services/apify"
	"confpilot/internal/services/serper"
)

const maxSearchSnippets = 5

// scrapePageFunction runs inside the scraper actor and extracts the page
// title plus the first 1500 characters of body text.
const scrapePageFunction = `async function pageFunction(context) {
    const { request, $, log } = context;
    if (!$) {
      return null;
    }
    const title = $('title').text() || request.url;
    const text = $('body').text().replace(/\s+/g, ' ').trim().slice(0, 1500);
    log.debug('Scraped page', { url: request.url, textLength: text.length });
    return { url: request.url, title, text };
  }`

func mapSearchResults(resp *serper.Response) []research.ResearchSnippet {
	if resp == nil || len(resp.Organic) == 0 {
		return nil
	}
	organic := resp.Organic
	if len(organic) > maxSearchSnippets {
		organic = organic[:maxSearchSnippets]
	}
	snippets := make([]research.ResearchSnippet, 0, len(organic))
	for _, item := range organic {
		snippets = append(snippets, research.ResearchSnippet{
			Title:   item.Title,
			Summary: item.Snippet,
			URL:     item.Link,
			Source:  research.SourceSerper,
		})
	}
	return snippets
}

// scrapeTopLinks scrapes the first two links for full page text. Scrape
// failures degrade to search snippets only.
func (s *Service) scrapeTopLinks(ctx context.Context, links []string) []research.ResearchSnippet {
	if len(links) == 0 {
		return nil
	}
	if len(links) > 2 {
		links = links[:2]
	}
	startURLs := make([]apify.StartURL, 0, len(links))
	for _, link := range links {
		startURLs = append(startURLs, apify.StartURL{URL: link})
	}

	items, err := s.scrape.RunWebScraper(ctx, apify.ScrapeInput{
		StartURLs:           startURLs,
		MaxRequestsPerCrawl: 10,
		MaxPagesPerCrawl:    10,
		PageFunction:        scrapePageFunction,
	})
	if err != nil {
		s.logger.Warn("page scrape failed", logging.Error(err))
		return nil
	}

	snippets := make([]research.ResearchSnippet, 0, len(items))
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = "Scraped page"
		}
		snippets = append(snippets, research.ResearchSnippet{
			Title:   title,
			Summary: item.Text,
			URL:     item.URL,
			Source:  research.SourceApify,
		})
	}
	return snippets
}

// gatherTopicResearch searches on the session title and track, then scrapes
// the top hits for depth.
func (s *Service) gatherTopicResearch(ctx context.Context, session research.SessionOutline) ([]research.ResearchSnippet, error) {
	query := strings.TrimSpace(session.SessionTitle + " " + session.Track)
	resp, err := s.search.Search(ctx, serper.Query{Text: query})
	if err != nil {
		return nil, err
	}
	snippets := mapSearchResults(resp)

	var links []string
	for _, snippet := range snippets {
		if snippet.URL != "" {
			links = append(links, snippet.URL)
		}
	}
	return append(snippets, s.scrapeTopLinks(ctx, links)...), nil
}

// gatherCompanyResearch searches recent company news. Sessions without a
// company get no company research.
func (s *Service) gatherCompanyResearch(ctx context.Context, session research.SessionOutline) ([]research.ResearchSnippet, error) {
	if session.Company == "" {
		return nil, nil
	}
	resp, err := s.search.Search(ctx, serper.Query{Text: session.Company + " company news"})
	if err != nil {
		return nil, err
	}
	return mapSearchResults(resp), nil
}

// gatherSpeakerResearch combines a web search on the speaker with the
// people-data profile snippet, or a placeholder when no profile is found.
func (s *Service) gatherSpeakerResearch(ctx context.Context, session research.SessionOutline) ([]research.ResearchSnippet, error) {
	var snippets []research.ResearchSnippet

	query := strings.TrimSpace(session.Speaker + " " + session.Company)
	if query != "" {
		resp, err := s.search.Search(ctx, serper.Query{Text: query})
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, mapSearchResults(resp)...)
	}

	if snippet := s.fetchSpeakerSnippet(ctx, session); snippet != nil {
		snippets = append(snippets, *snippet)
	} else {
		snippets = append(snippets, research.ResearchSnippet{
			Title:   "Bright Data speaker profile unavailable",
			Summary: "Bright Data did not return a profile. Prepare conversation hooks based on the session abstract and company focus.",
			Source:  research.SourceBrightData,
		})
	}
	return snippets, nil
}

// dedupeLinks collects snippet URLs in first-seen order, skipping blanks.
func dedupeLinks(snippets []research.ResearchSnippet) []string {
	seen := make(map[string]struct{})
	links := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		if snippet.URL == "" {
			continue
		}
		if _, ok := seen[snippet.URL]; ok {
			continue
		}
		seen[snippet.URL] = struct{}{}
		links = append(links, snippet.URL)
	}
	return links
}
