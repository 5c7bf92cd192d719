package duckduckgo

import (
	"context"
	"fmt"

	"serpscout/internal/scraper"
	"serpscout/internal/serp"
)

func init() {
	scraper.Register(&DuckDuckGoScraper{})
}

// DuckDuckGoScraper searches DuckDuckGo without a browser.
type DuckDuckGoScraper struct{}

func (s *DuckDuckGoScraper) Name() string { return "duckduckgo" }

func (s *DuckDuckGoScraper) Scrape(ctx context.Context, query string, opts scraper.Options) (scraper.Content, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required for --site duckduckgo")
	}
	settings := opts.Settings()
	client, err := NewClient(nil, settings.Browser.ProxyURL)
	if err != nil {
		return nil, err
	}
	if d := settings.Browser.PageLoadTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	results, err := client.Search(ctx, query, opts.Limit())
	if err != nil {
		return nil, fmt.Errorf("failed to search duckduckgo: %w", err)
	}
	att := serp.Attempt{Query: query, Tier: "http", Results: results, Status: serp.StatusEmpty}
	if len(results) > 0 {
		att.Status = serp.StatusOK
	}
	return scraper.NewResultsContent("duckduckgo", client.SearchURL(query), att), nil
}
