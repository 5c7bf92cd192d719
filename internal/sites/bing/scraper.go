package bing

import (
	"context"

	"serpscout/internal/scraper"
	"serpscout/internal/sites/google"
)

func init() {
	scraper.Register(&BingScraper{})
}

// BingScraper searches www.bing.com through the same escalation pipeline as
// Google, using the Bing selector preset.
type BingScraper struct{}

func (s *BingScraper) Name() string { return "bing" }

func (s *BingScraper) Scrape(ctx context.Context, query string, opts scraper.Options) (scraper.Content, error) {
	return google.Search(ctx, "bing", query, opts)
}
