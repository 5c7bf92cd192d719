package generic

import (
	"context"
	"fmt"

	"serpscout/internal/scraper"
)

func init() {
	scraper.Register(&GenericScraper{})
}

// GenericScraper renders an arbitrary URL and extracts content at a level.
type GenericScraper struct {
	acquire AcquireFunc
}

// NewGenericScraper creates generic scraper instance. A nil acquire launches
// Chrome.
func NewGenericScraper(acquire AcquireFunc) *GenericScraper {
	return &GenericScraper{acquire: acquire}
}

// Name returns scraper name
func (g *GenericScraper) Name() string {
	return "generic"
}

// Scrape fetches the page and extracts content before the session is
// released, so the returned PageContent needs no live browser.
func (g *GenericScraper) Scrape(ctx context.Context, target string, opts scraper.Options) (scraper.Content, error) {
	if target == "" {
		return nil, fmt.Errorf("URL is required")
	}
	f := NewFetcher(opts.Settings().Browser, g.acquire)
	snap, err := f.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}

	level := opts.Level
	if level == "" {
		level = LevelFull
	}
	ex, err := Extract(snap, level, opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}
	return NewPageContent(ex, level, snap), nil
}
