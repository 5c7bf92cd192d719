package google

import (
	"context"
	"fmt"

	"serpscout/internal/config"
	"serpscout/internal/scraper"
	"serpscout/internal/serp"
	"serpscout/internal/sites/duckduckgo"
)

func init() {
	scraper.Register(&SearchScraper{})
	scraper.Register(&OfficialScraper{})
	scraper.Register(&OverviewScraper{})
}

// ClientFor builds a client for engine from the runtime settings. When the
// configured search section targets a different engine, the engine's preset
// is used with the configured result count and screenshot path.
func ClientFor(engine string, settings *config.Config) (*Client, error) {
	scfg := settings.Search
	if scfg.Engine != engine {
		preset, ok := config.Preset(engine)
		if !ok {
			return nil, fmt.Errorf("unknown engine: %s", engine)
		}
		preset.MaxResults = scfg.MaxResults
		preset.ScreenshotPath = scfg.ScreenshotPath
		preset.HTTPFallback = scfg.HTTPFallback
		scfg = preset
	}

	var opts []Option
	if scfg.HTTPFallback {
		ddg, err := duckduckgo.NewClient(nil, settings.Browser.ProxyURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithFallback(ddg))
	}
	return NewClient(settings.Browser, scfg, opts...), nil
}

// SearchScraper returns organic results for a query.
type SearchScraper struct{}

func (s *SearchScraper) Name() string { return "google" }

func (s *SearchScraper) Scrape(ctx context.Context, query string, opts scraper.Options) (scraper.Content, error) {
	return Search(ctx, "google", query, opts)
}

// Search runs a results-only search on engine. Bing shares it.
func Search(ctx context.Context, engine, query string, opts scraper.Options) (scraper.Content, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required for --site %s", engine)
	}
	client, err := ClientFor(engine, opts.Settings())
	if err != nil {
		return nil, err
	}
	att, err := client.Search(ctx, query, opts.Limit())
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", engine, err)
	}
	return scraper.NewResultsContent(engine, client.SearchURL(query, opts.Limit()), att), nil
}

// OfficialScraper finds an organization's own website.
type OfficialScraper struct{}

func (s *OfficialScraper) Name() string { return "google.official" }

func (s *OfficialScraper) Scrape(ctx context.Context, name string, opts scraper.Options) (scraper.Content, error) {
	if serp.OfficialQuery(name) == "" {
		return nil, fmt.Errorf("organization name is required for --site google.official")
	}
	client, err := ClientFor("google", opts.Settings())
	if err != nil {
		return nil, err
	}
	content, err := client.OfficialContent(ctx, name, opts.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search google: %w", err)
	}
	return content, nil
}

// OverviewScraper reads the AI summary panel along with the results.
type OverviewScraper struct{}

func (s *OverviewScraper) Name() string { return "google.overview" }

func (s *OverviewScraper) Scrape(ctx context.Context, query string, opts scraper.Options) (scraper.Content, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required for --site google.overview")
	}
	client, err := ClientFor("google", opts.Settings())
	if err != nil {
		return nil, err
	}
	att, summary, err := client.Overview(ctx, query, opts.Limit(), opts.Expand)
	if err != nil {
		return nil, fmt.Errorf("failed to search google: %w", err)
	}
	return NewOverviewContent("google", client.SearchURL(query, opts.Limit()), att, summary), nil
}
