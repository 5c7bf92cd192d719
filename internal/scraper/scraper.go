package scraper

import (
	"context"

	"serpscout/internal/config"
)

type Scraper interface {
	Name() string
	Scrape(ctx context.Context, target string, opts Options) (Content, error)
}

type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
}

type Options struct {
	Config     *config.Config // assembled runtime config; nil means config.Default()
	MaxResults int            // 0 uses the configured default
	Expand     bool           // click "show more" on the summary panel
	Level      string         // generic mode: full/body/content/css
	Selector   string
}

// Settings returns the runtime config the options carry.
func (o Options) Settings() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

// Limit returns the requested result count, falling back to the configured
// default.
func (o Options) Limit() int {
	if o.MaxResults > 0 {
		return o.MaxResults
	}
	if n := o.Settings().Search.MaxResults; n > 0 {
		return n
	}
	return 20
}
