// Package batch runs one scraper over many queries with bounded concurrency,
// pacing and a per-process result cache.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"serpscout/internal/browser"
	"serpscout/internal/config"
	"serpscout/internal/logging"
	"serpscout/internal/scraper"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Item is the outcome of one query.
type Item struct {
	Query   string
	Content scraper.Content
	Err     error
}

// Runner drives a scraper across queries. A Runner may be reused; cached
// results survive between runs until they expire.
type Runner struct {
	scraper     scraper.Scraper
	opts        scraper.Options
	concurrency int
	interval    time.Duration
	cache       *cache.Cache
	group       singleflight.Group
}

// New creates a Runner for s. A zero CacheTTL disables caching.
func New(s scraper.Scraper, cfg config.BatchConfig, opts scraper.Options) *Runner {
	r := &Runner{
		scraper:     s,
		opts:        opts,
		concurrency: max(cfg.Concurrency, 1),
		interval:    cfg.Interval,
	}
	if cfg.CacheTTL > 0 {
		r.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return r
}

func (r *Runner) key(query string) string {
	return r.scraper.Name() + ":" + query
}

// Run scrapes every query and returns the items in input order. Per-query
// failures are recorded on their item; a missing browser environment or a
// cancelled context aborts the whole batch.
func (r *Runner) Run(ctx context.Context, queries []string) (*Content, error) {
	ctx = logging.WithComponent(ctx, "batch")
	log := zerolog.Ctx(ctx)

	limit := rate.Inf
	if r.interval > 0 {
		limit = rate.Every(r.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	items := make([]Item, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, q := range queries {
		i, q := i, q
		items[i].Query = q
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			content, err := r.do(gctx, q)
			if err != nil {
				if browser.IsEnvironmentUnavailable(err) {
					return err
				}
				log.Warn().Err(err).Str("query", q).Msg("query failed")
				items[i].Err = err
				return nil
			}
			items[i].Content = content
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Content{Site: r.scraper.Name(), Items: items}, nil
}

func (r *Runner) do(ctx context.Context, query string) (scraper.Content, error) {
	key := r.key(query)
	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			zerolog.Ctx(ctx).Debug().Str("query", query).Msg("cache hit")
			return v.(scraper.Content), nil
		}
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		if r.cache != nil {
			if v, ok := r.cache.Get(key); ok {
				return v, nil
			}
		}
		content, err := r.scraper.Scrape(ctx, query, r.opts)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			r.cache.SetDefault(key, content)
		}
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(scraper.Content), nil
}

// ReadQueries reads one query per line. Blank lines and lines starting with
// '#' are skipped.
func ReadQueries(rd io.Reader) ([]string, error) {
	var queries []string
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return queries, nil
}
