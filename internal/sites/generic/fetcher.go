package generic

import (
	"context"
	"fmt"
	"time"

	"serpscout/internal/browser"

	"github.com/rs/zerolog"
)

// Page is the part of a browser session the fetcher drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	HTML() (string, error)
	Title() string
	URL() string
	Release() error
}

// AcquireFunc starts a page session.
type AcquireFunc func(ctx context.Context, cfg browser.Config) (Page, error)

// Snapshot is a rendered page captured before its session is released.
type Snapshot struct {
	HTML     string
	Title    string
	URL      string
	LoadTime time.Duration
}

// Fetcher loads pages in a fresh desktop session per call.
type Fetcher struct {
	cfg     browser.Config
	acquire AcquireFunc
}

// NewFetcher creates a new Fetcher instance. A nil acquire launches Chrome.
func NewFetcher(cfg browser.Config, acquire AcquireFunc) *Fetcher {
	if acquire == nil {
		acquire = func(ctx context.Context, cfg browser.Config) (Page, error) {
			return browser.Acquire(ctx, cfg, browser.ProfileDesktop)
		}
	}
	return &Fetcher{cfg: cfg, acquire: acquire}
}

// Fetch navigates to url and captures the rendered document.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Snapshot, error) {
	log := zerolog.Ctx(ctx).With().Str("component", "fetch").Logger()
	start := time.Now()

	page, err := f.acquire(ctx, f.cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := page.Release(); err != nil {
			log.Warn().Err(err).Msg("failed to release session")
		}
	}()

	if err := page.Navigate(ctx, url); err != nil {
		return nil, err
	}
	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page source: %w", err)
	}

	snap := &Snapshot{HTML: html, Title: page.Title(), URL: page.URL(), LoadTime: time.Since(start)}
	if snap.URL == "" {
		snap.URL = url
	}
	log.Debug().Str("url", snap.URL).Dur("load_time", snap.LoadTime).Msg("page captured")
	return snap, nil
}

// FetchText loads url and returns its main article as Markdown.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	snap, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	ex, err := Extract(snap, LevelContent, "")
	if err != nil {
		return "", err
	}
	return markdown(ex.HTML)
}
