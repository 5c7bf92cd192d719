// Package google drives the escalation pipeline against live results pages.
// The same client serves Bing through its engine preset.
package google

import (
	"context"
	"strings"
	"time"

	"serpscout/internal/browser"
	"serpscout/internal/dom"
	"serpscout/internal/serp"

	"github.com/rs/zerolog"
)

// Session is what the client needs from a browser session.
type Session interface {
	Profile() browser.Profile
	Navigate(ctx context.Context, url string) error
	Root() (dom.Node, error)
	HTML() (string, error)
	ScrollToTop() error
	Screenshot(path string) error
	Release() error
}

// AcquireFunc starts a session under profile.
type AcquireFunc func(ctx context.Context, cfg browser.Config, profile browser.Profile) (Session, error)

// Fallback is a browser-free search used as the last tier.
type Fallback interface {
	Search(ctx context.Context, query string, maxResults int) ([]serp.Result, error)
}

// Client runs searches, official-site lookups and summary extraction.
type Client struct {
	browser  browser.Config
	search   serp.Config
	acquire  AcquireFunc
	fallback Fallback

	extractor  *serp.ResultExtractor
	classifier *serp.Classifier
	summary    *serp.SummaryExtractor
}

// Option customizes a Client.
type Option func(*Client)

// WithAcquire replaces how sessions are started.
func WithAcquire(fn AcquireFunc) Option {
	return func(c *Client) { c.acquire = fn }
}

// WithFallback sets the browser-free last tier. It only runs when the search
// config enables HTTPFallback.
func WithFallback(f Fallback) Option {
	return func(c *Client) { c.fallback = f }
}

// NewClient creates a Client from immutable configuration values.
func NewClient(bcfg browser.Config, scfg serp.Config, opts ...Option) *Client {
	scfg = scfg.WithDefaults()
	c := &Client{
		browser: bcfg,
		search:  scfg,
		acquire: func(ctx context.Context, cfg browser.Config, p browser.Profile) (Session, error) {
			return browser.Acquire(ctx, cfg, p)
		},
		extractor:  serp.NewResultExtractor(scfg),
		classifier: serp.NewClassifier(scfg.Classifier),
		summary:    serp.NewSummaryExtractor(scfg),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the configured engine name.
func (c *Client) Engine() string { return c.search.Engine }

// SearchURL returns the results page URL for query.
func (c *Client) SearchURL(query string, maxResults int) string {
	return c.search.BuildURL(query, c.limit(maxResults))
}

func (c *Client) limit(maxResults int) int {
	if maxResults > 0 {
		return maxResults
	}
	return c.search.MaxResults
}

// Search runs a full escalation cycle with sessions the client owns. Only
// session acquisition failures are returned as errors.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (serp.Attempt, error) {
	return c.run(ctx, nil, query, c.limit(maxResults), nil)
}

// SearchWith searches on a caller-supplied session. The session is neither
// replaced nor released, so profile rotation is skipped.
func (c *Client) SearchWith(ctx context.Context, sess Session, query string, maxResults int) (serp.Attempt, error) {
	if sess == nil {
		return c.Search(ctx, query, maxResults)
	}
	return c.run(ctx, sess, query, c.limit(maxResults), nil)
}

// Overview searches and then reads the summary panel from the same page load.
func (c *Client) Overview(ctx context.Context, query string, maxResults int, expand bool) (serp.Attempt, serp.Summary, error) {
	summary := serp.Summary{Text: "", RelatedLinks: []string{}}
	att, err := c.run(ctx, nil, query, c.limit(maxResults), func(ctx context.Context, s Session) {
		summary = c.summary.Extract(ctx, s, expand)
	})
	return att, summary, err
}

// SearchWithSummary is Overview with the summary panel expanded.
func (c *Client) SearchWithSummary(ctx context.Context, query string, maxResults int) (serp.Attempt, serp.Summary, error) {
	return c.Overview(ctx, query, maxResults, true)
}

// Summarize reads the summary panel of whatever page sess has loaded.
func (c *Client) Summarize(ctx context.Context, sess Session, expand bool) serp.Summary {
	return c.summary.Extract(ctx, sess, expand)
}

// FindOfficialSite looks up an organization's own website. ok is false when
// none is found or name is blank; that is not an error.
func (c *Client) FindOfficialSite(ctx context.Context, name string, maxResults int) (serp.Candidate, bool, error) {
	_, cand, ok, err := c.Official(ctx, name, maxResults)
	return cand, ok, err
}

// Official runs the official-site query for name and returns the attempt
// alongside the chosen candidate. A blank name issues no query.
func (c *Client) Official(ctx context.Context, name string, maxResults int) (serp.Attempt, serp.Candidate, bool, error) {
	query := serp.OfficialQuery(name)
	if query == "" {
		return serp.Attempt{}, serp.Candidate{}, false, nil
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	att, err := c.Search(ctx, query, maxResults)
	if err != nil {
		return att, serp.Candidate{}, false, err
	}
	cand, ok := c.Lookup(att.Results)
	return att, cand, ok, nil
}

// OfficialContent runs Official and wraps the verdict for output.
func (c *Client) OfficialContent(ctx context.Context, name string, maxResults int) (*OfficialContent, error) {
	att, site, found, err := c.Official(ctx, name, maxResults)
	if err != nil {
		return nil, err
	}
	return &OfficialContent{Name: name, Found: found, Site: site, Candidates: c.Classify(att.Results)}, nil
}

// Lookup applies the official-site policy to ranked results.
func (c *Client) Lookup(results []serp.Result) (serp.Candidate, bool) {
	return c.classifier.Lookup(results, c.search.EngineHosts)
}

// Classify exposes the official-site classifier.
func (c *Client) Classify(results []serp.Result) []serp.Candidate {
	out := make([]serp.Candidate, len(results))
	for i, r := range results {
		out[i] = c.classifier.Candidate(r)
	}
	return out
}

// run drives one escalation cycle. When caller is nil the cycle owns its
// sessions: at most one is alive at a time and the last one is released on
// return, after then has seen it.
func (c *Client) run(ctx context.Context, caller Session, query string, maxResults int, then func(context.Context, Session)) (serp.Attempt, error) {
	log := zerolog.Ctx(ctx).With().Str("component", c.search.Engine).Str("query", query).Logger()
	ctx = log.WithContext(ctx)
	searchURL := c.search.BuildURL(query, maxResults)

	owned := caller == nil
	cur := caller
	release := func() {
		if owned && cur != nil {
			if err := cur.Release(); err != nil {
				log.Warn().Err(err).Msg("failed to release session")
			}
			cur = nil
		}
	}
	defer release()

	lastTier := ""
	load := func(ctx context.Context, name string, profile browser.Profile, settle time.Duration) (serp.Outcome, error) {
		lastTier = name
		if owned {
			release()
			s, err := c.acquire(ctx, c.browser, profile)
			if err != nil {
				return serp.Outcome{}, err
			}
			cur = s
		}
		return c.loadAndExtract(ctx, cur, searchURL, settle, maxResults), nil
	}

	primary := browser.ProfileDesktop
	if !owned {
		primary = caller.Profile()
	}
	tiers := []serp.Tier{{
		Name:    "primary",
		Profile: primary,
		Run: func(ctx context.Context) (serp.Outcome, error) {
			return load(ctx, "primary", primary, c.search.SettleWait)
		},
	}}
	if owned && c.search.RotateOnZero {
		alt := primary.Alternate()
		tiers = append(tiers, serp.Tier{
			Name:    "rotate",
			Profile: alt,
			Run: func(ctx context.Context) (serp.Outcome, error) {
				log.Info().Str("profile", string(alt)).Msg("no results, retrying with alternate device profile")
				return load(ctx, "rotate", alt, c.search.SettleWait+c.search.RotateExtraWait)
			},
		})
	}
	if c.fallback != nil && c.search.HTTPFallback {
		tiers = append(tiers, serp.Tier{
			Name: "http",
			Run: func(ctx context.Context) (serp.Outcome, error) {
				lastTier = "http"
				log.Info().Msg("no results from browser tiers, trying http fallback")
				results, err := c.fallback.Search(ctx, query, maxResults)
				if err != nil {
					return serp.Empty(err), nil
				}
				kept := results[:0]
				for _, r := range results {
					if !c.extractor.IsEngineLink(r.Link) {
						kept = append(kept, r)
					}
				}
				return serp.Ok(kept), nil
			},
		})
	}

	att, err := serp.Run(ctx, query, maxResults, serp.Plan{
		Tiers: tiers,
		Supplement: func(ctx context.Context, have []serp.Result) []serp.Result {
			if cur == nil || lastTier == "http" {
				return have
			}
			root, err := cur.Root()
			if err != nil {
				return have
			}
			return c.extractor.BroadScan(root, have, maxResults)
		},
		Diagnose: func(ctx context.Context) serp.Status {
			return c.diagnose(ctx, cur)
		},
	})
	if err != nil {
		return att, err
	}
	log.Info().Str("tier", att.Tier).Str("status", att.Status.String()).Int("results", len(att.Results)).Msg("search finished")

	if then != nil && cur != nil {
		then(ctx, cur)
	}
	return att, nil
}

// loadAndExtract navigates, dismisses consent, waits for rendering and runs
// the result extractor. Failures become empty outcomes.
func (c *Client) loadAndExtract(ctx context.Context, s Session, searchURL string, settle time.Duration, maxResults int) serp.Outcome {
	if err := s.Navigate(ctx, searchURL); err != nil {
		return serp.Empty(err)
	}
	c.dismissConsent(ctx, s)
	if err := serp.Wait(ctx, settle); err != nil {
		return serp.Empty(err)
	}
	root, err := s.Root()
	if err != nil {
		return serp.Empty(err)
	}
	results := c.extractor.Extract(root, maxResults)
	if len(results) == 0 && c.challenged(s) {
		return serp.Blocked()
	}
	return serp.Ok(results)
}

// dismissConsent clicks a visible cookie consent button, if any.
func (c *Client) dismissConsent(ctx context.Context, s Session) {
	if c.search.ConsentSelector == "" || len(c.search.ConsentLabels) == 0 {
		return
	}
	defer func() { _ = recover() }()
	root, err := s.Root()
	if err != nil {
		return
	}
	for _, el := range root.Find(c.search.ConsentSelector) {
		text := strings.ToLower(strings.TrimSpace(el.Text()))
		if text == "" || len(text) > 40 {
			continue
		}
		for _, label := range c.search.ConsentLabels {
			if strings.Contains(text, label) && el.Visible() && el.Click() == nil {
				zerolog.Ctx(ctx).Debug().Str("button", text).Msg("dismissed consent dialog")
				_ = serp.Wait(ctx, c.search.ConsentWait)
				return
			}
		}
	}
}

func (c *Client) challenged(s Session) bool {
	html, err := s.HTML()
	if err != nil {
		return false
	}
	return serp.DetectChallenge(html, c.search.ChallengeMarkers)
}

// diagnose classifies a total miss and saves a screenshot. Screenshot
// failures are logged and ignored.
func (c *Client) diagnose(ctx context.Context, s Session) serp.Status {
	if s == nil {
		return serp.StatusEmpty
	}
	log := zerolog.Ctx(ctx)
	st := serp.StatusEmpty
	if c.challenged(s) {
		st = serp.StatusBlocked
		log.Warn().Msg("challenge page detected")
	}
	if path := c.search.ScreenshotPath; path != "" {
		if err := s.Screenshot(path); err != nil {
			log.Debug().Err(err).Msg("failed to save debug screenshot")
		} else {
			log.Info().Str("path", path).Msg("saved debug screenshot")
		}
	}
	return st
}
