package serp

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Config is the immutable tuning of one search engine: where to send the
// query, how long to let the page settle, which selectors to try and which
// hosts count as noise. Components copy what they need at construction.
type Config struct {
	Engine       string     `yaml:"engine"`
	SearchURL    string     `yaml:"search_url"`
	QueryParam   string     `yaml:"query_param"`
	CountParam   string     `yaml:"count_param"`
	ExtraParams  string     `yaml:"extra_params"`
	EngineHosts  []string   `yaml:"engine_hosts"`
	Redirects    []Redirect `yaml:"redirects"`
	MaxResults   int        `yaml:"max_results"`
	RotateOnZero bool       `yaml:"rotate_on_zero"`
	HTTPFallback bool       `yaml:"http_fallback"`

	SettleWait      time.Duration `yaml:"settle_wait"`
	RotateExtraWait time.Duration `yaml:"rotate_extra_wait"`
	ConsentWait     time.Duration `yaml:"consent_wait"`

	ResultSelectors  []string `yaml:"result_selectors"`
	LinkSelector     string   `yaml:"link_selector"`
	TitleSelector    string   `yaml:"title_selector"`
	SnippetSelectors []string `yaml:"snippet_selectors"`
	BroadScanRoots   []string `yaml:"broad_scan_roots"`
	ConsentSelector  string   `yaml:"consent_selector"`
	ConsentLabels    []string `yaml:"consent_labels"`
	ChallengeMarkers []string `yaml:"challenge_markers"`
	ScreenshotPath   string   `yaml:"screenshot_path"`

	Classifier ClassifierConfig `yaml:"classifier"`
	Summary    SummaryConfig    `yaml:"summary"`
}

// Redirect describes an engine click-tracking URL whose target sits in a
// query parameter.
type Redirect struct {
	Path   string `yaml:"path"`   // path prefix on an engine host
	Param  string `yaml:"param"`  // parameter carrying the target
	Strip  string `yaml:"strip"`  // prefix removed from the value before decoding
	Base64 bool   `yaml:"base64"` // value is URL-safe base64
}

// ClassifierConfig holds the official-site heuristics.
type ClassifierConfig struct {
	Denylist []string `yaml:"denylist"`
	Hints    []string `yaml:"hints"`

	// LabelBoundary restricts denylist fragments to whole host labels, so
	// "x.com" no longer hits "netflix.com". Off by default: any host that
	// contains a fragment is excluded.
	LabelBoundary bool `yaml:"label_boundary"`
}

// SummaryConfig tunes the summary panel extractor.
type SummaryConfig struct {
	InitialWait time.Duration `yaml:"initial_wait"`
	ScrollWait  time.Duration `yaml:"scroll_wait"`
	ClickWait   time.Duration `yaml:"click_wait"`
	ExpandWait  time.Duration `yaml:"expand_wait"`

	ExpandSelector    string   `yaml:"expand_selector"`
	ExpandLabels      []string `yaml:"expand_labels"`
	ExpandMaxLabelLen int      `yaml:"expand_max_label_len"`

	ContentSelectors   []string `yaml:"content_selectors"`
	LinkSelectors      []string `yaml:"link_selectors"`
	FallbackRoots      []string `yaml:"fallback_roots"`
	FallbackBlockLimit int      `yaml:"fallback_block_limit"`
	FallbackMinLen     int      `yaml:"fallback_min_len"`
	FallbackMaxLen     int      `yaml:"fallback_max_len"`
	NavMarkers         []string `yaml:"nav_markers"`

	MinLen    int `yaml:"min_len"`
	MaxBlocks int `yaml:"max_blocks"`
}

// GoogleConfig is the default engine configuration.
func GoogleConfig() Config {
	return Config{
		Engine:       "google",
		SearchURL:    "https://www.google.com/search",
		QueryParam:   "q",
		CountParam:   "num",
		EngineHosts:  []string{"google.com", "googleusercontent.com"},
		Redirects:    []Redirect{{Path: "/url", Param: "q"}},
		MaxResults:   20,
		RotateOnZero: true,

		SettleWait:      800 * time.Millisecond,
		RotateExtraWait: time.Second,
		ConsentWait:     500 * time.Millisecond,

		ResultSelectors:  []string{"div.g", "div[data-hveid]"},
		LinkSelector:     "a[href^='http']",
		TitleSelector:    "h3",
		SnippetSelectors: []string{"div[data-sncf]", "span[data-sncf]", ".VwiC3b", "div.IsZvec"},
		BroadScanRoots:   []string{"#main", "#rso"},
		ConsentSelector:  "button, [role='button'], input[type='submit']",
		ConsentLabels:    []string{"accept all", "i agree", "reject all"},
		ChallengeMarkers: []string{"captcha", "not a robot", "unusual traffic"},
		ScreenshotPath:   "google_search_debug.png",

		Classifier: ClassifierConfig{
			Denylist: []string{
				"facebook.com", "instagram.com", "twitter.com", "x.com",
				"youtube.com", "tiktok.com", "tripadvisor.", "yelp.", "wikipedia.org",
				"google.com", "maps.google", "news.google", "linkedin.com",
				"foursquare.com", "patch.com", "yahoo.com", "bing.com",
				"amazon.com", "ebay.com", "reddit.com", "pinterest.com",
			},
			Hints: []string{"mall", "shopping", "centre", "center", "plaza", "retail", "property"},
		},

		Summary: SummaryConfig{
			InitialWait: 3 * time.Second,
			ScrollWait:  200 * time.Millisecond,
			ClickWait:   200 * time.Millisecond,
			ExpandWait:  1200 * time.Millisecond,

			ExpandSelector:    "button, [role='button'], a, span, div[jsaction]",
			ExpandLabels:      []string{"show more", "dive deeper", "more"},
			ExpandMaxLabelLen: 40,

			ContentSelectors: []string{
				"div[role='complementary']",
				"div.WaaZC",
				"div[jsname='dvXlsc']",
				"[data-attrid='description']",
				"div.ygGdYd",
				"div.related-question-pair",
				"div[data-ved][data-tts-response]",
				"div.LGOjhe",
				"div.Sal6Tb",
				"div.X5LH0c",
				"div.O9g1cc",
			},
			LinkSelectors:      []string{"div.VqeGe", "div[role='complementary'] a[href^='http']"},
			FallbackRoots:      []string{"#rso", "#main", "#search"},
			FallbackBlockLimit: 15,
			FallbackMinLen:     100,
			FallbackMaxLen:     5000,
			NavMarkers:         []string{"Sign in", "Settings"},

			MinLen:    30,
			MaxBlocks: 3,
		},
	}
}

// BingConfig tunes the pipeline for Bing result pages.
func BingConfig() Config {
	cfg := GoogleConfig()
	cfg.Engine = "bing"
	cfg.SearchURL = "https://www.bing.com/search"
	cfg.CountParam = "count"
	cfg.ExtraParams = "PC=U316&FORM=CHROMN"
	cfg.EngineHosts = []string{"bing.com", "microsoft.com/bing"}
	cfg.Redirects = []Redirect{{Path: "/ck/a", Param: "u", Strip: "a1", Base64: true}}
	cfg.ResultSelectors = []string{"#b_results li.b_algo", "#b_results li"}
	cfg.LinkSelector = "h2 a[href^='http']"
	cfg.TitleSelector = "h2"
	cfg.SnippetSelectors = []string{".b_caption p", "p"}
	cfg.BroadScanRoots = []string{"#b_results"}
	cfg.ConsentSelector = "button, #bnp_btn_accept"
	cfg.ConsentLabels = []string{"accept", "accept all"}
	cfg.ScreenshotPath = "bing_search_debug.png"
	cfg.Summary.ContentSelectors = []string{".b_ans .b_focusTextLarge", ".b_ans .b_paractl", "#b_copilot_search .b_paractl"}
	cfg.Summary.LinkSelectors = []string{"#b_copilot_search a[href^='http']"}
	cfg.Summary.FallbackRoots = []string{"#b_context", "#b_results"}
	return cfg
}

// WithDefaults fills zero fields from GoogleConfig.
func (c Config) WithDefaults() Config {
	d := GoogleConfig()
	if c.Engine == "" {
		c.Engine = d.Engine
	}
	if c.SearchURL == "" {
		c.SearchURL = d.SearchURL
	}
	if c.QueryParam == "" {
		c.QueryParam = d.QueryParam
	}
	if len(c.EngineHosts) == 0 {
		c.EngineHosts = slices.Clone(d.EngineHosts)
	}
	if c.Redirects == nil {
		c.Redirects = slices.Clone(d.Redirects)
	}
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if len(c.ResultSelectors) == 0 {
		c.ResultSelectors = slices.Clone(d.ResultSelectors)
	}
	if c.LinkSelector == "" {
		c.LinkSelector = d.LinkSelector
	}
	if c.TitleSelector == "" {
		c.TitleSelector = d.TitleSelector
	}
	if len(c.SnippetSelectors) == 0 {
		c.SnippetSelectors = slices.Clone(d.SnippetSelectors)
	}
	if len(c.BroadScanRoots) == 0 {
		c.BroadScanRoots = slices.Clone(d.BroadScanRoots)
	}
	if len(c.ChallengeMarkers) == 0 {
		c.ChallengeMarkers = slices.Clone(d.ChallengeMarkers)
	}
	if len(c.Classifier.Denylist) == 0 {
		c.Classifier.Denylist = slices.Clone(d.Classifier.Denylist)
	}
	if len(c.Classifier.Hints) == 0 {
		c.Classifier.Hints = slices.Clone(d.Classifier.Hints)
	}
	c.Summary = c.Summary.withDefaults(d.Summary)
	return c
}

func (s SummaryConfig) withDefaults(d SummaryConfig) SummaryConfig {
	if s.ExpandSelector == "" {
		s.ExpandSelector = d.ExpandSelector
	}
	if len(s.ExpandLabels) == 0 {
		s.ExpandLabels = slices.Clone(d.ExpandLabels)
	}
	if s.ExpandMaxLabelLen <= 0 {
		s.ExpandMaxLabelLen = d.ExpandMaxLabelLen
	}
	if len(s.ContentSelectors) == 0 {
		s.ContentSelectors = slices.Clone(d.ContentSelectors)
	}
	if len(s.LinkSelectors) == 0 {
		s.LinkSelectors = slices.Clone(d.LinkSelectors)
	}
	if len(s.FallbackRoots) == 0 {
		s.FallbackRoots = slices.Clone(d.FallbackRoots)
	}
	if s.FallbackBlockLimit <= 0 {
		s.FallbackBlockLimit = d.FallbackBlockLimit
	}
	if s.FallbackMinLen <= 0 {
		s.FallbackMinLen = d.FallbackMinLen
	}
	if s.FallbackMaxLen <= 0 {
		s.FallbackMaxLen = d.FallbackMaxLen
	}
	if s.NavMarkers == nil {
		s.NavMarkers = slices.Clone(d.NavMarkers)
	}
	if s.MinLen <= 0 {
		s.MinLen = d.MinLen
	}
	if s.MaxBlocks <= 0 {
		s.MaxBlocks = d.MaxBlocks
	}
	return s
}

// Validate reports configuration that would make every search fail.
func (c Config) Validate() error {
	u, err := url.Parse(c.SearchURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid search url: %q", c.SearchURL)
	}
	if c.QueryParam == "" {
		return fmt.Errorf("query param cannot be empty")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max results must be positive")
	}
	if len(c.ResultSelectors) == 0 {
		return fmt.Errorf("at least one result selector is required")
	}
	return nil
}

// BuildURL returns the results page URL for query. The count parameter is
// capped at 100, the most the engines honor.
func (c Config) BuildURL(query string, maxResults int) string {
	v := url.Values{}
	v.Set(c.QueryParam, query)
	if c.CountParam != "" && maxResults > 0 {
		v.Set(c.CountParam, fmt.Sprint(min(maxResults, 100)))
	}
	u := c.SearchURL + "?" + v.Encode()
	if c.ExtraParams != "" {
		u += "&" + strings.TrimPrefix(c.ExtraParams, "&")
	}
	return u
}
