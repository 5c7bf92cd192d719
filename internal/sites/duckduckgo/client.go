// Package duckduckgo searches the DuckDuckGo HTML endpoint over plain HTTP.
// It needs no browser and returns the same record shape as the browser
// pipeline.
package duckduckgo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"serpscout/internal/dom"
	"serpscout/internal/serp"

	"github.com/rs/zerolog"
)

const (
	DefaultEndpoint = "https://html.duckduckgo.com/html/"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	maxBody         = 4 << 20
)

var spaces = regexp.MustCompile(`\s+`)

// Client is an HTTP client for DuckDuckGo HTML search.
type Client struct {
	http     *http.Client
	endpoint string
	region   string
}

// NewClient creates a Client. A nil hc gets a client with a 30s timeout;
// proxyURL, when set, routes requests through that proxy.
func NewClient(hc *http.Client, proxyURL string) (*Client, error) {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
		if proxyURL != "" {
			u, err := url.Parse(proxyURL)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy url: %w", err)
			}
			hc.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
		}
	}
	return &Client{http: hc, endpoint: DefaultEndpoint, region: "wt-wt"}, nil
}

// WithEndpoint returns a copy of c that queries endpoint instead.
func (c *Client) WithEndpoint(endpoint string) *Client {
	cp := *c
	cp.endpoint = endpoint
	return &cp
}

// SearchURL returns the request URL for query.
func (c *Client) SearchURL(query string) string {
	v := url.Values{}
	v.Set("q", cleanQuery(query))
	v.Set("kl", c.region)
	return c.endpoint + "?" + v.Encode()
}

// Search returns up to maxResults results for query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]serp.Result, error) {
	if cleanQuery(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	log := zerolog.Ctx(ctx).With().Str("component", "duckduckgo").Logger()

	searchURL := c.SearchURL(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search duckduckgo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	root, err := dom.FromHTML(io.LimitReader(resp.Body, maxBody), searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}
	results := Parse(root, maxResults)
	log.Debug().Str("query", query).Int("results", len(results)).Msg("search finished")
	return results, nil
}

// Parse extracts results from a DuckDuckGo HTML results page. Redirect links
// are unwrapped and links back into duckduckgo.com are skipped.
func Parse(root dom.Node, maxResults int) []serp.Result {
	var out []serp.Result
	seen := map[string]struct{}{}
	for _, block := range root.Find("div.result, div.web-result") {
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
		if strings.Contains(block.Attr("class"), "result--ad") {
			continue
		}
		a := dom.First(block, "a.result__a")
		if a == nil {
			continue
		}
		link := unwrap(a.Href())
		key := serp.NormalizeLink(link)
		if key == "" || strings.Contains(strings.ToLower(link), "duckduckgo.com") {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, serp.Result{
			Title:   a.Text(),
			Link:    link,
			Snippet: dom.TextOf(block, ".result__snippet"),
		})
	}
	return out
}

// unwrap resolves duckduckgo.com/l/?uddg=<target> redirects.
func unwrap(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func cleanQuery(q string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(q, " "))
}
