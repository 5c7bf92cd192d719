package scraper

import (
	"context"
	"encoding/json"
	"testing"

	"serpscout/internal/browser"
	"serpscout/internal/config"
	"serpscout/internal/serp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedScraper string

func (n namedScraper) Name() string { return string(n) }
func (n namedScraper) Scrape(context.Context, string, Options) (Content, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	Register(namedScraper("Zeta.Test"))
	Register(namedScraper("alpha.test"))

	s, ok := Get("zeta.TEST")
	require.True(t, ok)
	assert.Equal(t, "Zeta.Test", s.Name())

	_, ok = Get("missing")
	assert.False(t, ok)

	names := Names()
	assert.Contains(t, names, "alpha.test")
	assert.IsNonDecreasing(t, names)
}

func TestOptionsLimit(t *testing.T) {
	assert.Equal(t, 20, Options{}.Limit())
	assert.Equal(t, 7, Options{MaxResults: 7}.Limit())

	cfg := config.Default()
	cfg.Search.MaxResults = 12
	assert.Equal(t, 12, Options{Config: cfg}.Limit())
	assert.Same(t, cfg, Options{Config: cfg}.Settings())
}

func results() *ResultsContent {
	return NewResultsContent("google", "https://www.google.com/search?num=20&q=phoenix+mall", serp.Attempt{
		Query:   "phoenix mall",
		Profile: browser.ProfileMobile,
		Tier:    "rotate",
		Status:  serp.StatusOK,
		Results: []serp.Result{
			{Title: "Phoenix Mall", Link: "https://phoenixmall.com", Snippet: "Shops & dining"},
			{Link: "https://example.com/phoenix"},
		},
	})
}

func TestResultsContent_Text(t *testing.T) {
	out, err := results().ToText()
	require.NoError(t, err)
	assert.Contains(t, out, "Google Search: phoenix mall\n2 results (ok, mobile)")
	assert.Contains(t, out, "1. Phoenix Mall\n   https://phoenixmall.com\n   Shops & dining\n")
	assert.Contains(t, out, "2. https://example.com/phoenix\n")
}

func TestResultsContent_HTMLEscapes(t *testing.T) {
	out, err := results().ToHTML()
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Shops &amp; dining</p>")
}

func TestResultsContent_JSON(t *testing.T) {
	b, err := results().ToJSON()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "google", got["engine"])
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "mobile", got["device_profile"])
	assert.Len(t, got["results"], 2)
}

func TestResultsContent_EmptyResultsAreAnArray(t *testing.T) {
	b, err := NewResultsContent("bing", "", serp.Attempt{Query: "q"}).ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"results": []`)
	assert.Contains(t, string(b), `"status": "empty"`)
}

func TestResultsContent_CSV(t *testing.T) {
	out, err := results().ToCSV()
	require.NoError(t, err)
	assert.Equal(t, "Title,Link,Snippet\nPhoenix Mall,https://phoenixmall.com,Shops & dining\n,https://example.com/phoenix,\n", out)
}
