package bing

import (
	"testing"

	"serpscout/internal/dom"
	"serpscout/internal/scraper"
	"serpscout/internal/serp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body><ol id="b_results">
<li class="b_algo"><h2><a href="https://golang.org/doc/">Documentation - The Go Programming Language</a></h2>
  <div class="b_caption"><p>Official documentation.</p></div></li>
<li class="b_algo"><h2><a href="https://www.bing.com/ck/a?u=1">Tracked</a></h2></li>
<li class="b_algo"><h2><a href="https://www.bing.com/ck/a?!&amp;&amp;p=abc&amp;u=a1aHR0cHM6Ly93d3cuZXhhbXBsZS5vcmcvc3RvcmVzP2lkPTc&amp;ntb=1">Example Stores</a></h2></li>
<li class="b_algo"><h2><a href="https://go.dev/tour/">A Tour of Go</a></h2><p>Interactive tour.</p></li>
<li class="b_ans"><div>Related searches</div></li>
</ol></body></html>`

func TestRegistered(t *testing.T) {
	s, ok := scraper.Get("Bing")
	require.True(t, ok)
	assert.Equal(t, "bing", s.Name())
}

func TestBingPresetExtraction(t *testing.T) {
	root, err := dom.FromHTMLString(resultsPage, "https://www.bing.com/search?q=golang")
	require.NoError(t, err)

	got := serp.NewResultExtractor(serp.BingConfig()).Extract(root, 10)
	require.Len(t, got, 3)
	assert.Equal(t, serp.Result{
		Title:   "Documentation - The Go Programming Language",
		Link:    "https://golang.org/doc/",
		Snippet: "Official documentation.",
	}, got[0])
	assert.Equal(t, "https://www.example.org/stores?id=7", got[1].Link, "tracking link unwrapped")
	assert.Equal(t, "Example Stores", got[1].Title)
	assert.Equal(t, "Interactive tour.", got[2].Snippet)
}
