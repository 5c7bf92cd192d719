package serp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(GoogleConfig().Classifier)

	tests := []struct {
		name  string
		link  string
		title string
		want  bool
	}{
		{"plain site defaults to official", "https://examplecenter.com/", "Example Center", true},
		{"hint in host", "https://phoenixmall.in/", "", true},
		{"hint in title", "https://phx.in/", "Phoenix Shopping Plaza", true},
		{"social network", "https://www.facebook.com/examplecenter", "Example Center Mall", false},
		{"video platform", "https://m.youtube.com/watch?v=1", "Mall tour", false},
		{"review site any tld", "https://www.yelp.ca/biz/example", "Example Center", false},
		{"subdomain of x.com", "https://mobile.x.com/example", "", false},
		{"host containing a video domain", "https://notyoutube.com/x", "", false},
		{"host containing a social domain", "https://myfacebook.com/", "", false},
		{"host containing x.com", "https://netflix.com/title/1", "", false},
		{"host containing a review site", "https://fakeyelp.com/", "", false},
		{"maps host", "https://maps.google.co.in/place", "", false},
		{"no host", "not a link", "Mall", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.link, tt.title))
		})
	}
}

func TestClassifier_LabelBoundary(t *testing.T) {
	cfg := GoogleConfig().Classifier
	cfg.LabelBoundary = true
	c := NewClassifier(cfg)

	assert.True(t, c.Classify("https://box.com/example", ""))
	assert.True(t, c.Classify("https://notyoutube.com/x", ""))
	assert.False(t, c.Classify("https://mobile.x.com/example", ""))
	assert.False(t, c.Classify("https://www.yelp.ca/biz/example", ""))
}

func TestClassifier_CandidateReportsHints(t *testing.T) {
	c := NewClassifier(GoogleConfig().Classifier)

	hinted := c.Candidate(Result{Link: "https://phoenixmall.in/", Title: "Phoenix"})
	assert.True(t, hinted.Official)
	assert.True(t, hinted.Hinted)

	plain := c.Candidate(Result{Link: "https://examplecenter.com/", Title: "Example"})
	assert.True(t, plain.Official)
	assert.False(t, plain.Hinted)

	denied := c.Candidate(Result{Link: "https://instagram.com/mall", Title: "Mall"})
	assert.False(t, denied.Official)
	assert.True(t, denied.Hinted)
}

func TestClassifier_Idempotent(t *testing.T) {
	c := NewClassifier(GoogleConfig().Classifier)
	pairs := [][2]string{
		{"https://examplecenter.com", "Example Center"},
		{"https://instagram.com/examplecenter", "Example Center Mall"},
		{"https://retail.example.org", ""},
	}
	for _, p := range pairs {
		first := c.Classify(p[0], p[1])
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, c.Classify(p[0], p[1]))
		}
	}
}

func TestClassifier_DenylistBeatsHints(t *testing.T) {
	c := NewClassifier(GoogleConfig().Classifier)
	for _, link := range []string{
		"https://www.facebook.com/mallplaza",
		"https://www.tiktok.com/@shoppingcentre",
		"https://www.youtube.com/c/RetailPropertyMall",
		"https://twitter.com/centerplaza",
	} {
		assert.False(t, c.Classify(link, "Official Mall Shopping Centre Plaza"), link)
	}
}

func TestClassifier_LookupScenario(t *testing.T) {
	c := NewClassifier(GoogleConfig().Classifier)
	results := []Result{
		{Title: "Example Center | Facebook", Link: "https://facebook.com/examplecenter"},
		{Title: "Example Center", Link: "https://examplecenter.com"},
	}

	got, ok := c.Lookup(results, GoogleConfig().EngineHosts)
	require.True(t, ok)
	assert.Equal(t, "https://examplecenter.com", got.Link)
	assert.Equal(t, "Example Center", got.Title)
	assert.True(t, got.Official)
}

func TestClassifier_LookupSkipsLookalikeHosts(t *testing.T) {
	c := NewClassifier(GoogleConfig().Classifier)
	results := []Result{
		{Title: "Example Center videos", Link: "https://watchyoutube.com/examplecenter"},
		{Title: "Example Center", Link: "https://examplecenter.com"},
	}
	got, ok := c.Lookup(results, GoogleConfig().EngineHosts)
	require.True(t, ok)
	assert.Equal(t, "https://examplecenter.com", got.Link)
}

func TestClassifier_LookupNotFound(t *testing.T) {
	c := NewClassifier(GoogleConfig().Classifier)
	results := []Result{
		{Link: "https://facebook.com/examplecenter"},
		{Link: "https://www.google.com/maps/place/x"},
		{Link: "  "},
	}
	_, ok := c.Lookup(results, GoogleConfig().EngineHosts)
	assert.False(t, ok)

	_, ok = c.Lookup(nil, nil)
	assert.False(t, ok)
}

func TestClassifier_LookupTitleFallsBackToLink(t *testing.T) {
	c := NewClassifier(GoogleConfig().Classifier)
	got, ok := c.Lookup([]Result{{Link: "https://examplecenter.com"}}, nil)
	require.True(t, ok)
	assert.Equal(t, "https://examplecenter.com", got.Title)
}

func TestOfficialQuery(t *testing.T) {
	assert.Equal(t, `"Example Center" official website`, OfficialQuery("  Example Center "))
	assert.Equal(t, "", OfficialQuery("   "))
}
