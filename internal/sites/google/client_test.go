package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"serpscout/internal/browser"
	"serpscout/internal/config"
	"serpscout/internal/dom"
	"serpscout/internal/serp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyPage = `<html><body><div id="main"><div id="rso"></div></div></body></html>`

const captchaPage = `<html><body><div id="main">Our systems have detected unusual traffic from your computer network.</div></body></html>`

func resultsPage(prefix string, n int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="main"><div id="rso">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<div class="g"><a href="https://%s%d.example.com/"><h3>%s %d</h3></a><div class="VwiC3b">snippet %d</div></div>`, prefix, i, prefix, i, i)
	}
	b.WriteString(`</div></div></body></html>`)
	return b.String()
}

type fakeSession struct {
	profile     browser.Profile
	html        string
	navigateErr error
	navigated   []string
	screenshots []string
	released    int
	clicks      *int
	env         *fakeEnv
}

func (s *fakeSession) Profile() browser.Profile { return s.profile }

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return s.navigateErr
}

func (s *fakeSession) Root() (dom.Node, error) {
	root, err := dom.FromHTMLString(s.html, "https://www.google.com/search")
	if err != nil || s.clicks == nil {
		return root, err
	}
	return clickRoot{Node: root, clicks: s.clicks}, nil
}

// clickRoot makes every found node clickable and counts the clicks.
type clickRoot struct {
	dom.Node
	clicks *int
}

func (r clickRoot) Find(selector string) []dom.Node {
	found := r.Node.Find(selector)
	out := make([]dom.Node, len(found))
	for i, n := range found {
		out[i] = clickNode{Node: n, clicks: r.clicks}
	}
	return out
}

type clickNode struct {
	dom.Node
	clicks *int
}

func (c clickNode) Click() error {
	*c.clicks++
	return nil
}

func (s *fakeSession) HTML() (string, error) { return s.html, nil }
func (s *fakeSession) ScrollToTop() error    { return nil }

func (s *fakeSession) Screenshot(path string) error {
	s.screenshots = append(s.screenshots, path)
	return errors.New("no display")
}

func (s *fakeSession) Release() error {
	s.released++
	if s.env != nil {
		s.env.alive--
	}
	return nil
}

// fakeEnv hands out sessions whose page depends on the device profile.
type fakeEnv struct {
	pages    map[browser.Profile]string
	err      error
	sessions []*fakeSession
	alive    int
	maxAlive int
	clicks   *int
}

func (e *fakeEnv) acquire(_ context.Context, _ browser.Config, p browser.Profile) (Session, error) {
	if e.err != nil {
		return nil, e.err
	}
	s := &fakeSession{profile: p, html: e.pages[p], clicks: e.clicks, env: e}
	e.sessions = append(e.sessions, s)
	e.alive++
	e.maxAlive = max(e.maxAlive, e.alive)
	return s, nil
}

func quickSearch() serp.Config {
	cfg := serp.GoogleConfig()
	cfg.SettleWait = 0
	cfg.RotateExtraWait = 0
	cfg.ConsentWait = 0
	cfg.Summary.InitialWait = 0
	cfg.Summary.ScrollWait = 0
	cfg.Summary.ClickWait = 0
	cfg.Summary.ExpandWait = 0
	return cfg
}

func newTestClient(env *fakeEnv, opts ...Option) *Client {
	return NewClient(browser.DefaultConfig(), quickSearch(), append([]Option{WithAcquire(env.acquire)}, opts...)...)
}

func TestClient_SearchPrimaryTier(t *testing.T) {
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: resultsPage("desk", 5)}}
	c := newTestClient(env)

	att, err := c.Search(context.Background(), "phoenix mall", 20)
	require.NoError(t, err)
	assert.Equal(t, serp.StatusOK, att.Status)
	assert.Equal(t, browser.ProfileDesktop, att.Profile)
	require.Len(t, att.Results, 5)
	assert.Equal(t, "desk 0", att.Results[0].Title)

	require.Len(t, env.sessions, 1)
	assert.Equal(t, 1, env.sessions[0].released)
	assert.Equal(t, []string{"https://www.google.com/search?num=20&q=phoenix+mall"}, env.sessions[0].navigated)
}

func TestClient_SearchRotatesProfile(t *testing.T) {
	env := &fakeEnv{pages: map[browser.Profile]string{
		browser.ProfileDesktop: emptyPage,
		browser.ProfileMobile:  resultsPage("mobile", 3),
	}}
	c := newTestClient(env)

	att, err := c.Search(context.Background(), "Example Center", 20)
	require.NoError(t, err)
	require.Len(t, att.Results, 3)
	for i, r := range att.Results {
		assert.Equal(t, fmt.Sprintf("mobile %d", i), r.Title)
	}
	assert.Equal(t, browser.ProfileMobile, att.Profile)
	assert.Equal(t, "rotate", att.Tier)

	require.Len(t, env.sessions, 2)
	assert.Equal(t, 1, env.sessions[0].released)
	assert.Equal(t, 1, env.sessions[1].released)
	assert.Equal(t, 1, env.maxAlive)
}

func TestClient_SearchCapAndDedup(t *testing.T) {
	page := strings.Replace(resultsPage("a", 10), `</div></div></body>`,
		`<div class="g"><a href="https://a0.example.com/#dup"><h3>dup</h3></a></div></div></div></body>`, 1)
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: page}}
	c := newTestClient(env)

	att, err := c.Search(context.Background(), "q", 4)
	require.NoError(t, err)
	assert.Len(t, att.Results, 4)

	att, err = c.Search(context.Background(), "q", 50)
	require.NoError(t, err)
	assert.Len(t, att.Results, 10)
}

func TestClient_SearchBroadScanTopsUp(t *testing.T) {
	page := `<html><body><div id="main">
<div class="g"><a href="https://one.example.com/"><h3>One</h3></a></div>
<a href="https://two.example.com/path?ref=x">Two</a>
<a href="https://maps.google.com/x">Map</a>
</div></body></html>`
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: page}}

	att, err := newTestClient(env).Search(context.Background(), "q", 10)
	require.NoError(t, err)
	require.Len(t, att.Results, 2)
	assert.Equal(t, serp.Result{Title: "Two", Link: "https://two.example.com/path"}, att.Results[1])
}

func TestClient_SearchBlocked(t *testing.T) {
	env := &fakeEnv{pages: map[browser.Profile]string{
		browser.ProfileDesktop: captchaPage,
		browser.ProfileMobile:  captchaPage,
	}}
	c := newTestClient(env)

	att, err := c.Search(context.Background(), "q", 10)
	require.NoError(t, err, "screenshot failures are swallowed")
	assert.Equal(t, serp.StatusBlocked, att.Status)
	assert.NotNil(t, att.Results)
	assert.Empty(t, att.Results)

	last := env.sessions[len(env.sessions)-1]
	assert.Equal(t, []string{"google_search_debug.png"}, last.screenshots)
}

func TestClient_SearchEmptyIsNotBlocked(t *testing.T) {
	env := &fakeEnv{pages: map[browser.Profile]string{
		browser.ProfileDesktop: emptyPage,
		browser.ProfileMobile:  emptyPage,
	}}
	att, err := newTestClient(env).Search(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Equal(t, serp.StatusEmpty, att.Status)
}

func TestClient_EnvironmentUnavailablePropagates(t *testing.T) {
	env := &fakeEnv{err: fmt.Errorf("find chrome: %w", browser.ErrEnvironmentUnavailable)}
	_, err := newTestClient(env).Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.True(t, browser.IsEnvironmentUnavailable(err))
}

func TestClient_NavigationFailureEscalates(t *testing.T) {
	env := &fakeEnv{pages: map[browser.Profile]string{
		browser.ProfileDesktop: resultsPage("desk", 2),
		browser.ProfileMobile:  resultsPage("mobile", 2),
	}}
	c := NewClient(browser.DefaultConfig(), quickSearch(), WithAcquire(func(ctx context.Context, cfg browser.Config, p browser.Profile) (Session, error) {
		s, err := env.acquire(ctx, cfg, p)
		if p == browser.ProfileDesktop {
			s.(*fakeSession).navigateErr = browser.ErrPageLoadTimeout
		}
		return s, err
	}))

	att, err := c.Search(context.Background(), "q", 10)
	require.NoError(t, err)
	require.Len(t, att.Results, 2)
	assert.Equal(t, "mobile 0", att.Results[0].Title)
}

func TestClient_SearchWithCallerSession(t *testing.T) {
	env := &fakeEnv{}
	sess := &fakeSession{profile: browser.ProfileMobile, html: emptyPage}
	c := newTestClient(env)

	att, err := c.SearchWith(context.Background(), sess, "q", 10)
	require.NoError(t, err)
	assert.Empty(t, att.Results)
	assert.Empty(t, env.sessions, "caller sessions are never replaced")
	assert.Equal(t, 0, sess.released, "caller sessions are never released")
	assert.Len(t, sess.navigated, 1)
}

type stubFallback struct {
	results []serp.Result
	err     error
	calls   int
}

func (f *stubFallback) Search(context.Context, string, int) ([]serp.Result, error) {
	f.calls++
	return f.results, f.err
}

func TestClient_HTTPFallbackTier(t *testing.T) {
	env := &fakeEnv{pages: map[browser.Profile]string{
		browser.ProfileDesktop: emptyPage,
		browser.ProfileMobile:  emptyPage,
	}}
	fb := &stubFallback{results: []serp.Result{
		{Title: "Example", Link: "https://example.com/"},
		{Title: "Cache", Link: "https://webcache.googleusercontent.com/x"},
	}}
	scfg := quickSearch()
	scfg.HTTPFallback = true
	c := NewClient(browser.DefaultConfig(), scfg, WithAcquire(env.acquire), WithFallback(fb))

	att, err := c.Search(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, fb.calls)
	assert.Equal(t, "http", att.Tier)
	assert.Equal(t, []serp.Result{{Title: "Example", Link: "https://example.com/"}}, att.Results)
}

func TestClient_HTTPFallbackDisabled(t *testing.T) {
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: emptyPage, browser.ProfileMobile: emptyPage}}
	fb := &stubFallback{}
	_, err := newTestClient(env, WithFallback(fb)).Search(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, fb.calls)
}

func TestClient_FindOfficialSite(t *testing.T) {
	page := `<html><body><div id="rso">
<div class="g"><a href="https://www.facebook.com/examplecenter"><h3>Example Center | Facebook</h3></a></div>
<div class="g"><a href="https://examplecenter.com/"><h3>Example Center</h3></a></div>
</div></body></html>`
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: page}}
	c := newTestClient(env)

	got, ok, err := c.FindOfficialSite(context.Background(), "Example Center", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://examplecenter.com/", got.Link)
	assert.Contains(t, env.sessions[0].navigated[0], "q=%22Example+Center%22+official+website")

	_, ok, err = c.FindOfficialSite(context.Background(), "  ", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, env.sessions, 1, "blank names issue no query")
}

func TestClient_OfficialContentMatchesLookup(t *testing.T) {
	page := `<html><body><div id="rso">
<div class="g"><a href="https://www.watchyoutube.com/examplecenter"><h3>Example Center videos</h3></a></div>
<div class="g"><a href="https://www.youtube.com/@examplecenter"><h3>Example Center</h3></a></div>
<div class="g"><a href="https://examplecenter.com/"><h3>Example Center</h3></a></div>
</div></body></html>`
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: page}}
	c := newTestClient(env)

	content, err := c.OfficialContent(context.Background(), "Example Center", 0)
	require.NoError(t, err)
	site, ok, err := c.FindOfficialSite(context.Background(), "Example Center", 0)
	require.NoError(t, err)

	assert.Equal(t, ok, content.Found)
	assert.Equal(t, site, content.Site)
	require.Len(t, content.Candidates, 3)
	assert.False(t, content.Candidates[1].Official)

	blank, err := c.OfficialContent(context.Background(), " ", 0)
	require.NoError(t, err)
	assert.False(t, blank.Found)
	assert.Empty(t, blank.Candidates)
}

func TestClient_OverviewReadsSamePage(t *testing.T) {
	summary := "Example Center is a shopping mall in Phoenix with more than two hundred stores."
	page := `<html><body>
<div role="complementary"><div class="WaaZC">` + summary + `</div>
<div class="VqeGe"><a href="https://source.example.com/">Source</a></div></div>
<div id="rso"><div class="g"><a href="https://examplecenter.com/"><h3>Example Center</h3></a></div></div>
</body></html>`
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: page}}

	att, sum, err := newTestClient(env).Overview(context.Background(), "Example Center", 10, true)
	require.NoError(t, err)
	require.NotEmpty(t, att.Results)
	assert.Contains(t, sum.Text, summary)
	assert.Equal(t, []string{"https://source.example.com/"}, sum.RelatedLinks)
	require.Len(t, env.sessions, 1)
	assert.Equal(t, 1, env.sessions[0].released)
}

func TestClient_OverviewWithoutPanel(t *testing.T) {
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: resultsPage("a", 1)}}
	_, sum, err := newTestClient(env).SearchWithSummary(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Equal(t, serp.Summary{Text: "", RelatedLinks: []string{}}, sum)
}

func TestClientFor_Presets(t *testing.T) {
	c, err := ClientFor("bing", config.Default())
	require.NoError(t, err)
	assert.Equal(t, "bing", c.Engine())
	assert.Contains(t, c.SearchURL("x", 5), "https://www.bing.com/search?")

	_, err = ClientFor("altavista", config.Default())
	assert.Error(t, err)
}

func TestClient_DismissesConsent(t *testing.T) {
	page := strings.Replace(resultsPage("a", 2), `<div id="main">`,
		`<div id="consent"><button>Customize</button><button style="display:none">I agree</button><button>Accept all</button></div><div id="main">`, 1)
	clicks := 0
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: page}, clicks: &clicks}

	att, err := newTestClient(env).Search(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Len(t, att.Results, 2)
	assert.Equal(t, 1, clicks, "only the visible matching button is clicked")
}

func TestClient_NoConsentNoClick(t *testing.T) {
	clicks := 0
	env := &fakeEnv{pages: map[browser.Profile]string{browser.ProfileDesktop: resultsPage("a", 2)}, clicks: &clicks}

	_, err := newTestClient(env).Search(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Zero(t, clicks)
}
