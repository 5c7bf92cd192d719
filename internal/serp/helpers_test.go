package serp

import (
	"errors"
	"testing"

	"serpscout/internal/dom"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) dom.Node {
	t.Helper()
	root, err := dom.FromHTMLString(html, "https://www.google.com/search?q=test")
	require.NoError(t, err)
	return root
}

// quickConfig is the default configuration without settle waits.
func quickConfig() Config {
	cfg := GoogleConfig()
	cfg.SettleWait = 0
	cfg.RotateExtraWait = 0
	cfg.ConsentWait = 0
	cfg.Summary.InitialWait = 0
	cfg.Summary.ScrollWait = 0
	cfg.Summary.ClickWait = 0
	cfg.Summary.ExpandWait = 0
	return cfg
}

// staticPage serves a fixed DOM to the summary extractor.
type staticPage struct {
	root      dom.Node
	rootErr   error
	scrollErr error
	scrolled  int
	roots     int
}

func (p *staticPage) Root() (dom.Node, error) {
	p.roots++
	return p.root, p.rootErr
}

func (p *staticPage) ScrollToTop() error {
	p.scrolled++
	return p.scrollErr
}

// panicPage panics on every DOM access.
type panicPage struct{}

func (panicPage) Root() (dom.Node, error) { panic("stale element") }
func (panicPage) ScrollToTop() error      { return errors.New("detached") }

// clickNode wraps a node and records clicks.
type clickNode struct {
	dom.Node
	clicks *int
	err    error
}

func (c clickNode) Click() error {
	*c.clicks++
	return c.err
}

// clickRoot returns clickNode wrappers from Find so clicks can be observed.
type clickRoot struct {
	dom.Node
	clicks *int
	err    error
}

func (r clickRoot) Find(selector string) []dom.Node {
	found := r.Node.Find(selector)
	out := make([]dom.Node, len(found))
	for i, n := range found {
		out[i] = clickNode{Node: n, clicks: r.clicks, err: r.err}
	}
	return out
}
