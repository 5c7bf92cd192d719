package dom

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrStatic is returned by interactions on a static snapshot.
var ErrStatic = errors.New("static document does not support interaction")

type htmlNode struct {
	sel  *goquery.Selection
	base *url.URL
}

// FromHTML parses an HTML document. baseURL, when non-empty, is used to
// resolve relative links returned by Href.
func FromHTML(r io.Reader, baseURL string) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	var base *url.URL
	if baseURL != "" {
		if base, err = url.Parse(baseURL); err != nil {
			return nil, err
		}
	}
	return &htmlNode{sel: doc.Selection, base: base}, nil
}

// FromHTMLString is FromHTML over a string.
func FromHTMLString(html, baseURL string) (Node, error) {
	return FromHTML(strings.NewReader(html), baseURL)
}

func (n *htmlNode) Find(selector string) []Node {
	var out []Node
	n.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &htmlNode{sel: s, base: n.base})
	})
	return out
}

func (n *htmlNode) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

func (n *htmlNode) Attr(name string) string {
	v, _ := n.sel.Attr(name)
	return v
}

func (n *htmlNode) Href() string {
	raw, ok := n.sel.Attr("href")
	if !ok {
		return ""
	}
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if n.base != nil {
		u = n.base.ResolveReference(u)
	}
	return u.String()
}

// Visible reports false when the element or an ancestor is hidden through
// the hidden attribute or an inline display/visibility style.
func (n *htmlNode) Visible() bool {
	for s := n.sel; s.Length() > 0; s = s.Parent() {
		if _, hidden := s.Attr("hidden"); hidden {
			return false
		}
		style, _ := s.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func (n *htmlNode) Enabled() bool {
	_, disabled := n.sel.Attr("disabled")
	return !disabled
}

func (n *htmlNode) ScrollIntoView() error { return nil }

func (n *htmlNode) Click() error { return ErrStatic }
