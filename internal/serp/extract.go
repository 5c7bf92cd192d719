package serp

import (
	"slices"
	"strings"

	"serpscout/internal/dom"
)

// ResultExtractor turns a rendered results page into result records.
type ResultExtractor struct {
	containers []string
	link       string
	title      string
	snippet    string
	broadRoots []string
	engine     []string
	redirects  []Redirect
}

// NewResultExtractor copies the selector configuration out of cfg.
func NewResultExtractor(cfg Config) *ResultExtractor {
	return &ResultExtractor{
		containers: slices.Clone(cfg.ResultSelectors),
		link:       cfg.LinkSelector,
		title:      cfg.TitleSelector,
		snippet:    strings.Join(cfg.SnippetSelectors, ", "),
		broadRoots: slices.Clone(cfg.BroadScanRoots),
		engine:     slices.Clone(cfg.EngineHosts),
		redirects:  slices.Clone(cfg.Redirects),
	}
}

// target unwraps engine click-tracking links.
func (e *ResultExtractor) target(link string) string {
	if !e.IsEngineLink(link) {
		return link
	}
	return Unwrap(link, e.redirects)
}

// IsEngineLink reports whether link points back into the search engine.
func (e *ResultExtractor) IsEngineLink(link string) bool {
	return containsAny(strings.ToLower(link), e.engine)
}

// Extract collects up to maxResults records from the first container
// selector that matches anything. Records keep page order and never share a
// link.
func (e *ResultExtractor) Extract(root dom.Node, maxResults int) []Result {
	if root == nil || maxResults <= 0 {
		return nil
	}
	for _, sel := range e.containers {
		blocks := root.Find(sel)
		if len(blocks) == 0 {
			continue
		}
		return e.fromBlocks(blocks, maxResults)
	}
	return nil
}

func (e *ResultExtractor) fromBlocks(blocks []dom.Node, maxResults int) []Result {
	seen := linkSet{}
	var out []Result
	for _, block := range blocks {
		if len(out) >= maxResults {
			break
		}
		r, ok := e.fromBlock(block)
		if !ok || !seen.add(r.Link) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (e *ResultExtractor) fromBlock(block dom.Node) (r Result, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	a := dom.First(block, e.link)
	if a == nil {
		return Result{}, false
	}
	link := e.target(a.Href())
	if !IsAbsolute(link) || e.IsEngineLink(link) {
		return Result{}, false
	}
	return Result{
		Title:   dom.TextOf(block, e.title),
		Link:    link,
		Snippet: dom.TextOf(block, e.snippet),
	}, true
}

// BroadScan appends loosely matched outbound links from the main content
// region until have reaches maxResults. Titles fall back to the link itself
// and snippets are empty.
func (e *ResultExtractor) BroadScan(root dom.Node, have []Result, maxResults int) []Result {
	out := slices.Clone(have)
	if root == nil || len(out) >= maxResults {
		return out
	}
	seen := linkSet{}
	for _, r := range out {
		seen.add(r.Link)
	}

	var region dom.Node
	for _, sel := range e.broadRoots {
		if region = dom.First(root, sel); region != nil {
			break
		}
	}
	if region == nil {
		return out
	}

	for _, a := range region.Find("a[href^='http']") {
		if len(out) >= maxResults {
			break
		}
		link := stripQuery(e.target(a.Href()))
		if !IsAbsolute(link) || e.IsEngineLink(link) || !seen.add(link) {
			continue
		}
		title := a.Text()
		if title == "" {
			title = link
		}
		out = append(out, Result{Title: title, Link: link})
	}
	return out
}

// Truncate caps results at maxResults without reordering.
func Truncate(results []Result, maxResults int) []Result {
	if maxResults >= 0 && len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(s, f) {
			return true
		}
	}
	return false
}
