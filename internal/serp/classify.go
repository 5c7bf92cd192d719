package serp

import (
	"slices"
	"strings"
)

// Classifier decides whether a result is an organization's own website.
type Classifier struct {
	denylist []string
	hints    []string
	labels   bool
}

func NewClassifier(cfg ClassifierConfig) *Classifier {
	lower := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return &Classifier{
		denylist: lower(cfg.Denylist),
		hints:    lower(slices.Clone(cfg.Hints)),
		labels:   cfg.LabelBoundary,
	}
}

// Denylisted reports whether the host of link contains a known non-official
// fragment. With LabelBoundary set, a fragment must cover whole labels.
func (c *Classifier) Denylisted(link string) bool {
	host := Host(link)
	if host == "" {
		return false
	}
	for _, frag := range c.denylist {
		if c.labels && matchLabels(host, frag) || !c.labels && strings.Contains(host, frag) {
			return true
		}
	}
	return false
}

func matchLabels(host, frag string) bool {
	for i := 0; ; {
		j := strings.Index(host[i:], frag)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(frag)
		before := start == 0 || host[start-1] == '.'
		after := end == len(host) || host[end] == '.' || strings.HasSuffix(frag, ".")
		if before && after {
			return true
		}
		i = start + 1
	}
}

// Hinted reports whether the host or title carries an organization-type
// token.
func (c *Classifier) Hinted(link, title string) bool {
	host := Host(link)
	title = strings.ToLower(title)
	for _, h := range c.hints {
		if strings.Contains(host, h) || strings.Contains(title, h) {
			return true
		}
	}
	return false
}

// Classify is a pure function of its inputs: denylisted hosts are never
// official and every other host defaults to official. Hints do not change
// the verdict; Candidate reports them separately.
func (c *Classifier) Classify(link, _ string) bool {
	return Host(link) != "" && !c.Denylisted(link)
}

// Candidate classifies one result.
func (c *Classifier) Candidate(r Result) Candidate {
	return Candidate{
		Link:     r.Link,
		Title:    r.Title,
		Official: c.Classify(r.Link, r.Title),
		Hinted:   c.Hinted(r.Link, r.Title),
	}
}

// Lookup picks the official site from ranked results: the first result
// classified official, else the first whose host is merely not denylisted.
// ok is false when neither pass finds one.
func (c *Classifier) Lookup(results []Result, engine []string) (Candidate, bool) {
	usable := func(r Result) bool {
		link := strings.TrimSpace(r.Link)
		return link != "" && !containsAny(strings.ToLower(link), engine)
	}
	found := func(r Result) Candidate {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = r.Link
		}
		return Candidate{Link: strings.TrimSpace(r.Link), Title: title, Official: true}
	}

	for _, r := range results {
		if usable(r) && c.Classify(r.Link, r.Title) {
			return found(r), true
		}
	}
	for _, r := range results {
		if usable(r) && Host(r.Link) != "" && !c.Denylisted(r.Link) {
			cand := found(r)
			cand.Official = false
			return cand, true
		}
	}
	return Candidate{}, false
}

// OfficialQuery is the query used to look up an organization's website, or
// "" when name is blank.
func OfficialQuery(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return `"` + name + `" official website`
}
