package google

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"serpscout/internal/scraper"
	"serpscout/internal/serp"
)

// OverviewContent holds the summary panel and the results of the same page
// load.
type OverviewContent struct {
	results *scraper.ResultsContent
	summary serp.Summary
}

// NewOverviewContent creates an OverviewContent instance.
func NewOverviewContent(engine, sourceURL string, att serp.Attempt, summary serp.Summary) *OverviewContent {
	if summary.RelatedLinks == nil {
		summary.RelatedLinks = []string{}
	}
	return &OverviewContent{results: scraper.NewResultsContent(engine, sourceURL, att), summary: summary}
}

func (c *OverviewContent) ToMarkdown() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Overview: %s\n\n", c.results.Query))
	if c.summary.Text == "" {
		sb.WriteString("_No summary panel was present._\n\n")
	} else {
		sb.WriteString(c.summary.Text + "\n\n")
	}
	if len(c.summary.RelatedLinks) > 0 {
		sb.WriteString("## Sources\n\n")
		for _, l := range c.summary.RelatedLinks {
			sb.WriteString(fmt.Sprintf("- <%s>\n", l))
		}
		sb.WriteString("\n")
	}
	results, err := c.results.ToMarkdown()
	if err != nil {
		return "", err
	}
	sb.WriteString("#" + results)
	return sb.String(), nil
}

func (c *OverviewContent) ToText() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overview: %s\n\n", c.results.Query))
	if c.summary.Text != "" {
		sb.WriteString(c.summary.Text + "\n\n")
	}
	for _, l := range c.summary.RelatedLinks {
		sb.WriteString("  source: " + l + "\n")
	}
	if len(c.summary.RelatedLinks) > 0 {
		sb.WriteString("\n")
	}
	results, err := c.results.ToText()
	if err != nil {
		return "", err
	}
	sb.WriteString(results)
	return sb.String(), nil
}

func (c *OverviewContent) ToHTML() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h1>Overview: %s</h1>\n", html.EscapeString(c.results.Query)))
	for _, para := range strings.Split(c.summary.Text, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			sb.WriteString("<p>" + html.EscapeString(para) + "</p>\n")
		}
	}
	if len(c.summary.RelatedLinks) > 0 {
		sb.WriteString("<ul>\n")
		for _, l := range c.summary.RelatedLinks {
			sb.WriteString(fmt.Sprintf("  <li><a href=%q>%s</a></li>\n", html.EscapeString(l), html.EscapeString(l)))
		}
		sb.WriteString("</ul>\n")
	}
	results, err := c.results.ToHTML()
	if err != nil {
		return "", err
	}
	sb.WriteString(results)
	return sb.String(), nil
}

func (c *OverviewContent) ToJSON() ([]byte, error) {
	type jsonOverview struct {
		Engine  string       `json:"engine"`
		Source  string       `json:"source"`
		Summary serp.Summary `json:"summary"`
		serp.Attempt
	}
	return json.MarshalIndent(jsonOverview{
		Engine:  c.results.Engine,
		Source:  c.results.SourceURL,
		Summary: c.summary,
		Attempt: c.results.Attempt,
	}, "", "  ")
}

func (c *OverviewContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Kind", "Text", "Link"})
	if c.summary.Text != "" {
		_ = w.Write([]string{"summary", c.summary.Text, ""})
	}
	for _, l := range c.summary.RelatedLinks {
		_ = w.Write([]string{"source", "", l})
	}
	for _, r := range c.results.Attempt.Results {
		_ = w.Write([]string{"result", r.Title, r.Link})
	}
	w.Flush()
	return buf.String(), w.Error()
}

// OfficialContent holds the outcome of an official-site lookup.
type OfficialContent struct {
	Name       string
	Found      bool
	Site       serp.Candidate
	Candidates []serp.Candidate
}

func (c *OfficialContent) ToMarkdown() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Official website: %s\n\n", c.Name))
	if !c.Found {
		sb.WriteString("Not found.\n")
		return sb.String(), nil
	}
	sb.WriteString(fmt.Sprintf("[%s](%s)\n", c.Site.Title, c.Site.Link))
	if len(c.Candidates) > 0 {
		sb.WriteString("\n## Candidates\n\n")
		for _, cand := range c.Candidates {
			mark := " "
			if cand.Official {
				mark = "x"
			}
			sb.WriteString(fmt.Sprintf("- [%s] %s <%s>\n", mark, cand.Title, cand.Link))
		}
	}
	return sb.String(), nil
}

func (c *OfficialContent) ToText() (string, error) {
	if !c.Found {
		return fmt.Sprintf("%s: not found\n", c.Name), nil
	}
	return fmt.Sprintf("%s: %s\n  %s\n", c.Name, c.Site.Link, c.Site.Title), nil
}

func (c *OfficialContent) ToHTML() (string, error) {
	if !c.Found {
		return fmt.Sprintf("<p>%s: not found</p>\n", html.EscapeString(c.Name)), nil
	}
	return fmt.Sprintf("<p>%s: <a href=%q>%s</a></p>\n",
		html.EscapeString(c.Name), html.EscapeString(c.Site.Link), html.EscapeString(c.Site.Title)), nil
}

func (c *OfficialContent) ToJSON() ([]byte, error) {
	type jsonOfficial struct {
		Name       string           `json:"name"`
		Found      bool             `json:"found"`
		Link       string           `json:"link,omitempty"`
		Title      string           `json:"title,omitempty"`
		Candidates []serp.Candidate `json:"candidates"`
	}
	out := jsonOfficial{Name: c.Name, Found: c.Found, Candidates: c.Candidates}
	if out.Candidates == nil {
		out.Candidates = []serp.Candidate{}
	}
	if c.Found {
		out.Link, out.Title = c.Site.Link, c.Site.Title
	}
	return json.MarshalIndent(out, "", "  ")
}

func (c *OfficialContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Name", "Link", "Title"})
	if c.Found {
		_ = w.Write([]string{c.Name, c.Site.Link, c.Site.Title})
	} else {
		_ = w.Write([]string{c.Name, "", ""})
	}
	w.Flush()
	return buf.String(), w.Error()
}
