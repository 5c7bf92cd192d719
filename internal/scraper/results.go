package scraper

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"serpscout/internal/serp"
)

// ResultsContent holds one query's search results and implements Content.
type ResultsContent struct {
	Engine    string
	Query     string
	SourceURL string
	Attempt   serp.Attempt
}

// NewResultsContent creates a ResultsContent instance.
func NewResultsContent(engine, sourceURL string, att serp.Attempt) *ResultsContent {
	if att.Results == nil {
		att.Results = []serp.Result{}
	}
	return &ResultsContent{Engine: engine, Query: att.Query, SourceURL: sourceURL, Attempt: att}
}

func (c *ResultsContent) heading() string {
	return fmt.Sprintf("%s Search: %s", displayName(c.Engine), c.Query)
}

func (c *ResultsContent) ToMarkdown() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", c.heading()))
	sb.WriteString(c.statusLine() + "\n\n")
	for i, r := range c.Attempt.Results {
		sb.WriteString(fmt.Sprintf("## %d. [%s](%s)\n\n", i+1, titleOrLink(r), r.Link))
		if r.Snippet != "" {
			sb.WriteString(r.Snippet + "\n\n")
		}
	}
	return sb.String(), nil
}

func (c *ResultsContent) ToText() (string, error) {
	var sb strings.Builder
	sb.WriteString(c.heading() + "\n")
	sb.WriteString(c.statusLine() + "\n\n")
	for i, r := range c.Attempt.Results {
		sb.WriteString(fmt.Sprintf("%d. %s\n   %s\n", i+1, titleOrLink(r), r.Link))
		if r.Snippet != "" {
			sb.WriteString("   " + r.Snippet + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (c *ResultsContent) ToHTML() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n<ol>\n", html.EscapeString(c.heading())))
	for _, r := range c.Attempt.Results {
		sb.WriteString(fmt.Sprintf("  <li><a href=%q>%s</a>", html.EscapeString(r.Link), html.EscapeString(titleOrLink(r))))
		if r.Snippet != "" {
			sb.WriteString("<p>" + html.EscapeString(r.Snippet) + "</p>")
		}
		sb.WriteString("</li>\n")
	}
	sb.WriteString("</ol>\n")
	return sb.String(), nil
}

func (c *ResultsContent) ToJSON() ([]byte, error) {
	type jsonResult struct {
		Engine string `json:"engine"`
		Source string `json:"source"`
		serp.Attempt
	}
	return json.MarshalIndent(jsonResult{Engine: c.Engine, Source: c.SourceURL, Attempt: c.Attempt}, "", "  ")
}

func (c *ResultsContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Title", "Link", "Snippet"})
	for _, r := range c.Attempt.Results {
		_ = w.Write([]string{r.Title, r.Link, r.Snippet})
	}
	w.Flush()
	return buf.String(), w.Error()
}

func (c *ResultsContent) statusLine() string {
	line := fmt.Sprintf("%d results (%s", len(c.Attempt.Results), c.Attempt.Status)
	if c.Attempt.Profile != "" {
		line += ", " + string(c.Attempt.Profile)
	}
	return line + ")"
}

func titleOrLink(r serp.Result) string {
	if r.Title != "" {
		return r.Title
	}
	return r.Link
}

func displayName(engine string) string {
	switch strings.ToLower(engine) {
	case "duckduckgo":
		return "DuckDuckGo"
	case "":
		return "Web"
	default:
		return strings.ToUpper(engine[:1]) + engine[1:]
	}
}
