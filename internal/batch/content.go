package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Content aggregates the items of one batch and implements scraper.Content.
type Content struct {
	Site  string
	Items []Item
}

// Failed returns how many items carry an error.
func (c *Content) Failed() int {
	n := 0
	for _, it := range c.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}

func (c *Content) join(sep string, render func(Item) (string, error), failed func(Item) string) (string, error) {
	parts := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Err != nil {
			parts = append(parts, failed(it))
			continue
		}
		s, err := render(it)
		if err != nil {
			return "", fmt.Errorf("failed to render %q: %w", it.Query, err)
		}
		parts = append(parts, strings.TrimRight(s, "\n"))
	}
	return strings.Join(parts, sep) + "\n", nil
}

func (c *Content) ToMarkdown() (string, error) {
	return c.join("\n\n---\n\n",
		func(it Item) (string, error) { return it.Content.ToMarkdown() },
		func(it Item) string { return fmt.Sprintf("# %s\n\n**Error:** %v", it.Query, it.Err) })
}

func (c *Content) ToText() (string, error) {
	return c.join("\n\n",
		func(it Item) (string, error) { return it.Content.ToText() },
		func(it Item) string { return fmt.Sprintf("%s\nerror: %v", it.Query, it.Err) })
}

func (c *Content) ToHTML() (string, error) {
	return c.join("\n<hr>\n",
		func(it Item) (string, error) { return it.Content.ToHTML() },
		func(it Item) string {
			return fmt.Sprintf("<h1>%s</h1>\n<p class=\"error\">%s</p>", html.EscapeString(it.Query), html.EscapeString(it.Err.Error()))
		})
}

// ToCSV writes each item's CSV under a "# query" line.
func (c *Content) ToCSV() (string, error) {
	return c.join("\n",
		func(it Item) (string, error) {
			s, err := it.Content.ToCSV()
			return "# " + it.Query + "\n" + s, err
		},
		func(it Item) string { return fmt.Sprintf("# %s\n# error: %v", it.Query, it.Err) })
}

func (c *Content) ToJSON() ([]byte, error) {
	type jsonItem struct {
		Query  string          `json:"query"`
		Error  string          `json:"error,omitempty"`
		Result json.RawMessage `json:"result,omitempty"`
	}
	out := struct {
		Site  string     `json:"site"`
		Items []jsonItem `json:"items"`
	}{Site: c.Site, Items: make([]jsonItem, 0, len(c.Items))}

	for _, it := range c.Items {
		ji := jsonItem{Query: it.Query}
		if it.Err != nil {
			ji.Error = it.Err.Error()
		} else {
			b, err := it.Content.ToJSON()
			if err != nil {
				return nil, fmt.Errorf("failed to render %q: %w", it.Query, err)
			}
			var buf bytes.Buffer
			if err := json.Compact(&buf, b); err != nil {
				return nil, err
			}
			ji.Result = buf.Bytes()
		}
		out.Items = append(out.Items, ji)
	}
	return json.MarshalIndent(out, "", "  ")
}
