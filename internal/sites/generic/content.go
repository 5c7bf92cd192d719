package generic

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// Table is one HTML table as rows of trimmed cell text.
type Table [][]string

// PageContent is an extraction detached from its browser session.
type PageContent struct {
	level    string
	title    string
	url      string
	loadTime time.Duration
	html     string
	text     string
	tables   []Table
}

// NewPageContent wraps an extraction of snap at level.
func NewPageContent(ex Extraction, level string, snap *Snapshot) *PageContent {
	return &PageContent{
		level:    level,
		title:    snap.Title,
		url:      snap.URL,
		loadTime: snap.LoadTime,
		html:     ex.HTML,
		text:     ex.Text,
		tables:   Tables(ex.HTML),
	}
}

// Tables collects every table in fragment, header rows included.
func Tables(fragment string) []Table {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var out []Table
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var t Table
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
			})
			if len(cells) > 0 {
				t = append(t, cells)
			}
		})
		if len(t) > 0 {
			out = append(out, t)
		}
	})
	return out
}

func markdown(html string) (string, error) {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.Table())
	out, err := conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return out, nil
}

func (p *PageContent) ToHTML() (string, error) {
	return p.html, nil
}

// ToText returns the level's own text when it produced one, else the
// Markdown rendering.
func (p *PageContent) ToText() (string, error) {
	if p.text != "" {
		return p.text, nil
	}
	return markdown(p.html)
}

func (p *PageContent) ToMarkdown() (string, error) {
	return markdown(p.html)
}

func (p *PageContent) ToJSON() ([]byte, error) {
	text, err := p.ToText()
	if err != nil {
		return nil, err
	}
	mdText, err := p.ToMarkdown()
	if err != nil {
		return nil, err
	}
	tables := p.tables
	if tables == nil {
		tables = []Table{}
	}
	return json.MarshalIndent(struct {
		Level    string  `json:"level"`
		Title    string  `json:"title"`
		URL      string  `json:"url"`
		LoadTime int64   `json:"load_time"`
		Text     string  `json:"text"`
		Markdown string  `json:"markdown"`
		HTML     string  `json:"html"`
		Tables   []Table `json:"tables"`
	}{p.level, p.title, p.url, p.loadTime.Milliseconds(), text, mdText, p.html, tables}, "", "  ")
}

// ToCSV writes each table under a "# Table N" line.
func (p *PageContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	for i, t := range p.tables {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "# Table %d\n", i+1)
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(t); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
