package generic

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Levels accepted by Extract.
const (
	LevelFull    = "full"
	LevelBody    = "body"
	LevelContent = "content"
	LevelCSS     = "css"
)

var contentSelectors = []string{"article", "main", ".content", ".article", ".post", ".entry-content"}

// Extraction is the slice of a page a level selects.
type Extraction struct {
	HTML string // markup for HTML, Markdown, CSV and JSON output
	Text string // plain text; empty means derive it from HTML
}

// Extract selects content from a captured page.
// level: full/body/content/css
// selector: CSS selector (css level only)
func Extract(snap *Snapshot, level, selector string) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to parse page: %w", err)
	}

	switch level {
	case LevelFull, "":
		html, err := goquery.OuterHtml(doc.Selection)
		if err != nil {
			return Extraction{}, err
		}
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(html)), "<!doctype") {
			html = "<!DOCTYPE html>\n" + html
		}
		return Extraction{HTML: html}, nil
	case LevelBody:
		body := doc.Find("body")
		html, err := body.Html()
		if err != nil {
			return Extraction{}, err
		}
		body.Find("script, style, noscript").Remove()
		return Extraction{HTML: html, Text: visibleLines(body.Text())}, nil
	case LevelContent:
		return extractContent(doc, snap)
	case LevelCSS:
		if selector == "" {
			return Extraction{}, fmt.Errorf("--selector is required for --level css")
		}
		var parts []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if html, err := goquery.OuterHtml(s); err == nil {
				parts = append(parts, html)
			}
		})
		return Extraction{HTML: strings.Join(parts, "\n")}, nil
	default:
		return Extraction{}, fmt.Errorf("unsupported level: %s", level)
	}
}

// extractContent finds the main content: readability first, then common
// content containers, then the whole body.
func extractContent(doc *goquery.Document, snap *Snapshot) (Extraction, error) {
	pageURL, _ := url.Parse(snap.URL)
	if article, err := readability.FromReader(strings.NewReader(snap.HTML), pageURL); err == nil {
		if strings.TrimSpace(article.TextContent) != "" {
			return Extraction{HTML: article.Content}, nil
		}
	}

	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if html, err := s.Html(); err == nil && strings.TrimSpace(html) != "" {
				return Extraction{HTML: html}, nil
			}
		}
	}

	html, err := doc.Find("body").Html()
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to extract content: %w", err)
	}
	return Extraction{HTML: html}, nil
}

func visibleLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
