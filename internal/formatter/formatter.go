// Package formatter renders scraped content in the requested output format.
package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"serpscout/internal/scraper"
)

// Formats lists the accepted output format names.
var Formats = []string{"text", "markdown", "json", "csv", "html"}

var aliases = map[string]string{
	"text":     "text",
	"txt":      "text",
	"markdown": "markdown",
	"md":       "markdown",
	"json":     "json",
	"csv":      "csv",
	"html":     "html",
	"htm":      "html",
}

// Resolve maps a format name or alias to its canonical name.
func Resolve(format string) (string, error) {
	name, ok := aliases[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
	return name, nil
}

// FromExtension infers the format from an output file name, or "" when the
// extension is not recognized.
func FromExtension(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "markdown" {
		return "markdown"
	}
	if ext == "" {
		return ""
	}
	return aliases[ext]
}

// Format renders content. JSON output carries no trailing newline.
func Format(content scraper.Content, format string) (string, error) {
	name, err := Resolve(format)
	if err != nil {
		return "", err
	}
	switch name {
	case "html":
		return content.ToHTML()
	case "text":
		return content.ToText()
	case "markdown":
		return content.ToMarkdown()
	case "csv":
		return content.ToCSV()
	default:
		b, err := content.ToJSON()
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(b), "\n"), nil
	}
}
