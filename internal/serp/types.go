// Package serp holds the engine-agnostic extraction pipeline: result block
// extraction, tier escalation, official-site classification and summary
// panel extraction. It works on dom.Node trees and never launches a browser
// itself.
package serp

import (
	"encoding/json"

	"serpscout/internal/browser"
)

// Result is one organic search result.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Status is how an attempt or a tier ended.
type Status int

const (
	StatusEmpty Status = iota
	StatusOK
	StatusBlocked
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBlocked:
		return "blocked"
	default:
		return "empty"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Attempt is the outcome of one escalation cycle for a query.
type Attempt struct {
	Query   string          `json:"query"`
	Profile browser.Profile `json:"device_profile,omitempty"`
	Tier    string          `json:"tier,omitempty"`
	Results []Result        `json:"results"`
	Status  Status          `json:"status"`
}

// Candidate is a result judged for being an organization's own website.
type Candidate struct {
	Link     string `json:"link"`
	Title    string `json:"title"`
	Official bool   `json:"is_official"`
	Hinted   bool   `json:"hinted"`
}

// Summary is the text of the asynchronously rendered summary panel and the
// links it cites. Text is "" when no panel was present.
type Summary struct {
	Text         string   `json:"text"`
	RelatedLinks []string `json:"related_links"`
}
