// Package dom abstracts the handful of element operations the extractors
// need, so the same selector logic runs against a live rod page or a static
// HTML snapshot parsed with goquery.
package dom

// Node is a single element of a rendered document.
type Node interface {
	// Find returns the descendants matching a CSS selector in document order.
	// A selector that fails or matches nothing yields an empty slice.
	Find(selector string) []Node
	// Text returns the trimmed text content.
	Text() string
	// Attr returns the raw attribute value, or "" when absent.
	Attr(name string) string
	// Href returns the element's link target resolved to an absolute URL,
	// or "" when the element has none.
	Href() string
	Visible() bool
	Enabled() bool
	ScrollIntoView() error
	Click() error
}

// First returns the first node matching selector, or nil.
func First(n Node, selector string) Node {
	if n == nil {
		return nil
	}
	found := n.Find(selector)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// TextOf returns the text of the first node matching selector, or "".
func TextOf(n Node, selector string) string {
	if el := First(n, selector); el != nil {
		return el.Text()
	}
	return ""
}
