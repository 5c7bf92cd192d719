package dom

import (
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

type rodNode struct {
	el      *rod.Element
	timeout time.Duration
}

// FromRod wraps a live element. Every query issued through the node is
// bounded by timeout so a missing or stale element fails fast.
func FromRod(el *rod.Element, timeout time.Duration) Node {
	return &rodNode{el: el, timeout: timeout}
}

// bounded returns a clone of the element whose operations expire after the
// implicit wait, and the func that releases that deadline. The caller must
// call done and must not keep the clone.
func (n *rodNode) bounded() (el *rod.Element, done func()) {
	if n.timeout <= 0 {
		return n.el, func() {}
	}
	el = n.el.Timeout(n.timeout)
	return el, func() { el.CancelTimeout() }
}

func (n *rodNode) Find(selector string) []Node {
	b, done := n.bounded()
	defer done()
	els, err := b.Elements(selector)
	if err != nil {
		return nil
	}
	// Found elements inherit the timeout context; rebind them to the parent's.
	ctx := n.el.GetContext()
	out := make([]Node, 0, len(els))
	for _, el := range els {
		out = append(out, &rodNode{el: el.Context(ctx), timeout: n.timeout})
	}
	return out
}

func (n *rodNode) Text() string {
	b, done := n.bounded()
	defer done()
	t, err := b.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(t)
}

func (n *rodNode) Attr(name string) string {
	b, done := n.bounded()
	defer done()
	v, err := b.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

func (n *rodNode) Href() string {
	b, done := n.bounded()
	defer done()
	p, err := b.Property("href")
	if err != nil || p.Nil() {
		return ""
	}
	return p.Str()
}

func (n *rodNode) Visible() bool {
	b, done := n.bounded()
	defer done()
	ok, err := b.Visible()
	return err == nil && ok
}

func (n *rodNode) Enabled() bool {
	b, done := n.bounded()
	defer done()
	p, err := b.Property("disabled")
	if err != nil {
		return false
	}
	return !p.Bool()
}

func (n *rodNode) ScrollIntoView() error {
	b, done := n.bounded()
	defer done()
	return b.ScrollIntoView()
}

func (n *rodNode) Click() error {
	b, done := n.bounded()
	defer done()
	return b.Click(proto.InputMouseButtonLeft, 1)
}
