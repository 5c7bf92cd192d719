package serp

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"serpscout/internal/dom"

	"github.com/rs/zerolog"
)

// SummaryPage is the part of a browser session the summary extractor needs.
type SummaryPage interface {
	Root() (dom.Node, error)
	ScrollToTop() error
}

// SummaryExtractor reads the lazily rendered summary panel of a results page.
type SummaryExtractor struct {
	cfg    SummaryConfig
	engine []string
}

func NewSummaryExtractor(cfg Config) *SummaryExtractor {
	return &SummaryExtractor{
		cfg:    cfg.Summary.withDefaults(GoogleConfig().Summary),
		engine: slices.Clone(cfg.EngineHosts),
	}
}

// Extract runs settle, scroll, optional expand, collect, fallback collect,
// dedup and link collection in order. A failing step contributes nothing;
// the result is always well formed.
func (x *SummaryExtractor) Extract(ctx context.Context, page SummaryPage, expand bool) Summary {
	log := zerolog.Ctx(ctx).With().Str("component", "summary").Logger()
	out := Summary{Text: "", RelatedLinks: []string{}}
	if page == nil {
		return out
	}

	if err := Wait(ctx, x.cfg.InitialWait); err != nil {
		return out
	}

	x.step(&log, "scroll", func() error {
		if err := page.ScrollToTop(); err != nil {
			return err
		}
		return Wait(ctx, x.cfg.ScrollWait)
	})

	if expand {
		x.step(&log, "expand", func() error {
			root, err := page.Root()
			if err != nil {
				return err
			}
			clicked, err := x.expand(ctx, root)
			if clicked {
				log.Debug().Msg("summary panel expanded")
			}
			return err
		})
	}

	var parts []string
	x.step(&log, "collect", func() error {
		root, err := page.Root()
		if err != nil {
			return err
		}
		parts = x.collect(root)
		return nil
	})
	if len(parts) == 0 {
		x.step(&log, "fallback", func() error {
			root, err := page.Root()
			if err != nil {
				return err
			}
			parts = x.fallback(root)
			return nil
		})
	}
	out.Text = x.join(parts)

	x.step(&log, "links", func() error {
		root, err := page.Root()
		if err != nil {
			return err
		}
		out.RelatedLinks = x.links(root)
		return nil
	})
	return out
}

// step runs fn, absorbing both errors and panics.
func (x *SummaryExtractor) step(log *zerolog.Logger, name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Str("step", name).Interface("panic", r).Msg("summary step failed")
		}
	}()
	if err := fn(); err != nil {
		log.Debug().Str("step", name).Err(err).Msg("summary step failed")
	}
}

// expand clicks the first visible, enabled element whose label matches one
// of the expand labels, trying labels in order. At most one click happens.
func (x *SummaryExtractor) expand(ctx context.Context, root dom.Node) (bool, error) {
	candidates := root.Find(x.cfg.ExpandSelector)
	for _, label := range x.cfg.ExpandLabels {
		label = strings.ToLower(label)
		for _, el := range candidates {
			if !x.clickable(el, label) {
				continue
			}
			_ = el.ScrollIntoView()
			if err := Wait(ctx, x.cfg.ClickWait); err != nil {
				return false, err
			}
			if err := el.Click(); err != nil {
				continue
			}
			return true, Wait(ctx, x.cfg.ExpandWait)
		}
	}
	return false, nil
}

func (x *SummaryExtractor) clickable(el dom.Node, label string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	text := strings.ToLower(el.Text())
	if text == "" || utf8.RuneCountInString(text) > x.cfg.ExpandMaxLabelLen {
		return false
	}
	return strings.Contains(text, label) && el.Visible() && el.Enabled()
}

// collect returns the qualifying texts of the first content selector that
// has any.
func (x *SummaryExtractor) collect(root dom.Node) []string {
	for _, sel := range x.cfg.ContentSelectors {
		var parts []string
		for _, el := range root.Find(sel) {
			if t, ok := x.visibleText(el); ok && runeLen(t) > x.cfg.MinLen {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return nil
}

// fallback takes the first plausible summary-sized block near the top of the
// main content area.
func (x *SummaryExtractor) fallback(root dom.Node) []string {
	for _, sel := range x.cfg.FallbackRoots {
		main := dom.First(root, sel)
		if main == nil {
			continue
		}
		blocks := main.Find("div")
		if len(blocks) > x.cfg.FallbackBlockLimit {
			blocks = blocks[:x.cfg.FallbackBlockLimit]
		}
		for _, b := range blocks {
			t, ok := x.visibleText(b)
			if !ok {
				continue
			}
			n := runeLen(t)
			if n < x.cfg.FallbackMinLen || n > x.cfg.FallbackMaxLen || containsAny(t, x.cfg.NavMarkers) {
				continue
			}
			return []string{t}
		}
		return nil
	}
	return nil
}

func (x *SummaryExtractor) visibleText(el dom.Node) (t string, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = "", false
		}
	}()
	if !el.Visible() {
		return "", false
	}
	t = strings.TrimSpace(el.Text())
	return t, t != ""
}

// join drops duplicates and short fragments, then joins the longest
// MaxBlocks parts with blank lines.
func (x *SummaryExtractor) join(parts []string) string {
	return strings.TrimSpace(strings.Join(DedupBlocks(parts, x.cfg.MinLen, x.cfg.MaxBlocks), "\n\n"))
}

// DedupBlocks trims each block, drops blocks of minLen runes or fewer, exact
// duplicates and blocks that are a prefix of a longer kept block, and
// returns at most limit blocks ordered longest first.
func DedupBlocks(parts []string, minLen, limit int) []string {
	seen := map[string]struct{}{}
	var uniq []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if runeLen(p) <= minLen {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, p)
	}
	sort.SliceStable(uniq, func(i, j int) bool { return runeLen(uniq[i]) > runeLen(uniq[j]) })

	var out []string
	for _, p := range uniq {
		if slices.ContainsFunc(out, func(kept string) bool { return strings.HasPrefix(kept, p) }) {
			continue
		}
		out = append(out, p)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// links gathers cited outbound links in first-seen order.
func (x *SummaryExtractor) links(root dom.Node) []string {
	out := []string{}
	seen := map[string]struct{}{}
	add := func(href string) {
		href = strings.TrimSpace(href)
		if !IsAbsolute(href) || containsAny(strings.ToLower(href), x.engine) {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		out = append(out, href)
	}
	for _, sel := range x.cfg.LinkSelectors {
		for _, el := range root.Find(sel) {
			add(el.Href())
			for _, a := range el.Find("a[href^='http']") {
				add(a.Href())
			}
		}
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// Wait blocks for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
