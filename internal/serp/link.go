package serp

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// NormalizeLink returns the dedup key for a link: scheme and host lowercased,
// fragment dropped and trailing slash trimmed. It returns "" for links that
// are not absolute http(s) URLs.
func NormalizeLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ""
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

// IsAbsolute reports whether link is an absolute http(s) URL.
func IsAbsolute(link string) bool {
	return NormalizeLink(link) != ""
}

// Host returns the lowercased host of link without port, or "".
func Host(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Unwrap returns the target of link when link is a tracking URL matching
// one of redirects, and link unchanged otherwise.
func Unwrap(link string, redirects []Redirect) string {
	if len(redirects) == 0 {
		return link
	}
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return link
	}
	for _, r := range redirects {
		if r.Param == "" || !strings.HasPrefix(u.Path, r.Path) {
			continue
		}
		v := u.Query().Get(r.Param)
		if v == "" {
			continue
		}
		if r.Strip != "" {
			if !strings.HasPrefix(v, r.Strip) {
				continue
			}
			v = strings.TrimPrefix(v, r.Strip)
		}
		if r.Base64 {
			b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(v, "="))
			if err != nil {
				continue
			}
			v = string(b)
		}
		if IsAbsolute(v) {
			return v
		}
	}
	return link
}

// stripQuery drops the query string and fragment.
func stripQuery(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		return link[:i]
	}
	return link
}

// linkSet tracks normalized links already emitted.
type linkSet map[string]struct{}

// add records link and reports whether it was new.
func (s linkSet) add(link string) bool {
	key := NormalizeLink(link)
	if key == "" {
		return false
	}
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}
