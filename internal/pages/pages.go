// Package pages holds the multi-page site model: a mapping from page
// filename to full HTML document text, with merge semantics that never drop
// existing pages when new generation output arrives.
package pages

import (
	"sort"
	"strings"
)

// IndexPage is the conventional entry page of every site.
const IndexPage = "index.html"

// Collection maps a page key (a filename like "about.html") to the full HTML
// document text for that page.
type Collection map[string]string

// Clone returns an independent copy of the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge merges incoming pages into the collection key by key. Incoming wins
// per key; every other existing key is retained. The whole collection is
// never replaced, so incremental generation responses cannot lose pages.
func (c Collection) Merge(incoming Collection) Collection {
	out := c.Clone()
	for k, v := range incoming {
		out[NormalizeKey(k)] = v
	}
	return out
}

// IsDocument reports whether html looks like a real page. A DOCTYPE
// declaration is the validity test guarding against partial or garbage
// entries.
func IsDocument(html string) bool {
	return strings.Contains(strings.ToLower(html), "<!doctype")
}

// Available returns the page keys that hold real documents, index.html
// first and the remainder in lexicographic order.
func (c Collection) Available() []string {
	var keys []string
	hasIndex := false
	for k, v := range c {
		if !IsDocument(v) {
			continue
		}
		if k == IndexPage {
			hasIndex = true
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if hasIndex {
		keys = append([]string{IndexPage}, keys...)
	}
	return keys
}

// ResolveCurrent resolves the nominally selected page key to a member of the
// available set. A missing or invalid selection falls back to the first
// available page, and to index.html when nothing is available, so the caller
// never shows a blank page silently.
func (c Collection) ResolveCurrent(requested string) string {
	avail := c.Available()
	for _, k := range avail {
		if k == requested {
			return requested
		}
	}
	if len(avail) > 0 {
		return avail[0]
	}
	return IndexPage
}

// NormalizeKey turns a page reference into a canonical page key: leading
// "/" and "./" stripped, lowercased, spaces collapsed to dashes, and a
// ".html" suffix guaranteed.
func NormalizeKey(name string) string {
	key := strings.TrimSpace(name)
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimPrefix(key, "/")
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, " ", "-")
	if key == "" {
		return IndexPage
	}
	if !strings.HasSuffix(key, ".html") {
		key += ".html"
	}
	return key
}
