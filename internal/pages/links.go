package pages

import (
	"strings"

	"golang.org/x/net/html"
)

// InternalLinks returns the normalized page keys referenced by anchor tags
// in the document. External URLs, fragments, mailto and javascript hrefs are
// skipped; the result is deduplicated in document order.
func InternalLinks(doc string) []string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	var links []string
	seen := map[string]bool{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if href == "" || isExternalRef(href) {
					continue
				}
				key := NormalizeKey(href)
				if !seen[key] {
					seen[key] = true
					links = append(links, key)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return links
}

func isExternalRef(href string) bool {
	for _, prefix := range []string{"http://", "https://", "//", "#", "mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}

// MissingLinks reports, per page, internal links that resolve to no page in
// the collection. Only DOCTYPE-bearing pages are audited.
func (c Collection) MissingLinks() map[string][]string {
	out := map[string][]string{}
	for key, doc := range c {
		if !IsDocument(doc) {
			continue
		}
		var missing []string
		for _, target := range InternalLinks(doc) {
			if _, ok := c[target]; !ok {
				missing = append(missing, target)
			}
		}
		if len(missing) > 0 {
			out[key] = missing
		}
	}
	return out
}
