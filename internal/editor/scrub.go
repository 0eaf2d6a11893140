package editor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const sentinelPrefix = "avallon-"

// editorNodeSelector matches every element the injected editor creates.
var editorNodeSelector = strings.Join([]string{
	"[data-avallon-ui]",
	"[id^='" + sentinelPrefix + "']",
	"[class*='" + sentinelPrefix + "']",
}, ", ")

// Scrub removes every editor-created node and attribute from an HTML
// document and re-serializes it with a DOCTYPE. The injected script strips
// itself before serializing; Scrub enforces the same guarantee server-side
// so editor internals can never reach the persisted artifact.
func Scrub(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing document: %w", err)
	}

	doc.Find(editorNodeSelector).Remove()

	// Attributes the editor leaves on surviving nodes.
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				if strings.HasPrefix(attr.Key, "data-"+sentinelPrefix) {
					continue
				}
				kept = append(kept, attr)
			}
			node.Attr = kept
		}
	})

	root := doc.Find("html")
	if root.Length() == 0 {
		return "", fmt.Errorf("document has no html element")
	}
	out, err := goquery.OuterHtml(root)
	if err != nil {
		return "", fmt.Errorf("serializing document: %w", err)
	}
	return "<!DOCTYPE html>\n" + out, nil
}
