package pages

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CreateBlankPage synthesizes a new page and adds it to the collection,
// returning the new page key. The page inherits the header/nav, footer and
// style blocks of index.html when present, so added pages stay visually
// consistent without re-running generation; otherwise a minimal shell is
// produced. index.html itself is never altered.
func (c Collection) CreateBlankPage(name string) (string, error) {
	key := NormalizeKey(name)
	if _, exists := c[key]; exists {
		return "", fmt.Errorf("page %q already exists", key)
	}

	title := strings.TrimSpace(name)
	if title == "" {
		title = "New Page"
	}

	var styles, header, footer string
	if index, ok := c[IndexPage]; ok && IsDocument(index) {
		styles, header, footer = extractChrome(index)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>" + title + "</title>\n")
	if styles != "" {
		b.WriteString(styles)
	}
	b.WriteString("</head>\n<body>\n")
	if header != "" {
		b.WriteString(header + "\n")
	}
	b.WriteString("<main style=\"padding: 80px 20px; text-align: center; min-height: 50vh;\">\n")
	b.WriteString("<h1>" + title + "</h1>\n")
	b.WriteString("<p>This page is ready to edit. Describe what you want here, or use the visual editor.</p>\n")
	b.WriteString("</main>\n")
	if footer != "" {
		b.WriteString(footer + "\n")
	}
	b.WriteString("</body>\n</html>")

	c[key] = b.String()
	return key, nil
}

// extractChrome pulls the shared chrome out of an existing document: style
// blocks and stylesheet links from the head, the header or nav, and the
// footer.
func extractChrome(html string) (styles, header, footer string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", ""
	}

	var sb strings.Builder
	doc.Find("head style, head link[rel='stylesheet']").Each(func(_ int, s *goquery.Selection) {
		if h, err := goquery.OuterHtml(s); err == nil {
			sb.WriteString(h + "\n")
		}
	})
	styles = sb.String()

	// Prefer a <header> element; a bare top-level <nav> works too.
	if sel := doc.Find("body header").First(); sel.Length() > 0 {
		header, _ = goquery.OuterHtml(sel)
	} else if sel := doc.Find("body nav").First(); sel.Length() > 0 {
		header, _ = goquery.OuterHtml(sel)
	}

	if sel := doc.Find("body footer").First(); sel.Length() > 0 {
		footer, _ = goquery.OuterHtml(sel)
	}

	return styles, header, footer
}
