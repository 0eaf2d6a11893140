// Package sanitize repairs AI-generated HTML before it is previewed or
// persisted: broken image references are rewritten to a canonical image CDN
// URL, markdown code fences are stripped, and user-authored text is cleaned
// of markup.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// cropParams are the fixed crop parameters appended to every repaired
	// image URL so output stays deterministic.
	cropParams = "w=800&h=600&fit=crop"

	unsplashBase = "https://images.unsplash.com/"

	// placeholderURL is where unsalvageable image references are pointed.
	placeholderURL = "https://placehold.co/800x600?text=image"
)

var (
	// src="photo-<digits>-<token>-anything" -> canonical CDN URL.
	rePhotoSrc = regexp.MustCompile(`src="photo-(\d+)-([a-zA-Z0-9]+)[^"]*"`)

	// src="<10+ digit numeric id>" -> canonical CDN URL.
	reNumericSrc = regexp.MustCompile(`src="(\d{10,})"`)

	// The same two patterns inside CSS url(...).
	rePhotoCSS   = regexp.MustCompile(`url\(\s*['"]?photo-(\d+)-([a-zA-Z0-9]+)[^'")]*['"]?\s*\)`)
	reNumericCSS = regexp.MustCompile(`url\(\s*['"]?(\d{10,})['"]?\s*\)`)

	// Any other src value, inspected individually below.
	reAnySrc = regexp.MustCompile(`src="([^"]*)"`)

	rePhotoValue = regexp.MustCompile(`photo-(\d+)-([a-zA-Z0-9]+)`)

	// Values that look like real file references are left alone.
	reFileRef = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|svg|avif|ico|bmp)(\?|#|$)`)

	userTextPolicy = bluemonday.StrictPolicy()
)

// FixBrokenImages deterministically repairs common broken image reference
// patterns in raw HTML. Empty input is returned unchanged and the function
// never fails; non-image content is never touched.
func FixBrokenImages(html string) string {
	if html == "" {
		return html
	}

	html = rePhotoSrc.ReplaceAllString(html, `src="`+unsplashBase+`photo-$1-$2?`+cropParams+`"`)
	html = reNumericSrc.ReplaceAllString(html, `src="`+unsplashBase+`photo-$1?`+cropParams+`"`)
	html = rePhotoCSS.ReplaceAllString(html, `url('`+unsplashBase+`photo-$1-$2?`+cropParams+`')`)
	html = reNumericCSS.ReplaceAllString(html, `url('`+unsplashBase+`photo-$1?`+cropParams+`')`)

	// Whatever src values remain: absolute, data, relative and in-document
	// references pass through; junk is salvaged or pointed at a placeholder.
	html = reAnySrc.ReplaceAllStringFunc(html, func(m string) string {
		val := m[len(`src="`) : len(m)-1]
		if isResolvableSrc(val) {
			return m
		}
		if pm := rePhotoValue.FindStringSubmatch(val); pm != nil {
			return `src="` + unsplashBase + "photo-" + pm[1] + "-" + pm[2] + "?" + cropParams + `"`
		}
		return `src="` + placeholderURL + `"`
	})

	return html
}

func isResolvableSrc(val string) bool {
	if val == "" {
		return false
	}
	for _, p := range []string{"http://", "https://", "//", "data:", "/", "./", "../", "#", "{"} {
		if strings.HasPrefix(val, p) {
			return true
		}
	}
	// Bare filenames like "hero.jpg" resolve relative to the document.
	return reFileRef.MatchString(val)
}

// StripCodeFences removes leading/trailing markdown code fence markers that
// generation output is occasionally wrapped in.
func StripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```") {
		if idx := strings.Index(out, "\n"); idx >= 0 {
			out = out[idx+1:]
		} else {
			out = strings.TrimPrefix(out, "```html")
			out = strings.TrimPrefix(out, "```")
		}
	}
	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

// CleanUserText strips all markup from user-authored text (chat prompts,
// page names) before it is persisted or echoed back.
func CleanUserText(s string) string {
	return userTextPolicy.Sanitize(s)
}

// InjectBeforeClose inserts payload immediately before the document's
// closing </body> tag, falling back to </html>, falling back to plain
// append when neither tag exists. Tag matching is case-insensitive, like
// HTML itself.
func InjectBeforeClose(html, payload string) string {
	lower := strings.ToLower(html)
	for _, tag := range []string{"</body>", "</html>"} {
		if idx := strings.LastIndex(lower, tag); idx >= 0 {
			return html[:idx] + payload + html[idx:]
		}
	}
	return html + payload
}
