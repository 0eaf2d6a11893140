// Package preview assembles previewable documents out of stored page HTML
// and manages their lifecycle: each staged document lives under an opaque
// token until the next staging for the same site retires it.
package preview

import (
	"github.com/avallon-labs/avallon/internal/editor"
	"github.com/avallon-labs/avallon/internal/sanitize"
)

// Mode selects how a page is prepared for the preview surface.
type Mode string

const (
	// ModeAI is the chat view: browsable preview, no editing machinery.
	ModeAI Mode = "ai"

	// ModeVisual is the editing view: nav forced visible and the visual
	// editor injected.
	ModeVisual Mode = "visual"
)

// Assemble runs the preview pipeline over raw stored page HTML:
// fence stripping, image repair, fallback handler, then the mode-dependent
// injections, ending with the navigation rewriter and (visual mode only)
// the editor payload.
func Assemble(raw string, mode Mode) string {
	doc := sanitize.StripCodeFences(raw)
	doc = sanitize.FixBrokenImages(doc)
	doc = sanitize.InjectImageFallback(doc)

	if mode == ModeVisual {
		doc = sanitize.InjectBeforeClose(doc, navVisibleCSS)
	}
	doc = sanitize.InjectBeforeClose(doc, navScript)
	if mode == ModeVisual {
		doc = editor.Inject(doc)
	}
	return doc
}
