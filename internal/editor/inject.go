// Package editor owns the visual editing machinery: the script/style payload
// injected into previewed documents, the server-side scrubber that removes
// every trace of that machinery before HTML is persisted, and the host-side
// session that routes the editing message protocol.
package editor

import (
	_ "embed"
	"strings"

	"github.com/avallon-labs/avallon/internal/sanitize"
)

//go:embed editor.js
var editorScript string

//go:embed editor.css
var editorStyle string

const (
	// ScriptID and StyleID are the sentinel element ids of the injected
	// payload. Everything the editor creates carries the avallon- prefix.
	ScriptID = "avallon-editor-script"
	StyleID  = "avallon-editor-style"
)

// Payload returns the style+script block that turns a previewed document
// into an editable surface. The two elements are emitted back to back with
// no text between or after them: any bare whitespace here would survive as
// text nodes after the elements themselves are scrubbed out, and the
// injected whitespace would compound on every save/assemble cycle.
func Payload() string {
	var b strings.Builder
	b.WriteString(`<style id="` + StyleID + `">` + "\n")
	b.WriteString(editorStyle)
	b.WriteString("</style>")
	b.WriteString(`<script id="` + ScriptID + `">` + "\n")
	b.WriteString(editorScript)
	b.WriteString("</script>")
	return b.String()
}

// Inject inserts the editor payload before the document's closing tag.
// Injection is idempotent: a document that already carries the payload is
// returned unchanged, so repeated save/assemble cycles never accumulate
// duplicate scripts.
func Inject(html string) string {
	if Injected(html) {
		return html
	}
	return sanitize.InjectBeforeClose(html, Payload())
}

// Injected reports whether html already carries the editor payload.
func Injected(html string) bool {
	return strings.Contains(html, `id="`+ScriptID+`"`)
}
