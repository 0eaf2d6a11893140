// Package protocol defines the typed message protocol exchanged between the
// host and the editing script injected into the previewed document. Wire
// field names are bit-exact: the injected script and any embedding UI depend
// on them.
package protocol

// Rect is an element bounding rectangle in document coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SelectedElement is the transient descriptor of exactly one live DOM node
// in the preview surface. It is replaced wholesale on every selection and is
// never persisted; only its effects on the document survive a save.
type SelectedElement struct {
	TagName string   `json:"tagName"`
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classes,omitempty"`

	// Path is the human-readable ancestor breadcrumb, outermost first.
	Path []string `json:"path,omitempty"`

	// Styles holds the fixed set of computed style properties the property
	// panel shows (font metrics, colors, spacing, sizing, flex).
	Styles map[string]string `json:"styles,omitempty"`

	// Text is the element's text content, truncated by the producer.
	Text string `json:"text,omitempty"`

	Rect Rect `json:"rect"`

	// XPath is the structural path used to re-locate the node later.
	XPath string `json:"xpath"`

	Href        string `json:"href,omitempty"`
	IsClickable bool   `json:"isClickable,omitempty"`
}

// MergeStyles folds freshly computed styles into the descriptor so the
// property panel reflects true DOM state rather than a stale copy.
func (s *SelectedElement) MergeStyles(styles map[string]string) {
	if s == nil || len(styles) == 0 {
		return
	}
	if s.Styles == nil {
		s.Styles = make(map[string]string, len(styles))
	}
	for k, v := range styles {
		s.Styles[k] = v
	}
}
