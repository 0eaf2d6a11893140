package protocol

// Command type literals sent from the host into the previewed document.
const (
	CmdUpdateStyle      = "updateStyle"
	CmdUpdateContent    = "updateContent"
	CmdDeleteElement    = "deleteElement"
	CmdDuplicateElement = "duplicateElement"
	CmdAddSimilar       = "addSimilar"
	CmdReplaceImage     = "replaceImage"
	CmdUpdateHref       = "updateHref"
	CmdGetHTML          = "getHTML"
	CmdDeselectElement  = "deselectElement"
)

// Command is a host-to-editor instruction. Only the fields relevant to the
// command's type are populated; the rest are omitted from the wire form.
type Command struct {
	Type     string `json:"type"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`
	Content  string `json:"content,omitempty"`
	XPath    string `json:"xpath,omitempty"`
	URL      string `json:"url,omitempty"`
	Href     string `json:"href,omitempty"`
}

// UpdateStyle sets one inline style property on the selected element.
func UpdateStyle(property, value string) Command {
	return Command{Type: CmdUpdateStyle, Property: property, Value: value}
}

// UpdateContent replaces the selected element's text content.
func UpdateContent(content string) Command {
	return Command{Type: CmdUpdateContent, Content: content}
}

// DeleteElement removes the selected element.
func DeleteElement() Command { return Command{Type: CmdDeleteElement} }

// DuplicateElement clones the selected element as its next sibling.
func DuplicateElement() Command { return Command{Type: CmdDuplicateElement} }

// AddSimilar clones the element at xpath when no live selection exists;
// xpath may be empty to target the current selection.
func AddSimilar(xpath string) Command {
	return Command{Type: CmdAddSimilar, XPath: xpath}
}

// ReplaceImage points the selected element's image at url.
func ReplaceImage(url string) Command {
	return Command{Type: CmdReplaceImage, URL: url}
}

// UpdateHref makes the selected element link to href.
func UpdateHref(href string) Command {
	return Command{Type: CmdUpdateHref, Href: href}
}

// GetHTML asks the editor to serialize a clean copy of the document.
func GetHTML() Command { return Command{Type: CmdGetHTML} }

// DeselectElement clears the current selection and overlay.
func DeselectElement() Command { return Command{Type: CmdDeselectElement} }
