package protocol

import (
	"encoding/json"
	"fmt"
)

// Event type literals sent from the previewed document to the host.
const (
	EvElementSelected   = "elementSelected"
	EvStyleUpdated      = "styleUpdated"
	EvContentUpdated    = "contentUpdated"
	EvElementResized    = "elementResized"
	EvElementDeleted    = "elementDeleted"
	EvElementDuplicated = "elementDuplicated"
	EvElementMoved      = "elementMoved"
	EvElementAdded      = "elementAdded"
	EvHrefUpdated       = "hrefUpdated"
	EvImageReplaced     = "imageReplaced"
	EvHTMLContent       = "htmlContent"
	EvNavigate          = "navigate"
	EvVisualEditorReady = "visualEditorReady"
	EvError             = "error"
)

// Event is one variant of the closed set of editor-to-host messages.
// DecodeEvent is the only constructor for inbound traffic; an unknown type
// is an error, never a panic.
type Event interface {
	EventType() string
}

type ElementSelected struct {
	Type string          `json:"type"`
	Data SelectedElement `json:"data"`
}

type StyleChange struct {
	XPath  string            `json:"xpath"`
	Styles map[string]string `json:"styles"`
}

type StyleUpdated struct {
	Type string      `json:"type"`
	Data StyleChange `json:"data"`
}

type ContentUpdated struct {
	Type string `json:"type"`
	Data struct {
		XPath   string `json:"xpath"`
		Content string `json:"content"`
	} `json:"data"`
}

type ElementResized struct {
	Type string      `json:"type"`
	Data StyleChange `json:"data"`
}

type ElementDeleted struct {
	Type string `json:"type"`
	Data struct {
		XPath string `json:"xpath"`
	} `json:"data"`
}

type ElementDuplicated struct {
	Type string `json:"type"`
	Data struct {
		XPath string `json:"xpath"`
		IsNew bool   `json:"isNew"`
	} `json:"data"`
}

type ElementMoved struct {
	Type string `json:"type"`
	Data struct {
		XPath   string `json:"xpath"`
		Message string `json:"message"`
	} `json:"data"`
}

type ElementAdded struct {
	Type string `json:"type"`
	Data struct {
		XPath   string `json:"xpath"`
		Message string `json:"message"`
	} `json:"data"`
}

type HrefUpdated struct {
	Type string `json:"type"`
	Data struct {
		XPath   string `json:"xpath"`
		NewHref string `json:"newHref"`
	} `json:"data"`
}

type ImageReplaced struct {
	Type string `json:"type"`
	Data struct {
		XPath   string `json:"xpath"`
		NewSrc  string `json:"newSrc"`
		TagName string `json:"tagName"`
	} `json:"data"`
}

type HTMLContent struct {
	Type string `json:"type"`
	Data struct {
		HTML string `json:"html"`
	} `json:"data"`
}

type Navigate struct {
	Type string `json:"type"`
	Page string `json:"page"`
}

type VisualEditorReady struct {
	Type string `json:"type"`
}

type EditorError struct {
	Type string `json:"type"`
	Data struct {
		Message string `json:"message"`
	} `json:"data"`
}

func (e ElementSelected) EventType() string   { return EvElementSelected }
func (e StyleUpdated) EventType() string      { return EvStyleUpdated }
func (e ContentUpdated) EventType() string    { return EvContentUpdated }
func (e ElementResized) EventType() string    { return EvElementResized }
func (e ElementDeleted) EventType() string    { return EvElementDeleted }
func (e ElementDuplicated) EventType() string { return EvElementDuplicated }
func (e ElementMoved) EventType() string      { return EvElementMoved }
func (e ElementAdded) EventType() string      { return EvElementAdded }
func (e HrefUpdated) EventType() string       { return EvHrefUpdated }
func (e ImageReplaced) EventType() string     { return EvImageReplaced }
func (e HTMLContent) EventType() string       { return EvHTMLContent }
func (e Navigate) EventType() string          { return EvNavigate }
func (e VisualEditorReady) EventType() string { return EvVisualEditorReady }
func (e EditorError) EventType() string       { return EvError }

// DecodeEvent parses one editor-to-host message. Malformed payloads and
// unknown types are reported as errors so the caller can log and drop them
// without ever letting an exception escape the message loop.
func DecodeEvent(raw []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	decode := func(v Event) (Event, error) {
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
		}
		return v, nil
	}

	switch head.Type {
	case EvElementSelected:
		return decode(&ElementSelected{})
	case EvStyleUpdated:
		return decode(&StyleUpdated{})
	case EvContentUpdated:
		return decode(&ContentUpdated{})
	case EvElementResized:
		return decode(&ElementResized{})
	case EvElementDeleted:
		return decode(&ElementDeleted{})
	case EvElementDuplicated:
		return decode(&ElementDuplicated{})
	case EvElementMoved:
		return decode(&ElementMoved{})
	case EvElementAdded:
		return decode(&ElementAdded{})
	case EvHrefUpdated:
		return decode(&HrefUpdated{})
	case EvImageReplaced:
		return decode(&ImageReplaced{})
	case EvHTMLContent:
		return decode(&HTMLContent{})
	case EvNavigate:
		return decode(&Navigate{})
	case EvVisualEditorReady:
		return decode(&VisualEditorReady{})
	case EvError:
		return decode(&EditorError{})
	default:
		return nil, fmt.Errorf("unknown message type %q", head.Type)
	}
}
