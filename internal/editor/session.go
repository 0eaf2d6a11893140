package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avallon-labs/avallon/internal/interfaces"
	"github.com/avallon-labs/avallon/internal/pages"
	"github.com/avallon-labs/avallon/internal/protocol"
)

// ErrSaveNotConfirmed is returned when a page or mode switch could not wait
// out the serialize round trip for pending visual edits.
var ErrSaveNotConfirmed = errors.New("editor: unsaved edits not confirmed in time")

// SessionConfig wires a Session to its surroundings. All callbacks are
// required except Send, which may be nil for sessions that only observe.
type SessionConfig struct {
	Logger interfaces.Logger

	// HasPage reports whether a page key exists in the site's collection.
	HasPage func(page string) bool

	// SavePage writes cleaned HTML into the collection under the given page
	// key and persists it.
	SavePage func(ctx context.Context, page, html string) error

	// Send delivers a command into the previewed document.
	Send func(protocol.Command) error

	// SaveTimeout bounds the wait for a serialize round trip during a page
	// switch. Zero means a 5 second default.
	SaveTimeout time.Duration
}

// Session is the single authoritative consumer of editor events for one
// editing surface: it owns the selected-element descriptor, the
// unsaved-changes flag and the current-page selection. Event handling never
// panics and never returns protocol errors to the transport; bad messages
// are logged and dropped so one malformed message cannot disable the
// session.
type Session struct {
	cfg SessionConfig

	mu          sync.Mutex
	currentPage string
	selected    *protocol.SelectedElement
	unsaved     bool
	saveDone    chan struct{}
	ready       bool
	lastError   string
}

// NewSession creates a session editing the given page.
func NewSession(cfg SessionConfig, currentPage string) *Session {
	if cfg.SaveTimeout == 0 {
		cfg.SaveTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = interfaces.NewTestLogger(false)
	}
	return &Session{cfg: cfg, currentPage: currentPage}
}

// CurrentPage returns the page the session is editing.
func (s *Session) CurrentPage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// Selected returns the current selected-element descriptor, or nil.
func (s *Session) Selected() *protocol.SelectedElement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// HasUnsavedChanges reports whether visual edits have happened since the
// last completed serialize round trip.
func (s *Session) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsaved
}

// Ready reports whether the injected editor has announced itself.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// LastError returns the most recent error reported by the editor.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// HandleRaw decodes and dispatches one wire message. Malformed or unknown
// messages are logged and ignored.
func (s *Session) HandleRaw(ctx context.Context, raw []byte) {
	ev, err := protocol.DecodeEvent(raw)
	if err != nil {
		s.cfg.Logger.Warn("dropping editor message", interfaces.Field{Key: "error", Value: err.Error()})
		return
	}
	s.HandleEvent(ctx, ev)
}

// HandleEvent applies one decoded editor event to the session state.
func (s *Session) HandleEvent(ctx context.Context, ev protocol.Event) {
	switch e := ev.(type) {
	case *protocol.Navigate:
		s.handleNavigate(e.Page)

	case *protocol.ElementSelected:
		s.mu.Lock()
		data := e.Data
		s.selected = &data
		s.mu.Unlock()

	case *protocol.StyleUpdated:
		s.markDirtyWithStyles(e.Data.XPath, e.Data.Styles)

	case *protocol.ElementResized:
		s.markDirtyWithStyles(e.Data.XPath, e.Data.Styles)

	case *protocol.ContentUpdated, *protocol.ElementMoved, *protocol.ElementAdded,
		*protocol.ElementDuplicated, *protocol.HrefUpdated, *protocol.ImageReplaced:
		s.markDirty()

	case *protocol.ElementDeleted:
		s.mu.Lock()
		s.unsaved = true
		if s.selected != nil && s.selected.XPath == e.Data.XPath {
			s.selected = nil
		}
		s.mu.Unlock()

	case *protocol.HTMLContent:
		s.handleHTMLContent(ctx, e.Data.HTML)

	case *protocol.VisualEditorReady:
		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
		s.cfg.Logger.Info("visual editor ready", interfaces.Field{Key: "page", Value: s.CurrentPage()})

	case *protocol.EditorError:
		s.mu.Lock()
		s.lastError = e.Data.Message
		s.mu.Unlock()
		s.cfg.Logger.Error("editor reported error", interfaces.Field{Key: "message", Value: e.Data.Message})
	}
}

func (s *Session) handleNavigate(page string) {
	key := pages.NormalizeKey(page)
	if s.cfg.HasPage == nil || !s.cfg.HasPage(key) {
		s.cfg.Logger.Warn("navigate to unknown page ignored", interfaces.Field{Key: "page", Value: key})
		return
	}
	s.mu.Lock()
	s.currentPage = key
	s.selected = nil
	s.mu.Unlock()
}

func (s *Session) markDirty() {
	s.mu.Lock()
	s.unsaved = true
	s.mu.Unlock()
}

func (s *Session) markDirtyWithStyles(xpath string, styles map[string]string) {
	s.mu.Lock()
	s.unsaved = true
	if s.selected != nil && s.selected.XPath == xpath {
		s.selected.MergeStyles(styles)
	}
	s.mu.Unlock()
}

func (s *Session) handleHTMLContent(ctx context.Context, html string) {
	clean, err := Scrub(html)
	if err != nil {
		s.cfg.Logger.Error("scrubbing serialized document", interfaces.Field{Key: "error", Value: err.Error()})
		return
	}

	s.mu.Lock()
	page := s.currentPage
	s.unsaved = false
	done := s.saveDone
	s.saveDone = nil
	s.mu.Unlock()

	if s.cfg.SavePage != nil {
		// The in-memory collection is updated regardless; a persistence
		// failure means "not yet durable", not "invalid".
		if err := s.cfg.SavePage(ctx, page, clean); err != nil {
			s.cfg.Logger.Error("persisting page", interfaces.Field{Key: "page", Value: page}, interfaces.Field{Key: "error", Value: err.Error()})
		}
	}

	if done != nil {
		close(done)
	}
}

// Send delivers a command into the previewed document.
func (s *Session) Send(cmd protocol.Command) error {
	if s.cfg.Send == nil {
		return errors.New("editor: session has no command channel")
	}
	return s.cfg.Send(cmd)
}

// RequestSave asks the editor for a clean serialization of the live
// document. The result arrives as an HTMLContent event.
func (s *Session) RequestSave() error {
	return s.Send(protocol.GetHTML())
}

// SwitchPage changes the session's current page. When unsaved visual edits
// are pending it first requests serialization and waits for the round trip
// to complete, so a page or mode switch can never silently drop edits.
func (s *Session) SwitchPage(ctx context.Context, page string) error {
	key := pages.NormalizeKey(page)

	s.mu.Lock()
	if !s.unsaved {
		s.currentPage = key
		s.selected = nil
		s.mu.Unlock()
		return nil
	}
	if s.saveDone == nil {
		s.saveDone = make(chan struct{})
		if err := s.RequestSave(); err != nil {
			s.saveDone = nil
			s.mu.Unlock()
			return err
		}
	}
	done := s.saveDone
	timeout := s.cfg.SaveTimeout
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return ErrSaveNotConfirmed
	}

	s.mu.Lock()
	s.currentPage = key
	s.selected = nil
	s.mu.Unlock()
	return nil
}
