package preview

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avallon-labs/avallon/internal/interfaces"
)

// Document is one staged preview document, addressable by its token until
// it is released or replaced.
type Document struct {
	Token    string    `json:"token"`
	SiteID   string    `json:"siteId"`
	Page     string    `json:"page"`
	Mode     Mode      `json:"mode"`
	HTML     string    `json:"-"`
	Revision uint64    `json:"revision"`
	StagedAt time.Time `json:"stagedAt"`
}

// Registry owns the staged preview documents. One document is live per site
// at a time: staging a replacement retires the predecessor, so a long
// editing session cannot accumulate stale documents. Releasing an unknown
// or already-released token is a no-op.
type Registry struct {
	logger interfaces.Logger

	mu       sync.Mutex
	byToken  map[string]*Document
	bySite   map[string]string // siteID -> live token
	revision uint64
}

// NewRegistry creates an empty preview registry.
func NewRegistry(logger interfaces.Logger) *Registry {
	return &Registry{
		logger:  logger,
		byToken: make(map[string]*Document),
		bySite:  make(map[string]string),
	}
}

// Stage assembles and registers a preview document for the site's page,
// retiring the site's previous document. The revision increases on every
// staging, so a reload is forced even when page and mode are unchanged.
func (r *Registry) Stage(siteID, page, rawHTML string, mode Mode) *Document {
	html := Assemble(rawHTML, mode)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.bySite[siteID]; ok {
		delete(r.byToken, old)
	}

	r.revision++
	doc := &Document{
		Token:    uuid.New().String(),
		SiteID:   siteID,
		Page:     page,
		Mode:     mode,
		HTML:     html,
		Revision: r.revision,
		StagedAt: time.Now().UTC(),
	}
	r.byToken[doc.Token] = doc
	r.bySite[siteID] = doc.Token

	if r.logger != nil {
		r.logger.Debug("staged preview",
			interfaces.Field{Key: "site", Value: siteID},
			interfaces.Field{Key: "page", Value: page},
			interfaces.Field{Key: "mode", Value: string(mode)},
			interfaces.Field{Key: "revision", Value: doc.Revision})
	}
	return doc
}

// Get returns the document for token, if it is still live.
func (r *Registry) Get(token string) (*Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byToken[token]
	return doc, ok
}

// Release retires the document for token. Unknown tokens are ignored.
func (r *Registry) Release(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byToken[token]
	if !ok {
		return
	}
	delete(r.byToken, token)
	if r.bySite[doc.SiteID] == token {
		delete(r.bySite, doc.SiteID)
	}
}

// ReleaseSite retires whatever document is live for the site.
func (r *Registry) ReleaseSite(siteID string) {
	r.mu.Lock()
	token, ok := r.bySite[siteID]
	r.mu.Unlock()
	if ok {
		r.Release(token)
	}
}

// Live returns the number of staged documents, for tests and introspection.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}
