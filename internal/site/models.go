// Package site holds the top-level site aggregate and its persistence:
// SQLite for metadata and messages, a content-addressed blob store for page
// snapshots, and per-save change summaries.
package site

import (
	"time"

	"github.com/avallon-labs/avallon/internal/pages"
)

// Status is the lifecycle status of a site.
type Status string

const (
	StatusGenerating Status = "generating"
	StatusDeployed   Status = "deployed"
	StatusLive       Status = "live"
)

// Site is the top-level aggregate: the page collection plus the
// conversation log.
type Site struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	Status Status `json:"status"`

	PreviewURL string `json:"previewUrl,omitempty"`
	RepoURL    string `json:"repoUrl,omitempty"`

	// Prompt is the initial description the site was created from.
	Prompt string `json:"prompt,omitempty"`

	// Pages maps filenames ending in .html to full document text;
	// index.html is the conventional entry page.
	Pages pages.Collection `json:"websiteContent"`

	// Messages is the append-only conversation log.
	Messages []Message `json:"messages"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is one conversation log record. Timestamp crosses the wire and
// the database as an ISO-8601 string and is reconstructed into time.Time on
// load; ordering and display depend on it.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Changes holds human-readable summaries of what this message's
	// generation or save changed.
	Changes []string `json:"changes,omitempty"`
}

// Version is one committed snapshot of a site's page collection.
type Version struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"siteId"`
	Parent    string    `json:"parent,omitempty"`
	Message   string    `json:"message,omitempty"`
	Changes   []string  `json:"changes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the list form of a site, without page or message payloads.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Status     Status    `json:"status"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	PageCount  int       `json:"pageCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
