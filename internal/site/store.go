package site

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avallon-labs/avallon/internal/interfaces"
	"github.com/avallon-labs/avallon/internal/pages"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when a site id does not exist.
var ErrNotFound = errors.New("site not found")

// timeLayout is ISO-8601 with a fixed-width fraction so the TEXT columns
// sort chronologically under SQLite's lexicographic ORDER BY.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS sites (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL,
	status      TEXT NOT NULL,
	preview_url TEXT,
	repo_url    TEXT,
	prompt      TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS site_pages (
	site_id    TEXT NOT NULL,
	filename   TEXT NOT NULL,
	html       TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (site_id, filename)
);

CREATE TABLE IF NOT EXISTS site_messages (
	id         TEXT PRIMARY KEY,
	site_id    TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	changes    TEXT
);

CREATE TABLE IF NOT EXISTS site_versions (
	id         TEXT PRIMARY KEY,
	site_id    TEXT NOT NULL,
	parent     TEXT,
	message    TEXT,
	changes    TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS version_files (
	version_id TEXT NOT NULL,
	filename   TEXT NOT NULL,
	blob_hash  TEXT NOT NULL,
	PRIMARY KEY (version_id, filename)
);

CREATE INDEX IF NOT EXISTS idx_messages_site ON site_messages(site_id, seq);
CREATE INDEX IF NOT EXISTS idx_versions_site ON site_versions(site_id, created_at);
`

// Store persists sites in SQLite with page snapshots in a content-addressed
// blob store. Every save records a version so the conversation log can carry
// change summaries.
type Store struct {
	db     *sql.DB
	blobs  *BlobStore
	logger interfaces.Logger
}

// NewStore opens (creating as needed) the site database under storageRoot.
func NewStore(storageRoot string, logger interfaces.Logger) (*Store, error) {
	if logger == nil {
		return nil, errors.New("site: nil logger provided")
	}
	if err := os.MkdirAll(storageRoot, 0755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+filepath.Join(storageRoot, "avallon.db")+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening site database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	blobs, err := NewBlobStore(filepath.Join(storageRoot, "blobs"))
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("site store initialized", interfaces.Field{Key: "storage_root", Value: storageRoot})
	return &Store{db: db, blobs: blobs, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new site in generating status with an empty collection.
func (s *Store) Create(ctx context.Context, name, prompt string) (*Site, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("site name is required")
	}
	now := time.Now().UTC()
	site := &Site{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      Slugify(name),
		Status:    StatusGenerating,
		Prompt:    prompt,
		Pages:     pages.Collection{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sites (id, name, slug, status, preview_url, repo_url, prompt, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '', '', ?, ?, ?)`,
		site.ID, site.Name, site.Slug, string(site.Status), site.Prompt,
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("inserting site: %w", err)
	}
	return site, nil
}

// Get loads a full site: metadata, pages and ordered messages.
func (s *Store) Get(ctx context.Context, id string) (*Site, error) {
	site := &Site{ID: id, Pages: pages.Collection{}}

	var status, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, slug, status, preview_url, repo_url, prompt, created_at, updated_at
		 FROM sites WHERE id = ?`, id).
		Scan(&site.Name, &site.Slug, &status, &site.PreviewURL, &site.RepoURL, &site.Prompt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying site: %w", err)
	}
	site.Status = Status(status)
	site.CreatedAt = parseTime(createdAt)
	site.UpdatedAt = parseTime(updatedAt)

	rows, err := s.db.QueryContext(ctx, `SELECT filename, html FROM site_pages WHERE site_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var filename, html string
		if err := rows.Scan(&filename, &html); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		site.Pages[filename] = html
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pages: %w", err)
	}

	msgs, err := s.loadMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	site.Messages = msgs
	return site, nil
}

func (s *Store) loadMessages(ctx context.Context, siteID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at, changes
		 FROM site_messages WHERE site_id = ? ORDER BY seq ASC`, siteID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var createdAt string
		var changes sql.NullString
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &createdAt, &changes); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Timestamp = parseTime(createdAt)
		if changes.Valid && changes.String != "" {
			if err := json.Unmarshal([]byte(changes.String), &m.Changes); err != nil {
				s.logger.Warn("unreadable change summaries",
					interfaces.Field{Key: "message_id", Value: m.ID},
					interfaces.Field{Key: "error", Value: err.Error()})
			}
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// List returns summaries of all sites, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.name, s.slug, s.status, s.preview_url, s.updated_at,
		        (SELECT COUNT(*) FROM site_pages p WHERE p.site_id = s.id)
		 FROM sites s ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var status, updatedAt string
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Slug, &status, &sum.PreviewURL, &updatedAt, &sum.PageCount); err != nil {
			return nil, fmt.Errorf("scanning site summary: %w", err)
		}
		sum.Status = Status(status)
		sum.UpdatedAt = parseTime(updatedAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Save persists the site wholesale: metadata, pages, messages, and a new
// version whose change summaries against the previous save are returned.
// The operation is a single transaction; page content also lands in the
// blob store keyed by hash.
func (s *Store) Save(ctx context.Context, site *Site) ([]string, error) {
	if site == nil || site.ID == "" {
		return nil, errors.New("site with id is required")
	}

	previous, err := s.currentPages(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	changes := Summarize(previous, site.Pages)

	now := time.Now().UTC()
	site.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
			s.logger.Warn("tx rollback failed", interfaces.Field{Key: "error", Value: rerr.Error()})
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE sites SET name = ?, slug = ?, status = ?, preview_url = ?, repo_url = ?, updated_at = ?
		 WHERE id = ?`,
		site.Name, site.Slug, string(site.Status), site.PreviewURL, site.RepoURL,
		now.Format(timeLayout), site.ID)
	if err != nil {
		return nil, fmt.Errorf("updating site: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM site_pages WHERE site_id = ?`, site.ID); err != nil {
		return nil, fmt.Errorf("clearing pages: %w", err)
	}
	for filename, html := range site.Pages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO site_pages (site_id, filename, html, updated_at) VALUES (?, ?, ?, ?)`,
			site.ID, filename, html, now.Format(timeLayout)); err != nil {
			return nil, fmt.Errorf("inserting page %s: %w", filename, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM site_messages WHERE site_id = ?`, site.ID); err != nil {
		return nil, fmt.Errorf("clearing messages: %w", err)
	}
	for i, m := range site.Messages {
		if m.ID == "" {
			m.ID = uuid.New().String()
			site.Messages[i].ID = m.ID
		}
		var changesJSON []byte
		if len(m.Changes) > 0 {
			changesJSON, _ = json.Marshal(m.Changes)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO site_messages (id, site_id, seq, role, content, created_at, changes)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, site.ID, i, m.Role, m.Content,
			m.Timestamp.UTC().Format(timeLayout), nullable(string(changesJSON))); err != nil {
			return nil, fmt.Errorf("inserting message: %w", err)
		}
	}

	if len(changes) > 0 {
		if err := s.recordVersion(ctx, tx, site, changes, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing save: %w", err)
	}
	return changes, nil
}

func (s *Store) recordVersion(ctx context.Context, tx *sql.Tx, site *Site, changes []string, now time.Time) error {
	var parent sql.NullString
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM site_versions WHERE site_id = ? ORDER BY created_at DESC LIMIT 1`,
		site.ID).Scan(&parent)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("querying head version: %w", err)
	}

	versionID := uuid.New().String()
	changesJSON, _ := json.Marshal(changes)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO site_versions (id, site_id, parent, message, changes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		versionID, site.ID, parent.String, strings.Join(changes, "; "),
		string(changesJSON), now.Format(timeLayout)); err != nil {
		return fmt.Errorf("inserting version: %w", err)
	}

	for filename, html := range site.Pages {
		hash, err := s.blobs.Put([]byte(html))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO version_files (version_id, filename, blob_hash) VALUES (?, ?, ?)`,
			versionID, filename, hash); err != nil {
			return fmt.Errorf("inserting version file: %w", err)
		}
	}
	return nil
}

func (s *Store) currentPages(ctx context.Context, siteID string) (pages.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename, html FROM site_pages WHERE site_id = ?`, siteID)
	if err != nil {
		return nil, fmt.Errorf("querying current pages: %w", err)
	}
	defer rows.Close()
	out := pages.Collection{}
	for rows.Next() {
		var filename, html string
		if err := rows.Scan(&filename, &html); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		out[filename] = html
	}
	return out, rows.Err()
}

// Versions lists a site's saved versions, newest first.
func (s *Store) Versions(ctx context.Context, siteID string, limit int) ([]Version, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent, message, changes, created_at
		 FROM site_versions WHERE site_id = ? ORDER BY created_at DESC LIMIT ?`, siteID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		v := Version{SiteID: siteID}
		var parent, message, changes sql.NullString
		var createdAt string
		if err := rows.Scan(&v.ID, &parent, &message, &changes, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		v.Parent = parent.String
		v.Message = message.String
		if changes.Valid && changes.String != "" {
			_ = json.Unmarshal([]byte(changes.String), &v.Changes)
		}
		v.CreatedAt = parseTime(createdAt)
		out = append(out, v)
	}
	return out, rows.Err()
}

// VersionPages reconstructs the page collection of a saved version from the
// blob store.
func (s *Store) VersionPages(ctx context.Context, versionID string) (pages.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, blob_hash FROM version_files WHERE version_id = ?`, versionID)
	if err != nil {
		return nil, fmt.Errorf("querying version files: %w", err)
	}
	defer rows.Close()

	out := pages.Collection{}
	for rows.Next() {
		var filename, hash string
		if err := rows.Scan(&filename, &hash); err != nil {
			return nil, fmt.Errorf("scanning version file: %w", err)
		}
		data, err := s.blobs.Get(hash)
		if err != nil {
			return nil, err
		}
		out[filename] = string(data)
	}
	return out, rows.Err()
}

// Slugify reduces a display name to a URL-safe slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
