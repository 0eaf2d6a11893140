// Package server is the HTTP + WebSocket surface of the builder: sites CRUD,
// generation, preview staging and the live editor relay.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/avallon-labs/avallon/internal/config"
	"github.com/avallon-labs/avallon/internal/editor"
	"github.com/avallon-labs/avallon/internal/generate"
	"github.com/avallon-labs/avallon/internal/interfaces"
	"github.com/avallon-labs/avallon/internal/logging"
	"github.com/avallon-labs/avallon/internal/pages"
	"github.com/avallon-labs/avallon/internal/preview"
	"github.com/avallon-labs/avallon/internal/protocol"
	"github.com/avallon-labs/avallon/internal/sanitize"
	"github.com/avallon-labs/avallon/internal/site"
	"github.com/avallon-labs/avallon/internal/snapshot"
)

// Server is the HTTP + WebSocket API surface for the builder.
type Server struct {
	cfg      Config
	store    *site.Store
	previews *preview.Registry
	provider generate.Provider
	capturer *snapshot.Capturer
	router   chi.Router
	upgrader websocket.Upgrader
	logger   interfaces.Logger

	sessionsMu sync.Mutex
	sessions   map[string]*editor.Session // siteID -> live editing session
}

// NewServer creates a new Server with its own store and preview registry.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = config.Default()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	storageRoot, err := expandPath(cfg.AppConfig.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("expanding storage root path: %w", err)
	}
	cfg.AppConfig.StorageRoot = storageRoot
	if err := os.MkdirAll(storageRoot, 0755); err != nil {
		logger.Warn("creating storage root directory", interfaces.Field{Key: "path", Value: storageRoot}, interfaces.Field{Key: "error", Value: err.Error()})
	}

	store, err := site.NewStore(storageRoot, logger)
	if err != nil {
		return nil, fmt.Errorf("creating site store: %w", err)
	}

	provider, err := selectProvider(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	var capturer *snapshot.Capturer
	if cfg.AppConfig.Screenshot.Enabled {
		capturer, err = snapshot.NewCapturer(
			filepath.Join(storageRoot, "thumbnails"),
			time.Duration(cfg.AppConfig.Screenshot.TimeoutSeconds)*time.Second,
			logger)
		if err != nil {
			logger.Warn("screenshot capture disabled", interfaces.Field{Key: "error", Value: err.Error()})
		}
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		previews: preview.NewRegistry(logger),
		provider: provider,
		capturer: capturer,
		router:   chi.NewRouter(),
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
		sessions: make(map[string]*editor.Session),
	}

	s.routes()
	return s, nil
}

func selectProvider(cfg Config, logger interfaces.Logger) (generate.Provider, error) {
	if cfg.Provider != nil {
		return cfg.Provider, nil
	}
	gen := cfg.AppConfig.Generation
	if gen.BackendURL != "" {
		client := generate.NewClient(gen.BackendURL, time.Duration(gen.TimeoutSeconds)*time.Second, logger)
		return &backendProvider{client: client}, nil
	}
	switch gen.Provider {
	case "openai":
		return generate.NewOpenAIProvider(gen.APIKey, gen.Model, logger)
	default:
		return generate.StaticProvider{}, nil
	}
}

// backendProvider routes generation through an external backend.
type backendProvider struct {
	client *generate.Client
}

func (p *backendProvider) Generate(ctx context.Context, req generate.Request) (map[string]string, string, error) {
	content, msg, err := p.client.Generate(ctx, req)
	return content, msg, err
}

// Store returns the underlying site store for advanced use (tests, etc.).
func (s *Server) Store() *site.Store {
	return s.store
}

// Previews returns the preview registry for advanced use (tests, etc.).
func (s *Server) Previews() *preview.Registry {
	return s.previews
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/sites", s.optionsHandler("GET, POST"))
	r.Options("/sites/generate", s.optionsHandler("POST"))
	r.Options("/sites/{id}", s.optionsHandler("GET, PUT"))
	r.Options("/sites/{id}/pages", s.optionsHandler("POST"))
	r.Options("/sites/{id}/preview", s.optionsHandler("POST"))
	r.Options("/sites/{id}/versions", s.optionsHandler("GET"))
	r.Options("/sites/{id}/editor/command", s.optionsHandler("POST"))
	r.Options("/sites/{id}/editor/save", s.optionsHandler("POST"))
	r.Options("/sites/{id}/editor/page", s.optionsHandler("POST"))
	r.Options("/sites/deploy/{provider}", s.optionsHandler("POST"))
	r.Options("/preview/{token}", s.optionsHandler("GET"))
	r.Options("/ws/sites/{id}/editor", s.optionsHandler("GET"))

	// Sites
	r.Post("/sites", s.handleCreateSite)
	r.Get("/sites", s.handleListSites)
	r.Post("/sites/generate", s.handleGenerate)
	r.Get("/sites/{id}", s.handleGetSite)
	r.Put("/sites/{id}", s.handleSaveSite)
	r.Post("/sites/{id}/pages", s.handleAddPage)
	r.Get("/sites/{id}/versions", s.handleListVersions)

	// Previews
	r.Post("/sites/{id}/preview", s.handleStagePreview)
	r.Get("/preview/{token}", s.handleServePreview)

	// Editor control plane
	r.Post("/sites/{id}/editor/command", s.handleEditorCommand)
	r.Post("/sites/{id}/editor/save", s.handleEditorSave)
	r.Post("/sites/{id}/editor/page", s.handleEditorSwitchPage)

	// Deployment boundary stub
	r.Post("/sites/deploy/{provider}", s.handleDeploy)

	// WebSocket editor relay
	r.Get("/ws/sites/{id}/editor", s.handleEditorWS)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []interfaces.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, interfaces.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, interfaces.Field{Key: "body_bytes", Value: len(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the store and underlying resources.
func (s *Server) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- HTTP handlers ---

// Sites

func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string `json:"name"`
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	body.Name = sanitize.CleanUserText(body.Name)
	body.Prompt = sanitize.CleanUserText(body.Prompt)

	created, err := s.store.Create(r.Context(), body.Name, body.Prompt)
	if err != nil {
		s.logger.Warn("creating site", interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("created site", interfaces.Field{Key: "site_id", Value: created.ID}, interfaces.Field{Key: "slug", Value: created.Slug})
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sums, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Warn("listing sites", interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sums == nil {
		sums = []site.Summary{}
	}
	writeJSON(w, http.StatusOK, sums)
}

func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := s.store.Get(r.Context(), id)
	if err == site.ErrNotFound {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	if err != nil {
		s.logger.Warn("getting site", interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSaveSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Messages       []site.Message    `json:"messages"`
		WebsiteContent map[string]string `json:"websiteContent"`
		Status         site.Status       `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	st, err := s.store.Get(r.Context(), id)
	if err == site.ErrNotFound {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Incoming pages are merged so a partial map can never wipe pages the
	// caller did not send.
	incoming := pages.Collection{}
	for name, html := range body.WebsiteContent {
		incoming[name] = html
	}
	st.Pages = st.Pages.Merge(incoming)
	if body.Messages != nil {
		st.Messages = body.Messages
	}
	if body.Status != "" {
		st.Status = body.Status
	}

	changes, err := s.store.Save(r.Context(), st)
	if err != nil {
		s.logger.Warn("saving site", interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("saved site",
		interfaces.Field{Key: "site_id", Value: id},
		interfaces.Field{Key: "changes", Value: changes})
	writeJSON(w, http.StatusOK, map[string]any{"site": st, "changes": changes})
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	versions, err := s.store.Versions(r.Context(), id, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if versions == nil {
		versions = []site.Version{}
	}
	writeJSON(w, http.StatusOK, versions)
}

// Generation

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Mode == "" {
		req.Mode = "full"
	}

	// Visual edits still pending in a live session would be clobbered by a
	// merge that races the serialize round trip.
	if req.SiteID != "" {
		if sess := s.session(req.SiteID); sess != nil && sess.HasUnsavedChanges() {
			writeError(w, http.StatusConflict, "unsaved visual edits pending; save before generating")
			return
		}
	}

	var st *site.Site
	if req.SiteID != "" {
		var err error
		st, err = s.store.Get(r.Context(), req.SiteID)
		if err == site.ErrNotFound {
			writeError(w, http.StatusNotFound, "site not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(req.CurrentPages) == 0 {
			req.CurrentPages = st.Pages
		}
	}

	raw, message, err := s.provider.Generate(r.Context(), req)
	if err != nil {
		s.logger.Warn("generation failed", interfaces.Field{Key: "site_id", Value: req.SiteID}, interfaces.Field{Key: "error", Value: err.Error()})
		writeJSON(w, http.StatusBadGateway, generate.Response{Error: err.Error()})
		return
	}
	cleaned, err := generate.Clean(raw)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, generate.Response{Error: err.Error()})
		return
	}

	if st != nil {
		// The provider call can run for a while; pages saved by other writers
		// in the meantime (a visual-editor save, a concurrent PUT) must not
		// be lost. Merge into a fresh read of the site, not the snapshot
		// taken before generation started.
		st, err = s.store.Get(r.Context(), req.SiteID)
		if err == site.ErrNotFound {
			writeError(w, http.StatusNotFound, "site not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		previous := st.Pages
		st.Pages = st.Pages.Merge(cleaned)
		changes := site.Summarize(previous, st.Pages)

		now := time.Now().UTC()
		if desc := sanitize.CleanUserText(req.Description); desc != "" {
			st.Messages = append(st.Messages, site.Message{Role: "user", Content: desc, Timestamp: now})
		}
		st.Messages = append(st.Messages, site.Message{Role: "assistant", Content: message, Timestamp: now, Changes: changes})
		if _, err := s.store.Save(r.Context(), st); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		for page, missing := range st.Pages.MissingLinks() {
			s.logger.Warn("generated page links to missing pages",
				interfaces.Field{Key: "site_id", Value: st.ID},
				interfaces.Field{Key: "page", Value: page},
				interfaces.Field{Key: "missing", Value: missing})
		}
	}

	writeJSON(w, http.StatusOK, generate.Response{
		Success:        true,
		WebsiteContent: cleaned,
		Message:        message,
	})
}

// Pages

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "page name is required")
		return
	}
	body.Name = sanitize.CleanUserText(body.Name)
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "page name is required")
		return
	}

	st, err := s.store.Get(r.Context(), id)
	if err == site.ErrNotFound {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	key, err := st.Pages.CreateBlankPage(body.Name)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if _, err := s.store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("added blank page", interfaces.Field{Key: "site_id", Value: id}, interfaces.Field{Key: "page", Value: key})
	writeJSON(w, http.StatusCreated, map[string]any{"page": key, "site": st})
}

// Previews

func (s *Server) handleStagePreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Page string       `json:"page"`
		Mode preview.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.Mode == "" {
		body.Mode = preview.ModeAI
	}

	st, err := s.store.Get(r.Context(), id)
	if err == site.ErrNotFound {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	page := st.Pages.ResolveCurrent(body.Page)
	raw, ok := st.Pages[page]
	if !ok {
		writeError(w, http.StatusNotFound, "site has no previewable pages")
		return
	}

	doc := s.previews.Stage(id, page, raw, body.Mode)

	if s.capturer != nil && s.cfg.ListenAddr != "" {
		go func() {
			url := fmt.Sprintf("http://localhost%s/preview/%s", s.cfg.ListenAddr, doc.Token)
			if _, err := s.capturer.Capture(context.Background(), id, url); err != nil {
				s.logger.Warn("capturing thumbnail", interfaces.Field{Key: "site_id", Value: id}, interfaces.Field{Key: "error", Value: err.Error()})
			}
		}()
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token":    doc.Token,
		"page":     doc.Page,
		"mode":     doc.Mode,
		"revision": doc.Revision,
		"url":      "/preview/" + doc.Token,
	})
}

func (s *Server) handleServePreview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	doc, ok := s.previews.Get(token)
	if !ok {
		writeError(w, http.StatusNotFound, "preview not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.HTML))
}

// Editor control plane

func (s *Server) handleEditorCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess := s.session(id)
	if sess == nil {
		writeError(w, http.StatusConflict, "no live editor session for site")
		return
	}

	var cmd protocol.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil || cmd.Type == "" {
		writeError(w, http.StatusBadRequest, "invalid command")
		return
	}

	if err := sess.Send(cmd); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (s *Server) handleEditorSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess := s.session(id)
	if sess == nil {
		writeError(w, http.StatusConflict, "no live editor session for site")
		return
	}
	if err := sess.RequestSave(); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "save requested"})
}

func (s *Server) handleEditorSwitchPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Page string `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Page == "" {
		writeError(w, http.StatusBadRequest, "page is required")
		return
	}

	sess := s.session(id)
	if sess == nil {
		writeError(w, http.StatusConflict, "no live editor session for site")
		return
	}

	if err := sess.SwitchPage(r.Context(), body.Page); err != nil {
		s.logger.Warn("page switch failed", interfaces.Field{Key: "site_id", Value: id}, interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": sess.CurrentPage()})
}

// Deployment

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	var body struct {
		SiteID string `json:"siteId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SiteID == "" {
		writeError(w, http.StatusBadRequest, "siteId is required")
		return
	}

	st, err := s.store.Get(r.Context(), body.SiteID)
	if err == site.ErrNotFound {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Deployment itself is delegated to the named provider out of band; the
	// builder only records the handoff.
	st.Status = site.StatusDeployed
	st.PreviewURL = fmt.Sprintf("https://%s.avallon.app", st.Slug)
	if _, err := s.store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("deployment handed off",
		interfaces.Field{Key: "site_id", Value: st.ID},
		interfaces.Field{Key: "provider", Value: providerName})
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": string(st.Status),
		"url":    st.PreviewURL,
	})
}

// WebSocket editor relay

func (s *Server) handleEditorWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := s.store.Get(r.Context(), id)
	if err == site.ErrNotFound {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", interfaces.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(cmd protocol.Command) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(cmd)
	}

	sess := editor.NewSession(editor.SessionConfig{
		Logger: s.logger.With(interfaces.Field{Key: "site_id", Value: id}),
		HasPage: func(page string) bool {
			cur, err := s.store.Get(context.Background(), id)
			if err != nil {
				return false
			}
			_, ok := cur.Pages[page]
			return ok
		},
		SavePage: func(ctx context.Context, page, html string) error {
			return s.savePage(ctx, id, page, html)
		},
		Send: send,
	}, st.Pages.ResolveCurrent(""))

	if !s.registerSession(id, sess) {
		_ = conn.WriteJSON(map[string]string{"error": "an editor session is already live for this site"})
		return
	}
	defer s.unregisterSession(id)

	s.logger.Info("editor session opened", interfaces.Field{Key: "site_id", Value: id}, interfaces.Field{Key: "page", Value: sess.CurrentPage()})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("editor session closed", interfaces.Field{Key: "site_id", Value: id})
			return
		}
		sess.HandleRaw(r.Context(), raw)
	}
}

// savePage writes one scrubbed page into the site and persists. Auto-save
// after a visual edit lands here.
func (s *Server) savePage(ctx context.Context, siteID, page, html string) error {
	st, err := s.store.Get(ctx, siteID)
	if err != nil {
		return err
	}
	st.Pages = st.Pages.Merge(pages.Collection{page: html})
	_, err = s.store.Save(ctx, st)
	return err
}

func (s *Server) session(siteID string) *editor.Session {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return s.sessions[siteID]
}

func (s *Server) registerSession(siteID string, sess *editor.Session) bool {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if _, exists := s.sessions[siteID]; exists {
		return false
	}
	s.sessions[siteID] = sess
	return true
}

func (s *Server) unregisterSession(siteID string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, siteID)
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
