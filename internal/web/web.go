// Package web exposes the export pipeline over HTTP: calendar downloads,
// text previews and a pre-rendered feed cache refreshed on a cron schedule.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HD-Brody/team-project-sub000/internal/config"
	"github.com/HD-Brody/team-project-sub000/internal/export"
	applog "github.com/HD-Brody/team-project-sub000/internal/log"
	"github.com/HD-Brody/team-project-sub000/internal/model"
	"github.com/HD-Brody/team-project-sub000/internal/timeutil"
)

// feedCacheTTL is how long a pre-rendered feed stays servable without a
// refresh. The cron refresher normally re-renders well before expiry.
const feedCacheTTL = time.Hour

// Server wires HTTP handlers around an Exporter.
type Server struct {
	cfg      *config.Config
	exporter *export.Exporter
	mux      *http.ServeMux

	// feedCache holds pre-rendered artifacts for the feeds named in the
	// config, keyed by feed ID.
	feedMu    sync.RWMutex
	feedCache map[string]cachedFeed
}

type cachedFeed struct {
	resp      *model.ExportResponse
	updatedAt time.Time
}

// NewServer constructs a Server.
func NewServer(cfg *config.Config, exporter *export.Exporter) *Server {
	s := &Server{
		cfg:       cfg,
		exporter:  exporter,
		mux:       http.NewServeMux(),
		feedCache: make(map[string]cachedFeed),
	}
	s.registerRoutes()
	return s
}

// Handler returns the server's http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		applog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/export", s.handleExport)
	s.mux.HandleFunc("/api/preview", s.handlePreview)
	s.mux.HandleFunc("/feeds/", s.handleFeed)
}

// Run serves until ctx is canceled, then shuts down gracefully. The cron
// refresher for configured feeds runs alongside.
func (s *Server) Run(ctx context.Context) error {
	c := cron.New()
	if len(s.cfg.Feeds) > 0 {
		if _, err := c.AddFunc(s.cfg.RefreshCron, func() { s.RefreshFeeds(context.Background()) }); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.RefreshCron, err)
		}
		c.Start()
		defer c.Stop()
		// Warm the cache once at startup so the first feed hit is fast.
		go s.RefreshFeeds(ctx)
	}

	srv := &http.Server{Addr: s.cfg.Listen, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		applog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// RefreshFeeds re-renders every configured feed into the cache. Individual
// feed failures are logged and skipped; one bad feed never blocks the rest.
func (s *Server) RefreshFeeds(ctx context.Context) {
	for _, feed := range s.cfg.Feeds {
		req := model.ExportRequest{
			UserID:       feed.UserID,
			TimezoneID:   feed.Timezone,
			CourseIDs:    feed.Courses,
			FilenameHint: feed.FilenameHint,
		}
		resp, err := s.exporter.ExportCalendar(ctx, req)
		if err != nil {
			applog.Error("feed refresh failed", err, "feed", feed.ID)
			continue
		}
		s.feedMu.Lock()
		s.feedCache[feed.ID] = cachedFeed{resp: resp, updatedAt: time.Now()}
		s.feedMu.Unlock()
		applog.Info("feed refreshed", "feed", feed.ID, "events", resp.EventCount)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleExport runs a live export.
//
// GET /api/export?user=u1&tz=America/Toronto&courses=c1,c2&from=RFC3339&to=RFC3339&hint=fall
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.requestFromQuery(w, r)
	if !ok {
		return
	}

	resp, err := s.exporter.ExportCalendar(r.Context(), req)
	if err != nil {
		writeExportError(w, err)
		return
	}
	serveArtifact(w, resp)
}

// handleFeed serves a pre-rendered feed by ID: GET /feeds/<id>.ics
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/feeds/")
	id = strings.TrimSuffix(id, ".ics")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	s.feedMu.RLock()
	cached, ok := s.feedCache[id]
	s.feedMu.RUnlock()
	if ok && time.Since(cached.updatedAt) < feedCacheTTL {
		serveArtifact(w, cached.resp)
		return
	}

	feed, ok := s.feedConfig(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	resp, err := s.exporter.ExportCalendar(r.Context(), model.ExportRequest{
		UserID:       feed.UserID,
		TimezoneID:   feed.Timezone,
		CourseIDs:    feed.Courses,
		FilenameHint: feed.FilenameHint,
	})
	if err != nil {
		writeExportError(w, err)
		return
	}
	s.feedMu.Lock()
	s.feedCache[id] = cachedFeed{resp: resp, updatedAt: time.Now()}
	s.feedMu.Unlock()
	serveArtifact(w, resp)
}

// previewResponse is the JSON shape for /api/preview.
type previewResponse struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}

// handlePreview renders one-line event summaries.
//
// GET /api/preview?user=u1&tz=UTC&type=ASSESSMENT
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, ok := s.requestFromQuery(w, r)
	if !ok {
		return
	}
	typ := model.PreviewType(strings.ToUpper(r.URL.Query().Get("type")))
	switch typ {
	case "", model.PreviewAll, model.PreviewAssessment, model.PreviewScheduleEvent:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown preview type %q", typ))
		return
	}

	lines, err := s.exporter.GeneratePreviewTexts(r.Context(), req, typ)
	if err != nil {
		writeExportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{Lines: lines, Count: len(lines)})
}

// requestFromQuery builds an ExportRequest from common query parameters,
// writing a 400 and returning ok=false on malformed input.
func (s *Server) requestFromQuery(w http.ResponseWriter, r *http.Request) (model.ExportRequest, bool) {
	q := r.URL.Query()

	req := model.ExportRequest{
		UserID:       q.Get("user"),
		TimezoneID:   q.Get("tz"),
		FilenameHint: q.Get("hint"),
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing user parameter")
		return model.ExportRequest{}, false
	}
	if req.TimezoneID == "" {
		req.TimezoneID = s.cfg.Timezone
	}
	if req.FilenameHint == "" {
		req.FilenameHint = req.UserID + "-calendar"
	}
	if courses := q.Get("courses"); courses != "" {
		for _, id := range strings.Split(courses, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.CourseIDs = append(req.CourseIDs, id)
			}
		}
	}

	// Window bounds are RFC3339; absent means unbounded.
	for _, bound := range []struct {
		param string
		dst   *time.Time
	}{
		{"from", &req.WindowStart},
		{"to", &req.WindowEnd},
	} {
		raw := q.Get(bound.param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed %s instant %q", bound.param, raw))
			return model.ExportRequest{}, false
		}
		*bound.dst = t
	}
	return req, true
}

func (s *Server) feedConfig(id string) (config.FeedConfig, bool) {
	for _, feed := range s.cfg.Feeds {
		if feed.ID == id {
			return feed, true
		}
	}
	return config.FeedConfig{}, false
}

func serveArtifact(w http.ResponseWriter, resp *model.ExportResponse) {
	w.Header().Set("Content-Type", resp.Artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.Artifact.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Artifact.Payload)
}

// writeExportError maps pipeline failures onto HTTP statuses: bad zone is
// the caller's fault, an empty event set is 404, the rest is 500.
func writeExportError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, timeutil.ErrUnsupportedTimezone):
		status = http.StatusBadRequest
	case errors.Is(err, export.ErrNoExportableEvents):
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware guards everything except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="coursecal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Error("response encode failed", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
