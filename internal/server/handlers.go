package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/events"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/metrics"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/version"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/builds", s.handleBuilds)
	mux.Handle("/__livereload", s.hub)
	if s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}
	mux.Handle("/", s.siteHandler())
	return s.recoverPanics(s.logRequests(mux))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	uptime := time.Since(s.started)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"uptime":  uptime.Truncate(time.Second).String(),
	})
}

type statusResponse struct {
	Building          bool       `json:"building"`
	LiveReloadClients int        `json:"livereload_clients"`
	LastBuild         *buildInfo `json:"last_build,omitempty"`
}

type buildInfo struct {
	BuildID    string `json:"build_id"`
	Trigger    string `json:"trigger"`
	Outcome    string `json:"outcome"`
	Pages      int    `json:"pages"`
	DurationMS int64  `json:"duration_ms"`
	Errors     int    `json:"errors"`
	Warnings   int    `json:"warnings"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	report := s.lastReport
	building := s.building
	s.mu.Unlock()

	resp := statusResponse{
		Building:          building,
		LiveReloadClients: s.hub.Clients(),
	}
	if report != nil {
		resp.LastBuild = &buildInfo{
			BuildID:    report.BuildID,
			Trigger:    report.Trigger,
			Outcome:    string(report.Outcome),
			Pages:      report.Pages,
			DurationMS: report.Duration().Milliseconds(),
			Errors:     len(report.Errors),
			Warnings:   len(report.Warnings),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest,
				map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, 100)
	}

	builds, err := s.journal.RecentBuilds(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError,
			map[string]string{"error": err.Error()})
		return
	}
	out := make([]events.BuildSummary, 0, len(builds))
	for _, b := range builds {
		// Watch events journal without a build id; they are not builds.
		if b.BuildID == "" {
			continue
		}
		out = append(out, b)
	}
	writeJSON(w, http.StatusOK, map[string]any{"builds": out})
}

// siteHandler serves the rendered site, honoring the configured base path.
func (s *Server) siteHandler() http.Handler {
	base := s.cfg.Site.BasePath
	if base == "/" {
		return http.HandlerFunc(s.serveSiteFile)
	}

	prefix := strings.TrimSuffix(base, "/")
	stripped := http.StripPrefix(prefix, http.HandlerFunc(s.serveSiteFile))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/" || r.URL.Path == prefix:
			http.Redirect(w, r, base, http.StatusFound)
		case strings.HasPrefix(r.URL.Path, base):
			stripped.ServeHTTP(w, r)
		default:
			s.serveNotFound(w, r)
		}
	})
}

func (s *Server) serveSiteFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Clean under a rooted path so ".." cannot escape the output dir.
	p := path.Clean("/" + r.URL.Path)
	file := filepath.Join(s.siteDir(), filepath.FromSlash(strings.TrimPrefix(p, "/")))

	fi, err := os.Stat(file)
	if err == nil && fi.IsDir() {
		file = filepath.Join(file, "index.html")
		fi, err = os.Stat(file)
	}
	if err != nil || fi.IsDir() {
		s.serveNotFound(w, r)
		return
	}
	http.ServeFile(w, r, file)
}

// serveNotFound delivers the generated 404 page when a build has produced
// one, falling back to the plain text default.
func (s *Server) serveNotFound(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(s.siteDir(), "404.html"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(data)
}

// statusWriter records the response code for request logging. Flush passes
// through so the livereload stream keeps working behind the middleware.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Debug("request",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(sw.status),
			logfields.RemoteAddr(r.RemoteAddr),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("handler panic",
					logfields.Path(r.URL.Path),
					slog.Any("panic", rec))
				writeJSON(w, http.StatusInternalServerError,
					map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
