package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kjannette/spimex-view/internal/metrics"
	"github.com/kjannette/spimex-view/internal/notifications"
	"github.com/kjannette/spimex-view/internal/session"
	"github.com/kjannette/spimex-view/internal/view"
)

const sessionCookie = "view_session"

// Pinger reports whether the trading API is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Sessions *session.Store
	Upstream Pinger
	Metrics  *metrics.Metrics
	Alerts   *notifications.Sender
}

type Server struct {
	sessions *session.Store
	upstream Pinger
	metrics  *metrics.Metrics
	alerts   *notifications.Sender

	handler    http.Handler
	httpServer *http.Server
}

func NewServer(d Deps, addr, corsOrigin string) *Server {
	s := &Server{
		sessions: d.Sessions,
		upstream: d.Upstream,
		metrics:  d.Metrics,
		alerts:   d.Alerts,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "text/html", "text/css", "application/json"))

	r.Get("/", s.handlePage)
	r.Route("/controls/{control}", func(r chi.Router) {
		r.Get("/", s.handleControl)
		r.Post("/click", s.handleClick)
	})
	r.Get("/regions/{region}", s.handleRegion)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(view.StaticFS()))))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	s.handler = corsMiddleware(r, corsOrigin)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Start() error {
	slog.Info("view server started", "url", "http://localhost"+s.httpServer.Addr)
	slog.Info("health check", "url", "http://localhost"+s.httpServer.Addr+"/health")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, HX-Request, HX-Target, HX-Current-URL")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(html))
}
