// Package httpapi serves proofreading over a websocket, plus health and
// metrics endpoints, on a chi router.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/proofread"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Runner runs one correction into a sink. *proofread.Relay implements it.
type Runner interface {
	Run(ctx context.Context, req proofread.Request, sink proofread.Sink, opts ...proofread.RunOption) proofread.Result
}

// Catalog localizes messages and maps client language codes to supported
// languages. *i18n.Catalog implements it.
type Catalog interface {
	proofread.Catalog
	Match(code string) (proofread.Language, bool)
}

var _ Runner = (*proofread.Relay)(nil)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 120 * time.Second
	pingInterval = 30 * time.Second
	maxFrameSize = 64 << 10
)

// Server is the HTTP front-end.
type Server struct {
	runner         Runner
	catalog        Catalog
	maxWords       int
	metrics        http.Handler
	logger         *slog.Logger
	allowAnyOrigin bool
	upgrader       websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Nil keeps the default discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxWords sets the input word limit. Zero disables it.
func WithMaxWords(n int) Option {
	return func(s *Server) { s.maxWords = n }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithAllowAnyOrigin accepts websocket upgrades from any browser origin.
func WithAllowAnyOrigin(allow bool) Option {
	return func(s *Server) { s.allowAnyOrigin = allow }
}

// New creates a Server.
func New(runner Runner, catalog Catalog, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		catalog:  catalog,
		maxWords: proofread.DefaultMaxWords,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/ws", s.handleWS)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// checkOrigin allows non-browser clients and same-origin browsers.
func (s *Server) checkOrigin(r *http.Request) bool {
	if s.allowAnyOrigin {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
