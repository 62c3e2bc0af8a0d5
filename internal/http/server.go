package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"notesfrais/internal/cache"
	applog "notesfrais/internal/log"
	"notesfrais/internal/ports"
	"notesfrais/internal/render"
	"notesfrais/internal/scan"
	"notesfrais/internal/store"
	appweb "notesfrais/web"
)

const (
	indexTemplate = "index.html"
	formTemplate  = "expense_form"

	requestIDHeader = "X-Request-ID"

	defaultMaxReceiptBytes = 10 << 20
	sessionSweepInterval   = 5 * time.Minute
)

// Deps are the outbound collaborators of the page host. Recorder and
// Publisher are optional.
type Deps struct {
	Lister    ports.ExpenseLister
	Scanner   ports.ReceiptScanner
	Moderator ports.Moderator
	Recorder  ports.ScanRecorder
	Publisher ports.EventPublisher
}

// Options configures the page host. UpstreamURL is the expense API origin:
// new expenses are posted to it and the uploads base is proxied to it.
// UpstreamAuth is the cookie header sent along with proxied requests.
type Options struct {
	Addr            string
	UpstreamURL     string
	UpstreamAuth    string
	Viewer          string
	IsAdmin         bool
	UploadsBase     string
	SessionTTL      time.Duration
	SessionMax      int
	MaxReceiptBytes int64
	RateLimit       int
	Logger          *applog.Logger
}

// Server serves the expense page and its partials.
type Server struct {
	http.Server
	opts      Options
	deps      Deps
	logger    *applog.Logger
	templates *template.Template
	rows      *render.HTML
	upstream  *url.URL

	sessions     *sessions
	cacheManager *cache.Manager
	rateLimiter  *rateLimiter
	security     securityMetrics
	started      time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and mounts every route.
func NewServer(opts Options, deps Deps) (*Server, error) {
	if deps.Lister == nil || deps.Scanner == nil || deps.Moderator == nil {
		return nil, errors.New("lister, scanner and moderator are required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	if opts.UploadsBase == "" {
		opts.UploadsBase = render.DefaultUploadsBase
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.SessionMax <= 0 {
		opts.SessionMax = 500
	}
	if opts.MaxReceiptBytes <= 0 {
		opts.MaxReceiptBytes = defaultMaxReceiptBytes
	}

	var upstream *url.URL
	if opts.UpstreamURL != "" {
		u, err := url.Parse(strings.TrimRight(opts.UpstreamURL, "/"))
		if err != nil {
			return nil, fmt.Errorf("parse upstream URL: %w", err)
		}
		upstream = u
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	rows, err := render.NewHTML(t)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		opts:         opts,
		deps:         deps,
		logger:       logger,
		templates:    t,
		rows:         rows,
		upstream:     upstream,
		cacheManager: cache.NewManager(opts.Logger),
		rateLimiter:  newRateLimiter(opts.RateLimit, time.Minute),
		started:      time.Now(),
	}
	s.sessions = newSessions(opts.SessionMax, opts.SessionTTL, s.newPage, opts.Logger)
	s.cacheManager.Register(s.sessions.cache)

	mux := http.NewServeMux()
	s.routes(mux)
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.withSecurityHeaders(applog.RequestIDMiddleware(s.logger, requestIDOf)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Start launches the background sweepers. Call once before serving.
func (s *Server) Start() {
	s.cacheManager.StartCleanup(sessionSweepInterval)
	go s.rateLimiter.startCleanup(5 * time.Minute)
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	if s.upstream != nil {
		uploads := newUploadsProxy(s.upstream, s.opts.UpstreamAuth, s.logger)
		mux.Handle("GET "+s.opts.UploadsBase, uploads)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/expenses", s.handleTable)
	mux.HandleFunc("POST /ui/expenses/sort/{key}", s.handleSort)
	mux.HandleFunc("POST /ui/expenses/reset", s.handleReset)
	mux.HandleFunc("POST /ui/expenses/reload", s.handleReload)
	mux.HandleFunc("GET /ui/expenses/export.csv", s.handleExportCSV)
	mux.HandleFunc("POST /ui/scan", s.handleScan)
	mux.HandleFunc("POST /admin/expenses/{id}/{action}", s.handleModerate)
}

// newPage builds the state of a freshly opened page.
func (s *Server) newPage(id string) *pageSession {
	logger := s.opts.Logger.With(applog.FieldSessionID, id)
	opts := []scan.Option{scan.WithLogger(logger)}
	if s.deps.Recorder != nil {
		opts = append(opts, scan.WithRecorder(s.deps.Recorder))
	}
	return &pageSession{
		id:    id,
		store: store.New(s.deps.Lister, logger),
		scan:  scan.NewController(s.deps.Scanner, opts...),
	}
}

// Shutdown stops the sweepers and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders tags the request with an ID, rate
// limits mutating requests, sets security headers and logs completion.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		r.Header.Set(requestIDHeader, requestID)

		ctx := r.Context()
		logger := s.logger.With(applog.FieldRequestID, requestID)

		if detectSuspiciousRequest(r, &s.security) {
			logger.WarnContext(ctx, "Suspicious request",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, clientIP,
				"user_agent", r.Header.Get("User-Agent"))
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, &s.security) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Trop de requêtes, réessaie dans une minute.", http.StatusTooManyRequests)
			return
		}

		h := w.Header()
		h.Set(requestIDHeader, requestID)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'; form-action 'self' "+s.formTarget())
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	})
}

// requestIDOf returns the ID withSecurityHeaders assigned to r.
func requestIDOf(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// formTarget is the origin new expenses are submitted to.
func (s *Server) formTarget() string {
	if s.upstream == nil {
		return ""
	}
	return s.upstream.Scheme + "://" + s.upstream.Host
}

// submitURL is the action of the new expense form.
func (s *Server) submitURL() string {
	if s.upstream == nil {
		return "/expenses"
	}
	return s.upstream.String() + "/expenses"
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
