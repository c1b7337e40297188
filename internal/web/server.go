package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/repotxt/internal/config"
	"github.com/hpungsan/repotxt/internal/flatten"
	"github.com/hpungsan/repotxt/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the repotxt web UI.
func NewServer(db *sql.DB, cfg *config.Config, fl *flatten.Flattener, logger *slog.Logger, version, bind string, port int) *http.Server {
	if logger == nil {
		logger = logging.Discard()
	}

	// Strip the "templates/" and "static/" prefixes. The embedded paths are
	// fixed at compile time, so these cannot fail.
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("template sub-FS: %v", err))
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static sub-FS: %v", err))
	}

	codeCSS, err := highlightCSS()
	if err != nil {
		panic(fmt.Sprintf("highlight stylesheet: %v", err))
	}

	h := &Handlers{
		db:        db,
		cfg:       cfg,
		flattener: fl,
		renderer:  NewRenderer(templateSub, version, logger),
		logger:    logger,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", h.HandleHome)
	mux.HandleFunc("POST /snapshots", h.HandleFlatten)
	mux.HandleFunc("GET /snapshots", h.HandleList)
	mux.HandleFunc("POST /snapshots/purge", h.HandlePurge)
	mux.HandleFunc("GET /snapshots/{id}", h.HandleDetail)
	mux.HandleFunc("GET /snapshots/{id}/download", h.HandleDownload)
	mux.HandleFunc("DELETE /snapshots/{id}", h.HandleDelete)
	mux.HandleFunc("POST /snapshots/{id}/delete", h.HandleDelete)

	mux.HandleFunc("GET /static/highlight.css", serveCSS(codeCSS))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           securityHeaders(requestLogger(logger, mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serveCSS serves a stylesheet generated at startup.
func serveCSS(css []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(css)
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *slog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("repotxt UI running", "url", "http://"+srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
