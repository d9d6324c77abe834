// Package api serves the inventory over HTTP as JSON under /api.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/secure"

	"github.com/mesh-intelligence/binlid/internal/metrics"
	"github.com/mesh-intelligence/binlid/pkg/types"
)

// DefaultBodyLimit caps request bodies when Options.BodyLimit is zero.
const DefaultBodyLimit = 1 << 20

// Options tunes the router.
type Options struct {
	// CORSOrigins is a comma-separated list of allowed origins. Empty
	// allows every origin.
	CORSOrigins string
	// RateLimit is the per-IP request budget per minute. Zero disables it.
	RateLimit int
	// BodyLimit caps request bodies in bytes.
	BodyLimit int64
	// Development relaxes the security headers for plain-HTTP local use.
	Development bool
}

// NewRouter returns the HTTP handler for inv. When m is nil no metrics are
// collected and /metrics is not mounted.
//
// Middleware order (outermost first): request id, logging, recovery,
// metrics, real IP, rate limit, CORS, body limit, timeout, security headers.
func NewRouter(inv types.Inventory, log logrus.FieldLogger, m *metrics.Metrics, opts Options) http.Handler {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}
	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		IsDevelopment:         opts.Development,
	})

	r := chi.NewRouter()
	r.Use(requestID, requestLogger(log), recovery(log))
	if m != nil {
		r.Use(instrument(m))
	}
	r.Use(middleware.RealIP)
	if opts.RateLimit > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
	}
	r.Use(
		corsHandler(opts.CORSOrigins),
		bodyLimit(opts.BodyLimit),
		middleware.Timeout(30*time.Second),
		sec.Handler,
	)

	h := &handlers{inv: inv, log: log}
	r.Get("/healthz", h.health)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/spaces", func(r chi.Router) {
			r.Get("/", h.listSpaces)
			r.Post("/", h.createSpace)
		})
		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.listItems)
			r.Post("/", h.createItem)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getItem)
				r.Get("/moves", h.listMoves)
				r.Post("/move", h.moveItem)
			})
		})
		r.Get("/search", h.search)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// NewServer returns an *http.Server with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, log logrus.FieldLogger) error {
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
