// package server contains middleware & handlers for the songcart web service
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songcart/internal/shared"
	"github.com/desertthunder/songcart/internal/web"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, identity resolution, metrics, panic recovery, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the songcart service.
// Implementations handle specific endpoints (health, metrics).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options configures a [Server].
type Options struct {
	Addr        string
	Engine      Engine
	Identity    IdentityProvider // nil resolves identity from the default X-Forwarded-* headers
	Limits      Limits
	Logger      *log.Logger
	Metrics     *Metrics // nil creates a fresh registry
	ReadTimeout time.Duration
}

// Server serves the songcart HTTP interface.
type Server struct {
	router  *BasicRouter
	metrics *Metrics
	logger  *log.Logger
	http    *http.Server
}

// New builds the router, registers every route and prepares the HTTP server.
func New(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("%w: engine", shared.ErrMissingConfig)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	identity := opts.Identity
	if identity == nil {
		identity = NewHeaderIdentity("", "")
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	router := NewBasicRouter()
	router.Use(
		Recoverer(logger),
		metrics.Instrument(),
		RequestLogger(logger),
		IdentityMiddleware(identity),
	)

	songs := NewSongHandler(opts.Engine, renderer, metrics, opts.Limits, logger)
	songs.Register(router)
	router.Handler(&healthHandler{engine: opts.Engine})
	router.Handle(http.MethodGet, "/metrics", metrics.Handler())

	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}

	return &Server{
		router:  router,
		metrics: metrics,
		logger:  logger,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: readTimeout,
			ReadTimeout:       readTimeout,
		},
	}, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// healthHandler reports whether the store is reachable.
type healthHandler struct {
	engine Engine
}

func (h *healthHandler) Routes() []string {
	return []string{"GET /healthz"}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.engine.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "unavailable")
		return
	}
	fmt.Fprintln(w, "ok")
}
