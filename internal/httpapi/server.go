package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"byebye/internal/batch"
	"byebye/internal/catalog"
	"byebye/internal/inventory"
	"byebye/internal/logging"
	"byebye/internal/pricing"
)

const maxBodyBytes = 1 << 20

// Searcher resolves catalog queries.
type Searcher interface {
	Search(ctx context.Context, q catalog.Query) ([]catalog.Candidate, error)
}

// Quoter builds price quotes.
type Quoter interface {
	Quote(ctx context.Context, releaseID int64) (*pricing.Quote, error)
}

// Options holds the listener and policy settings of a Server.
type Options struct {
	Bind          string
	Token         string
	BatchLockPath string
	USDToJPY      float64
}

// Server is the HTTP front end.
type Server struct {
	store    *inventory.Store
	searcher Searcher
	quoter   Quoter
	runner   *batch.Runner
	opts     Options
	logger   *slog.Logger

	handler http.Handler
	server  *http.Server
}

// New wires the routes. Any of searcher, quoter, or runner may be nil, in
// which case the matching routes answer 503.
func New(store *inventory.Store, searcher Searcher, quoter Quoter, runner *batch.Runner, opts Options, logger *slog.Logger) *Server {
	if opts.USDToJPY <= 0 {
		opts.USDToJPY = pricing.DefaultUSDToJPY
	}
	s := &Server{
		store:    store,
		searcher: searcher,
		quoter:   quoter,
		runner:   runner,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "api-server"),
	}
	s.handler = s.routes()
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.auth)

		r.Get("/api/search", s.handleSearch)
		r.Get("/api/releases/{releaseID}/quote", s.handleQuote)

		r.Route("/api/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Route("/{itemID}", func(r chi.Router) {
				r.Get("/", s.handleGetItem)
				r.Patch("/", s.handleUpdateItem)
				r.Delete("/", s.handleDeleteItem)
				r.Get("/captures", s.handleListCaptures)
				r.Post("/captures", s.handleAddCapture)
			})
		})
		r.Delete("/api/captures/{captureID}", s.handleDeleteCapture)

		r.Get("/api/views", s.handleListViews)
		r.Post("/api/views", s.handleSaveView)
		r.Delete("/api/views/{viewID}", s.handleDeleteView)

		r.Post("/api/batch/identify", s.handleBatchIdentify)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeMessage(w, r, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeMessage(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	bind := strings.TrimSpace(s.opts.Bind)
	if bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()
	s.logger.Info("api server listening",
		logging.String(logging.FieldEventType, "api_listening"),
		logging.String("address", listener.Addr().String()),
		logging.Bool("auth", s.opts.Token != ""),
	)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped", logging.String(logging.FieldEventType, "api_stopped"))
	return nil
}
