package dev

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/hyperdom/internal/build"
	"github.com/vango-dev/hyperdom/internal/config"
	"github.com/vango-dev/hyperdom/internal/errors"
)

// EventsPath serves build notifications as server-sent events.
const EventsPath = "/_hyper/events"

// ServerOptions configures the development server.
type ServerOptions struct {
	Config *config.Config
	Logger *slog.Logger

	// Gatherer is served at /metrics. Nil means the default registry.
	Gatherer prometheus.Gatherer

	// OnBuild is called after every build, initial one included.
	OnBuild func(*build.Result)
}

// Server compiles on change and tells connected pages to reload.
type Server struct {
	config  *config.Config
	options ServerOptions
	logger  *slog.Logger
	builder *build.Builder
	reload  *ReloadServer
	router  chi.Router

	mu       sync.Mutex
	failing  map[string]*errors.Diagnostic
	listener net.Listener
}

// NewServer creates a development server.
func NewServer(options ServerOptions) *Server {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config:  options.Config,
		options: options,
		logger:  logger.With("component", "dev"),
		builder: build.New(options.Config, build.Options{Logger: logger}),
		reload:  NewReloadServer(logger),
		failing: make(map[string]*errors.Diagnostic),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get(s.config.Dev.ReloadPath, s.reload.HandleWebSocket)
	r.Get(EventsPath, s.reload.HandleEvents())
	r.Get(ClientScriptPath, clientScriptHandler(s.config.Dev.ReloadPath))
	r.Get("/_hyper/status", s.handleStatus)

	if s.config.Dev.Metrics {
		gatherer := s.options.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	if s.config.Dev.Static != "" {
		dir := s.config.Dev.Static
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(s.config.Dir(), dir)
		}
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Reload returns the notification hub.
func (s *Server) Reload() *ReloadServer {
	return s.reload
}

// handleStatus reports the files that currently fail to compile.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failing := make([]json.RawMessage, 0, len(s.failing))
	for _, d := range s.failing {
		failing = append(failing, json.RawMessage(d.FormatJSON()))
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"failing": failing})
}

// Rebuild compiles every source and notifies clients.
func (s *Server) Rebuild(ctx context.Context) error {
	res, err := s.builder.Build(ctx)
	if err != nil {
		return err
	}
	s.report(res, nil)
	return nil
}

// HandleChanges compiles changed files, drops the outputs of removed
// ones and notifies clients.
func (s *Server) HandleChanges(ctx context.Context, changes []Change) {
	var (
		files   []string
		removed []string
	)
	for _, c := range changes {
		if c.Removed && !fileExists(c.Path) {
			if err := s.builder.Remove(c.Path); err != nil {
				s.logger.Warn("remove outputs", "file", c.Path, "error", err)
			}
			removed = append(removed, c.Path)
			continue
		}
		files = append(files, c.Path)
	}

	res, err := s.builder.BuildFiles(ctx, files)
	if err != nil {
		s.logger.Error("build", "error", err)
		return
	}
	s.report(res, removed)
}

// report records failures and sends the matching notification.
func (s *Server) report(res *build.Result, removed []string) {
	var changed []string

	s.mu.Lock()
	hadErrors := len(s.failing) > 0
	for _, path := range removed {
		delete(s.failing, path)
		changed = append(changed, path)
	}
	for _, f := range res.Files {
		if f.Err != nil {
			s.failing[f.Source] = errors.FromError(f.Err, nil, "X001")
			continue
		}
		delete(s.failing, f.Source)
		if f.Written {
			changed = append(changed, f.Output)
		}
	}
	var diagnostics []string
	for _, d := range s.failing {
		diagnostics = append(diagnostics, d.FormatJSON())
	}
	s.mu.Unlock()

	for _, f := range res.Failed() {
		errors.Print(os.Stderr, f.Err)
	}

	switch {
	case len(diagnostics) > 0:
		s.reload.NotifyError(diagnostics)
	case hadErrors:
		s.reload.ClearError()
		s.reload.NotifyBuild(changed)
	case len(changed) > 0:
		s.reload.NotifyBuild(changed)
	}

	if s.options.OnBuild != nil {
		s.options.OnBuild(res)
	}
}

// Run builds everything, then serves and rebuilds on change until ctx is
// done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Rebuild(ctx); err != nil {
		return err
	}

	watcher, err := NewWatcher(WatcherConfig{
		Dirs:     s.config.SourceDirs(),
		Excluded: s.config.Excluded,
		Debounce: s.config.DebounceDuration(),
		Logger:   s.logger,
	})
	if err != nil {
		return errors.New("W001").Wrap(err)
	}
	defer watcher.Close()
	watcher.OnChange(func(changes []Change) {
		s.HandleChanges(ctx, changes)
	})

	ln, err := net.Listen("tcp", s.config.DevAddress())
	if err != nil {
		return errors.New("W002").WithDetail("Cannot listen on " + s.config.DevAddress()).Wrap(err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		errc <- watcher.Run(ctx)
	}()
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("dev server listening", "url", "http://"+ln.Addr().String())

	select {
	case <-ctx.Done():
	case err = <-errc:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) && !stderrors.Is(err, context.Canceled) {
			s.logger.Error("dev server stopped", "error", err)
		}
	}

	s.reload.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("W002").Wrap(err)
	}
	return nil
}

// Addr returns the listen address once Run is serving.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
