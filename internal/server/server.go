// package server contains the routing, middleware and song actions of the catalog HTTP service
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/web"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, panic recovery, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own their routes.
// Implementations handle specific endpoints (cover images, login).
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

// Server is the catalog HTTP service.
type Server struct {
	config   shared.ServerConfig
	router   Router
	songs    *SongActions
	lists    *ListActions
	verifier Verifier
	sessions SessionStore
	auth     shared.AuthConfig
	html     Serializer
	logger   *log.Logger
}

// Options holds the optional parts of a [Server]. Zero values leave them out.
type Options struct {
	Lists    ListCatalog       // Serves the custom list routes
	Sessions SessionStore      // Resolves the session cookie
	Login    shared.AuthConfig // Serves the login routes when enabled; needs Sessions
}

// guard names the credential a route requires.
type guard int

const (
	open guard = iota
	apiToken
	session
)

// New builds a Server with every route registered.
func New(config shared.ServerConfig, c Catalog, verifier Verifier, logger *log.Logger, opts Options) (*Server, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   config,
		router:   NewBasicRouter(),
		songs:    NewSongActions(c),
		verifier: verifier,
		sessions: opts.Sessions,
		auth:     opts.Login,
		html:     NewHTMLSerializer(renderer),
		logger:   shared.WithLogger(logger, "component", "server"),
	}
	if opts.Lists != nil {
		s.lists = NewListActions(opts.Lists)
	}

	s.router.Use(Recovery(s.logger), Logging(s.logger))
	if s.sessions != nil {
		s.router.Use(LoadSession(s.sessions, s.logger))
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	const (
		id   = "{id:[^/.]+}"
		list = "{list:[^/]+}"
		hash = "{song_hash:[^/.]+}"
	)

	s.handle(http.MethodGet, open, Health, "/health")

	// ".json" forms first so the suffix is never captured as part of an id.
	s.handle(http.MethodGet, open, s.songs.Index, "/songs.json", "/songs")
	s.handle(http.MethodPost, apiToken, s.songs.Batch, "/songs/batch.json", "/songs/batch")
	s.handle(http.MethodPost, apiToken, s.songs.Create, "/songs.json", "/songs")
	s.handle(http.MethodGet, open, s.songs.Show, "/songs/"+id+".json", "/songs/"+id)
	s.handle(http.MethodPatch, apiToken, s.songs.Update, "/songs/"+id+".json", "/songs/"+id)
	s.handle(http.MethodPut, apiToken, s.songs.Update, "/songs/"+id+".json", "/songs/"+id)
	s.handle(http.MethodDelete, apiToken, s.songs.Destroy, "/songs/"+id+".json", "/songs/"+id)

	if s.lists != nil {
		entry := "/custom/list/" + list + "/" + hash
		s.handle(http.MethodGet, open, s.lists.Index, "/custom/lists.json", "/custom/lists")
		s.handle(http.MethodPut, session, s.lists.Add, entry+".json", entry)
		s.handle(http.MethodDelete, session, s.lists.Remove, entry+".json", entry)
		s.handle(http.MethodGet, open, s.lists.Show, "/custom/list/"+list+".json", "/custom/list/"+list)
		s.handle(http.MethodGet, session, s.lists.Me, "/me.json", "/me")
	}

	if s.sessions != nil && s.auth.Enabled() {
		s.router.Handler(NewLoginHandler(s.auth, s.sessions, s.html, s.logger))
	}

	s.router.Handler(NewCoverHandler(s.config.CoversDir))
}

func (s *Server) handle(method string, g guard, action Action, paths ...string) {
	h := dispatch(action, s.html, s.logger)
	switch g {
	case apiToken:
		h = RequireToken(s.verifier, s.html, s.logger)(h)
	case session:
		h = RequireSession(s.html, s.logger)(h)
	}
	for _, p := range paths {
		s.router.Handle(method, p, h)
	}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
