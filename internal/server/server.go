// Package server wires handlers, middleware, and routes, and owns the HTTP
// listener lifecycle. It is the composition root: every dependency chain
// (DB → repository → service → handler) is assembled in New, and nothing
// outside this package knows how the pieces fit together.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/script-shelf/internal/auth"
	"github.com/sakif/script-shelf/internal/handler"
	"github.com/sakif/script-shelf/internal/middleware"
	sqliteRepo "github.com/sakif/script-shelf/internal/repository/sqlite"
	"github.com/sakif/script-shelf/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string

	// GitHub OAuth sign-in is optional; leave the client ID empty to
	// disable the /auth/github routes.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server is the HTTP server plus the resources it owns. The database
// connection belongs to the server and is closed during shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, builds the dependency graph, and registers all
// routes. The caller gets a ready-to-start server or an error — never a
// half-wired one.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes assembles middleware, services, and the route table.
//
// ROUTE STRUCTURE:
//
//	POST   /api/users/register              register (public)
//	POST   /api/users/login                 login (public)
//	GET    /auth/github/login               OAuth redirect (public, optional)
//	GET    /auth/github/callback            OAuth completion (public, optional)
//	GET    /api/users/profile               profile            ┐
//	PUT    /api/users/profile               change email       │
//	PUT    /api/users/password              change password    │
//	GET/POST        /api/snippets           list / create      │
//	PUT/DELETE      /api/snippets/{id}      update / delete    │ X-Auth-Token
//	POST   /api/snippets/{id}/favorite      toggle favorite    │ required
//	GET    /api/snippets/{id}/versions      version history    │
//	POST   /api/snippets/{id}/tags          attach tag         │
//	DELETE /api/snippets/{id}/tags/{tagID}  detach tag         │
//	GET/POST        /api/folders            list / create      │
//	DELETE /api/folders/{id}                delete folder      │
//	GET    /api/tags                        list tags          ┘
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	users := sqliteRepo.NewUserRepo(s.db)
	snippets := sqliteRepo.NewSnippetRepo(s.db)
	folders := sqliteRepo.NewFolderRepo(s.db)
	tags := sqliteRepo.NewTagRepo(s.db)

	authService := service.NewAuthService(users, tokens, passwords, s.logger)
	snippetService := service.NewSnippetService(snippets, s.logger)
	folderService := service.NewFolderService(folders, s.logger)
	tagService := service.NewTagService(tags, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	folderHandler := handler.NewFolderHandler(folderService, s.logger)
	tagHandler := handler.NewTagHandler(tagService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		// Public: the only two routes reachable without a token.
		r.Post("/users/register", authHandler.HandleRegister)
		r.Post("/users/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/users/profile", authHandler.HandleGetProfile)
			r.Put("/users/profile", authHandler.HandleUpdateProfile)
			r.Put("/users/password", authHandler.HandleChangePassword)

			r.Get("/snippets", snippetHandler.HandleList)
			r.Post("/snippets", snippetHandler.HandleCreate)
			r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
			r.Post("/snippets/{id}/favorite", snippetHandler.HandleToggleFavorite)
			r.Get("/snippets/{id}/versions", snippetHandler.HandleListVersions)

			r.Post("/snippets/{id}/tags", tagHandler.HandleAttach)
			r.Delete("/snippets/{id}/tags/{tagID}", tagHandler.HandleDetach)
			r.Get("/tags", tagHandler.HandleList)

			r.Get("/folders", folderHandler.HandleList)
			r.Post("/folders", folderHandler.HandleCreate)
			r.Delete("/folders/{id}", folderHandler.HandleDelete)
		})
	})

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	return nil
}

// Handler exposes the router, mainly for httptest-based tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// shutdown path. Tests use this; Start handles it itself.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up to
// 30 seconds, close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
