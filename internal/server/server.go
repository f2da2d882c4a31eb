// Package server wires handlers, middleware and routes, and runs the HTTP
// server with graceful shutdown.
//
// DEPENDENCY FLOW:
//
//	cmd/server builds:  config → jsonfile.DB, session.Store, DiscordProvider, StateSigner
//	server.New builds:  services → handlers → routes
//
// All wiring happens here (the composition root); handlers never build
// their own dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/aptx/internal/auth"
	"github.com/sakif/aptx/internal/handler"
	"github.com/sakif/aptx/internal/middleware"
	"github.com/sakif/aptx/internal/repository/jsonfile"
	"github.com/sakif/aptx/internal/service"
	"github.com/sakif/aptx/internal/session"
)

const shutdownTimeout = 30 * time.Second

// Config holds the server settings that are not dependencies.
type Config struct {
	Addr         string
	StaticDir    string
	CookieSecure bool
}

// Deps are the long-lived dependencies built by main. Tests swap Provider
// for a fake Discord.
type Deps struct {
	DB       *jsonfile.DB
	Sessions session.Store
	Provider handler.OAuthProvider
	States   handler.StateSigner
}

// Server is the HTTP server and its router.
type Server struct {
	router *chi.Mux
	config Config
	deps   Deps
	logger *slog.Logger
}

func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		deps:   deps,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
// GET        /                    → index.html
// GET        /public/*            → static files
// GET        /auth/discord        → redirect to Discord
// GET        /auth/callback       → finish login
// GET        /api/user            → caller profile              [auth]
// GET, POST  /api/logout          → end session
// GET        /api/stats           → user and post counts
// GET        /api/creators        → creators
// GET        /api/supporters      → supporters
// GET        /api/posts           → all posts, by title
// POST       /api/posts           → create post                 [auth]
// GET        /api/posts/{id}      → one post
// PUT        /api/posts/{id}      → edit own post               [auth]
// DELETE     /api/posts/{id}      → delete own post + comments  [auth]
// POST       /api/comments        → create comment              [auth]
// GET        /api/comments/{postId} → comments of a post
//
// MIDDLEWARE ORDER:
// RequestID and RealIP run first so the logger sees both. The session
// resolver runs last; RequireSession on the [auth] group depends on it.
func (s *Server) setupRoutes() {
	db := s.deps.DB
	users, posts, comments, site := db.Users(), db.Posts(), db.Comments(), db.Site()

	authService := service.NewAuthService(users, site, s.deps.Sessions, s.logger)
	postService := service.NewPostService(posts, comments, s.logger)
	commentService := service.NewCommentService(comments, s.logger)
	siteService := service.NewSiteService(users, posts, site)

	pages := handler.NewPageHandler(s.config.StaticDir, s.logger)
	authHandler := handler.NewAuthHandler(s.deps.Provider, s.deps.States, authService, pages, s.config.CookieSecure, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	siteHandler := handler.NewSiteHandler(siteService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.SetHeader("Access-Control-Allow-Origin", "*"))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(auth.Sessions(s.deps.Sessions, s.logger))

	// set before Route so the /api subrouter inherits them
	s.router.NotFound(pages.HandleNotFound)
	s.router.MethodNotAllowed(pages.HandleMethodNotAllowed)

	s.router.Get("/", pages.HandleIndex)
	s.router.Method(http.MethodGet, "/public/*", pages.Static("/public/"))

	s.router.Get("/auth/discord", authHandler.HandleLogin)
	s.router.Get("/auth/callback", authHandler.HandleCallback)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/stats", siteHandler.HandleStats)
		r.Get("/creators", siteHandler.HandleCreators)
		r.Get("/supporters", siteHandler.HandleSupporters)

		r.Get("/logout", authHandler.HandleLogout)
		r.Post("/logout", authHandler.HandleLogout)

		r.Get("/posts", postHandler.HandleList)
		r.Get("/posts/{id}", postHandler.HandleGet)
		r.Get("/comments/{postId}", commentHandler.HandleListByPost)
		// An empty id still answers in JSON: 404 for a post, [] for comments.
		r.Get("/posts/", postHandler.HandleGet)
		r.Get("/comments/", commentHandler.HandleListByPost)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)

			r.Get("/user", authHandler.HandleUser)
			r.Post("/posts", postHandler.HandleCreate)
			r.Put("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Put("/posts/", postHandler.HandleUpdate)
			r.Delete("/posts/", postHandler.HandleDelete)
			r.Post("/comments", commentHandler.HandleCreate)
		})
	})
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests
// for up to 30 seconds.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.config.Addr),
			slog.String("data_dir", s.deps.DB.Dir()),
			slog.String("static_dir", s.config.StaticDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
