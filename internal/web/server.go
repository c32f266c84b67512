// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package web exposes the HTTP API: session-cookie auth and per-user notes.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/quillnotes/quill/internal/auth"
	"github.com/quillnotes/quill/internal/config"
	"github.com/quillnotes/quill/internal/notes"
	"github.com/quillnotes/quill/internal/observability"
)

// Server is the API server.
type Server struct {
	addr       string
	production bool
	cookie     auth.CookieAttributes

	auth     *auth.Service
	sessions *auth.SessionManager
	notes    *notes.Service
	metrics  *observability.Metrics
	logger   *slog.Logger

	engine     *gin.Engine
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer wires the HTTP layer. The session cookie's transport
// attributes are decided once from the deployment shape; they do not vary
// per request.
func NewServer(
	cfg *config.Config,
	authSvc *auth.Service,
	sessions *auth.SessionManager,
	notesSvc *notes.Service,
	metrics *observability.Metrics,
	logger *slog.Logger,
) (*Server, error) {
	if authSvc == nil || sessions == nil || notesSvc == nil {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("auth service, session manager, and notes service are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:       cfg.ListenAddr,
		production: cfg.IsProduction(),
		cookie:     auth.DecideCookie(cfg.IsProduction(), cfg.FrontendOrigin, cfg.PublicOrigin, cfg.SessionMaxAge),
		auth:       authSvc,
		sessions:   sessions,
		notes:      notesSvc,
		metrics:    metrics,
		logger:     logger,
	}

	if s.production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(securityHeaders())
	engine.Use(requestMetrics(metrics))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.engine = engine
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "quill", "status": "ok"})
	})
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.handleRegister)
	authGroup.POST("/login", s.handleLogin)
	authGroup.POST("/logout", s.handleLogout)
	authGroup.GET("/me", s.RequireSession(), s.handleMe)

	notesGroup := api.Group("/notes", s.RequireSession())
	notesGroup.POST("", s.handleCreateNote)
	notesGroup.GET("", s.handleListNotes)
	notesGroup.GET("/:id", s.handleGetNote)
	notesGroup.PATCH("/:id", s.handleUpdateNote)
	notesGroup.DELETE("/:id", s.handleDeleteNote)
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving. The returned channel receives server failures and
// is closed on graceful shutdown; callers should monitor it.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown api server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the bound address, or "" when not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
