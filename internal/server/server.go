// Package server exposes the tool surface over HTTP alongside health and
// metrics endpoints.
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

	"github.com/gin-gonic/gin"

	"github.com/ayalabs/ayabridge/internal/config"
	"github.com/ayalabs/ayabridge/internal/idgen"
	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/metrics"
	"github.com/ayalabs/ayabridge/internal/tools"
)

// Server wraps the HTTP server and the shared tool registry.
type Server struct {
	cfg      *config.Config
	registry *tools.Registry
	router   *gin.Engine
	httpSrv  *http.Server
	logger   *slog.Logger
}

// New creates the HTTP server around an already wired registry.
func New(cfg *config.Config, registry *tools.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.New(cfg.LogLevel, cfg.LogFormat, false)
	}
	s := &Server{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = gin.New()

	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error("panic in HTTP handler", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	s.router.Use(metrics.Middleware())
	s.router.Use(s.requestIDMiddleware())

	s.router.GET("/health", s.healthHandler)
	s.router.GET("/metrics", metrics.Handler())
	s.router.GET("/tools", s.toolsHandler)
	s.router.POST("/invoke", s.invokeHandler)
}

// requestIDMiddleware tags request contexts so log lines correlate.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = idgen.WithPrefix("req_")
		}
		ctx := logging.WithInvocationID(c.Request.Context(), id)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ayabridge",
		"version": "1.0.0",
	})
}

func (s *Server) toolsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.registry.Descriptors()})
}

type invokeRequest struct {
	Tool      string     `json:"tool" binding:"required"`
	Arguments tools.Args `json:"arguments"`
}

// invokeHandler runs one tool. Envelope failures are HTTP 200 with
// success=false; only transport-level problems map to HTTP errors.
func (s *Server) invokeHandler(c *gin.Context) {
	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if req.Arguments == nil {
		req.Arguments = tools.Args{}
	}

	resp := s.registry.Dispatch(c.Request.Context(), req.Tool, req.Arguments)
	c.JSON(http.StatusOK, resp)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until SIGINT/SIGTERM, then drains connections.
func (s *Server) Run() error {
	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "port", s.cfg.Port)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
