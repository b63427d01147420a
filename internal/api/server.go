package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"StockPredictor/internal/model"

	"github.com/gin-gonic/gin"
)

// Version is reported by the service banner.
const Version = "1.0.0"

// Analyzer runs the stock analysis pipeline for one symbol.
type Analyzer interface {
	Collect(ctx context.Context, symbol string) (*model.StockAnalysis, error)
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	Environment    string
	Provider       string
	Debug          bool
}

// Server exposes the analysis pipeline over HTTP.
type Server struct {
	analyzer Analyzer
	opts     Options
	engine   *gin.Engine
	now      func() time.Time
}

// NewServer creates a Server with routes and middleware registered.
func NewServer(analyzer Analyzer, opts Options) *Server {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{analyzer: analyzer, opts: opts, now: time.Now}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors(opts.AllowedOrigins))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
	s.RegisterRoutes(r)
	s.engine = r
	return s
}

// RegisterRoutes mounts the service endpoints.
func (s *Server) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/stock/:symbol", s.handleStock)
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
