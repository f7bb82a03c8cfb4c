package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ThatCatDev/modelinspect/internal/session"
)

const (
	sessionCookie = "modelinspect_session"
	sessionTTL    = 12 * time.Hour
	maxSessions   = 256
)

// Server serves the single-page model inspector over HTTP, one session per
// browser.
type Server struct {
	addr     string
	engine   *gin.Engine
	http     *http.Server
	sessions *registry
	log      zerolog.Logger
}

// New creates a Server. Every browser session gets its own controller backed
// by d.
func New(addr string, d session.Daemon, log zerolog.Logger) *Server {
	log = log.With().Str("component", "web").Logger()
	s := &Server{
		addr: addr,
		sessions: newRegistry(func(n session.Notifier) *session.Controller {
			return session.New(d, n, log)
		}, sessionTTL, maxSessions),
		log: log,
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.SetHTMLTemplate(pageTemplate)
	s.registerRoutes()

	s.http = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", health)
	s.engine.GET("/", s.index)
	s.engine.POST("/submit", s.submit)

	apiGroup := s.engine.Group("/api", cors.Default())
	apiGroup.GET("/state", s.state)
	apiGroup.GET("/models", s.models)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("model inspector listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("server shutdown error")
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
