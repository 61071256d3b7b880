// Package web serves the local control API that drives the launcher.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jandubois/droidlaunch/internal/config"
	"github.com/jandubois/droidlaunch/internal/lifecycle"
	"github.com/jandubois/droidlaunch/internal/mirror"
	"github.com/jandubois/droidlaunch/internal/probe"
	"github.com/jandubois/droidlaunch/internal/prober"
)

const lastAddressKey = "last"

// Options wires the server to the launcher components.
type Options struct {
	Config  config.ServeConfig
	Manager *lifecycle.Manager
	Hub     *lifecycle.Hub
	Prober  *prober.Prober

	// Mirror is the base configuration request bodies are decoded over.
	Mirror        mirror.Config
	MirrorProgram string
	WebcamProgram string
	WebcamPort    int
	Version       string
}

// Server is the control service.
type Server struct {
	opts      Options
	limiter   *rate.Limiter
	addresses *ttlworker.Cache[string, probe.Result]
	server    *http.Server
	closeOnce sync.Once
}

// NewServer creates a new control server.
func NewServer(opts Options) *Server {
	if opts.Hub == nil {
		opts.Hub = lifecycle.NewHub(opts.Config.Backlog)
	}
	if opts.MirrorProgram == "" {
		opts.MirrorProgram = mirror.ProgramName
	}
	ttl := opts.Config.AddressTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	limit := rate.Inf
	if opts.Config.RateLimit > 0 {
		limit = rate.Limit(opts.Config.RateLimit)
	}
	burst := opts.Config.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		opts:      opts,
		limiter:   rate.NewLimiter(limit, burst),
		addresses: ttlworker.NewCache[string, probe.Result](ttl),
	}
	s.server = &http.Server{
		Addr:              opts.Config.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run starts the server and shuts it down when ctx ends.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("control server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down control server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Close stops the address cache's expiry worker. Run calls it on return.
func (s *Server) Close() {
	s.closeOnce.Do(s.addresses.Destroy)
}

func (s *Server) routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), s.rateLimit())

	api := r.Group("/api")

	// Health check (no auth)
	api.GET("/health", s.handleHealth)

	authed := api.Group("", s.requireAuth())
	authed.GET("/status", s.handleStatus)
	authed.POST("/compose", s.handleCompose)
	authed.POST("/probe", s.handleProbe)
	authed.POST("/mirror/start", s.handleMirrorStart)
	authed.POST("/mirror/stop", s.handleStop(lifecycle.Mirror))
	authed.POST("/webcam/start", s.handleWebcamStart)
	authed.POST("/webcam/stop", s.handleStop(lifecycle.Webcam))
	authed.GET("/logs", s.handleLogs)

	return r
}
