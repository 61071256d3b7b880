package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jandubois/droidlaunch/internal/lifecycle"
	"github.com/jandubois/droidlaunch/internal/mirror"
	"github.com/jandubois/droidlaunch/internal/probe"
	"github.com/jandubois/droidlaunch/internal/webcam"
)

type composeResponse struct {
	Command mirror.Command `json:"command"`
	Preview string         `json:"preview"`
}

type webcamRequest struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

type statusResponse struct {
	Tools   []lifecycle.Status `json:"tools"`
	Address *probe.Result      `json:"address"`
	Probing bool               `json:"probing"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.opts.Version})
}

func (s *Server) handleStatus(c *gin.Context) {
	resp := statusResponse{
		Tools:   s.opts.Manager.Status(),
		Probing: s.opts.Prober != nil && s.opts.Prober.Busy(),
	}
	if last, ok := s.lastAddress(); ok {
		resp.Address = &last
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCompose(c *gin.Context) {
	cfg, ok := s.bindMirror(c)
	if !ok {
		return
	}
	cmd := mirror.ComposeWith(s.opts.MirrorProgram, cfg)
	c.JSON(http.StatusOK, composeResponse{Command: cmd, Preview: cmd.String()})
}

func (s *Server) handleProbe(c *gin.Context) {
	if s.opts.Prober == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "address probe not configured"})
		return
	}

	res := <-s.opts.Prober.Go(c.Request.Context())
	switch {
	case res.Found:
		s.addresses.Set(lastAddressKey, res)
		c.JSON(http.StatusOK, res)
	case res.Reason == probe.ReasonInProgress:
		c.JSON(http.StatusConflict, res)
	default:
		c.JSON(http.StatusUnprocessableEntity, res)
	}
}

func (s *Server) handleMirrorStart(c *gin.Context) {
	cfg, ok := s.bindMirror(c)
	if !ok {
		return
	}
	s.start(c, lifecycle.Mirror, mirror.ComposeWith(s.opts.MirrorProgram, cfg))
}

func (s *Server) handleWebcamStart(c *gin.Context) {
	var req webcamRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address := req.Address
	if address == "" {
		last, ok := s.lastAddress()
		if !ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no device address; pass one or run a probe first"})
			return
		}
		address = last.Address
	}
	port := req.Port
	if port <= 0 {
		port = s.opts.WebcamPort
	}
	s.start(c, lifecycle.Webcam, webcam.Compose(s.opts.WebcamProgram, address, port))
}

func (s *Server) handleStop(tool lifecycle.Tool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.opts.Manager.Stop(tool); err != nil {
			if errors.Is(err, lifecycle.ErrNotRunning) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, s.opts.Manager.StatusOf(tool))
	}
}

func (s *Server) start(c *gin.Context, tool lifecycle.Tool, command []string) {
	status, err := s.opts.Manager.Start(tool, command)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, status)
	case errors.Is(err, lifecycle.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": status})
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "command": command})
	}
}

// bindMirror decodes an optional request body over the base mirror config.
func (s *Server) bindMirror(c *gin.Context) (mirror.Config, bool) {
	cfg := s.opts.Mirror
	if err := c.ShouldBindJSON(&cfg); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return mirror.Config{}, false
	}
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return mirror.Config{}, false
	}
	cfg.Clamp()
	return cfg, true
}

func (s *Server) lastAddress() (probe.Result, bool) {
	res := s.addresses.Get(lastAddressKey)
	return res, res.Found
}
