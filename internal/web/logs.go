package web

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The service binds to loopback by default and requires the token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 3 * time.Second
	pingPeriod = 30 * time.Second
)

type safeConn struct {
	c  *websocket.Conn
	mu sync.Mutex // one writer at a time
}

func (s *safeConn) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.c.SetWriteDeadline(time.Now().Add(writeWait))
	return s.c.WriteJSON(v)
}

func (s *safeConn) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// handleLogs streams process output: the backlog first, then live lines.
func (s *Server) handleLogs(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}
	conn := &safeConn{c: ws}
	defer ws.Close()

	backlog, lines, cancel := s.opts.Hub.Subscribe()
	defer cancel()

	// The client sends nothing; reading only notices when it goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, l := range backlog {
		if err := conn.writeJSON(l); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case l, ok := <-lines:
			if !ok {
				return
			}
			if err := conn.writeJSON(l); err != nil {
				slog.Debug("log stream write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
