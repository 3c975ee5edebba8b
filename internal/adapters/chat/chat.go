// Package chat is the WebSocket adapter: one connection, one read pump and
// one write pump, JSON frames tagged by "type".
package chat

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/app"
)

var ErrBackpressure = errors.New("backpressure")

type ChatWSController struct {
	Orch *app.Orchestrator
	// ReadLimit bounds a single inbound frame; the text cap only applies
	// after the frame is fully in memory.
	ReadLimit int64
}

func NewChatWSController(orch *app.Orchestrator, readLimit int64) *ChatWSController {
	return &ChatWSController{Orch: orch, ReadLimit: readLimit}
}

// WsChatConn satisfies app.Conn; sends are non-blocking against a buffered
// channel drained by the write pump.
type WsChatConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *WsChatConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsChatConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat upgrades the request and runs the connection until it drops.
// Every upgrade gets a fresh connection id; the client-token cookie only
// ties log lines together across reconnects.
func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	ct := c.GetString("client_token")
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	connID := uuid.NewString()
	log.Info().Str("module", "chat").Str("ct", ct).Str("conn", connID).Msg("new WS connection")

	conn := &WsChatConn{
		conn: ws,
		send: make(chan []byte, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, connID, conn)
}
