package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/anggasct/trafficsim/pkg/core"
)

const (
	clientSendBuffer = 16
	writeWait        = 5 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// streamMessage is one frame of the snapshot stream
type streamMessage struct {
	Type     string        `json:"type"`
	Snapshot core.Snapshot `json:"snapshot"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans tick snapshots out to websocket clients. It is registered with the
// engine as an observer. A client that cannot keep up is disconnected.
type Hub struct {
	logger     zerolog.Logger
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	connected  atomic.Int64
	dropped    atomic.Uint64
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    map[*client]bool{},
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			close(c.send)
		}
		h.connected.Store(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = true
			h.connected.Store(int64(len(h.clients)))
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				h.connected.Store(int64(len(h.clients)))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn().Str("client", c.id).Msg("stream client too slow, disconnecting")
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.connected.Store(int64(len(h.clients)))
		}
	}
}

// Len returns the number of connected clients
func (h *Hub) Len() int {
	return int(h.connected.Load())
}

// Publish queues a snapshot for every client. It never blocks.
func (h *Hub) Publish(snapshot core.Snapshot) {
	body, err := json.Marshal(streamMessage{Type: "snapshot", Snapshot: snapshot})
	if err != nil {
		h.logger.Error().Err(err).Msg("encode snapshot")
		return
	}
	select {
	case h.broadcast <- body:
	default:
		h.dropped.Add(1)
	}
}

// OnTransition is not streamed
func (h *Hub) OnTransition(from core.ClockState, to core.ClockState, command string) {}

// OnTick streams the post-tick snapshot
func (h *Hub) OnTick(snapshot core.Snapshot, elapsed time.Duration) {
	h.Publish(snapshot)
}

// ServeWS upgrades the request and attaches the connection to the hub.
// The current snapshot is sent first.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, initial core.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, clientSendBuffer)}
	if body, err := json.Marshal(streamMessage{Type: "snapshot", Snapshot: initial}); err == nil {
		c.send <- body
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	h.logger.Debug().Str("client", c.id).Msg("stream client connected")
	go c.writer()
	go c.reader(h)
}

// reader discards inbound frames and unregisters on close
func (c *client) reader(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writer() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}
