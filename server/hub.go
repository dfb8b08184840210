// Package server adapts the observation transport to the VM ecology: a
// websocket Hub/Client pair broadcasts periodic SimulatorView snapshots to
// any number of observers, and nothing else. Observers never reach back
// into simulator internals; they only ever see the JSON handed to Publish.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is a middleman between a websocket connection and the Hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger zerolog.Logger
}

// readPump drains and discards whatever the observer sends; this transport
// is broadcast-only, but a stalled reader would eventually back up the
// connection's TCP buffers, so something must keep consuming.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("observer connection closed")
			}
			break
		}
	}
}

// writePump is the only goroutine that writes to the connection.
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.logger.Debug().Err(err).Msg("observer write failed, closing")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Hub maintains the set of connected observers and broadcasts snapshots.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	logger     zerolog.Logger
}

// NewHub builds a Hub with the given logger for lifecycle events.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

// Run drives the Hub's register/unregister/broadcast loop. It never
// returns, so callers run it in its own goroutine for the process
// lifetime.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow observer; drop rather than block the tick loop.
				}
			}
		}
	}
}

// ServeObservation registers the websocket upgrade handler on mux, backed
// by hub. It never touches the simulation directly — all simulation data
// reaches observers through hub.Broadcast, fed by whoever owns the live
// simulation state (see Publish).
func ServeObservation(mux *http.ServeMux, hub *Hub, logger zerolog.Logger) {
	mux.HandleFunc("/observe", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("observer upgrade failed")
			return
		}

		client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), logger: logger}
		client.hub.Register <- client

		go client.writePump()
		go client.readPump()
	})
}

// Publish hands one already-marshaled snapshot to hub for broadcast,
// dropping it rather than blocking if the Hub's intake is saturated.
// Callers must produce payload on the same goroutine that owns the live
// simulation state (or otherwise synchronize with it) — this package has
// no access to that state and enforces nothing about how it was read.
func Publish(hub *Hub, payload []byte) {
	select {
	case hub.Broadcast <- payload:
	default:
	}
}
