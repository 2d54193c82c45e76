package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ajitkushawaha/KwickLingoApp/internal/config"
	"github.com/ajitkushawaha/KwickLingoApp/internal/log"
)

// DisconnectHandler is called when a client disconnects.
type DisconnectHandler func(*Client)

// Client represents a connected WebSocket client. The hub owns the
// transport; everything else refers to clients by ID only.
type Client struct {
	ID                string
	Hub               *Hub
	Conn              *websocket.Conn
	Send              chan []byte
	disconnectHandler DisconnectHandler
}

// SetDisconnectHandler sets the handler to be called on disconnect.
func (c *Client) SetDisconnectHandler(handler DisconnectHandler) {
	c.disconnectHandler = handler
}

// Hub manages all WebSocket connections.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

// NewHub creates a new Hub.
func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		config:     cfg,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	l := log.L()
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l.Info().Str(log.FieldConnID, client.ID).Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l.Info().Str(log.FieldConnID, client.ID).Msg("client disconnected")

		case data := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- data:
				default:
					// Client's send buffer is full
					go h.removeClient(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsConnected reports whether a connection is still live.
func (h *Hub) IsConnected(connID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.clients[connID]
	return ok
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// SendToClient sends a message to a specific connection. Sends to a
// dead or unknown connection are swallowed; disconnect cleanup removes
// the stale reference.
func (h *Hub) SendToClient(connID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()

	if !ok {
		return nil
	}

	select {
	case client.Send <- data:
	default:
		go h.removeClient(client)
	}
	return nil
}

// Broadcast sends a message to every connected client.
func (h *Hub) Broadcast(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- data
	return nil
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}

// ReadPump pumps messages from the WebSocket connection to the handler.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		// Unwind server state before dropping the transport
		if c.disconnectHandler != nil {
			c.disconnectHandler(c)
		}
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Hub.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.L().Error().Err(err).Str(log.FieldConnID, c.ID).Msg("websocket error")
			}
			break
		}

		handler(c, message)
	}
}

// WritePump pumps messages from the send channel to the WebSocket
// connection and keeps the ping cycle going.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.Hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage sends a message to this client, dropping it if the send
// buffer is full.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
	default:
	}
	return nil
}
