package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Event is pushed to every client subscribed to a base after a change is processed.
type Event struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Id     int    `json:"id"`
	BaseId string `json:"base_id"`
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	baseId string
	uid    string
}

type envelope struct {
	baseId string
	data   []byte
}

// Hub fans events out to the websocket clients of each client base.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GlobalHub is started by the server and used by the workflow to broadcast.
var GlobalHub = NewHub()

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.baseId]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.baseId] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[client.baseId]
	if !ok {
		return
	}
	if _, ok := set[client]; ok {
		delete(set, client)
		close(client.send)
	}
	if len(set) == 0 {
		delete(h.clients, client.baseId)
	}
}

func (h *Hub) deliver(env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[env.baseId] {
		select {
		case client.send <- env.data:
		default:
			// slow consumer
			close(client.send)
			delete(h.clients[env.baseId], client)
		}
	}
}

// ClientCount returns the number of connected clients for a base.
func (h *Hub) ClientCount(baseId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[baseId])
}

// Publish queues an event for the base's clients. It never blocks the caller.
func (h *Hub) Publish(event Event) {
	if event.BaseId == "" {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		config.GetLogger().WithError(err).Error("realtime: marshal event")
		return
	}
	select {
	case h.broadcast <- envelope{baseId: event.BaseId, data: data}:
	default:
		config.GetLogger().WithFields(logrus.Fields{
			"field":   "Realtime",
			"base_id": event.BaseId,
			"entity":  event.Entity,
		}).Warn("realtime broadcast queue full; dropping event")
	}
}

// Serve upgrades the request and subscribes the connection to baseId.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, baseId string, uid string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		baseId: baseId,
		uid:    uid,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump only drains control frames; clients do not send events.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				config.GetLogger().WithFields(logrus.Fields{
					"field":   "Realtime",
					"base_id": c.baseId,
					"uid":     c.uid,
				}).Warn("unexpected websocket close: " + err.Error())
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
