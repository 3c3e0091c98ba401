package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client wraps a connection with a write lock. The read loop acks inbound
// messages while Broadcast writes from other goroutines; gorilla allows
// only one concurrent writer per connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks live avatar clients and acknowledges their messages in real
// time. Conversation itself goes through the HTTP API; the socket exists
// for low-latency signalling.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
	}
}

type inboundMessage struct {
	Message string `json:"message"`
}

type ackMessage struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	h.register(c)

	go func() {
		defer h.unregister(c)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}

			var msg inboundMessage
			json.Unmarshal(data, &msg)
			log.Printf("Received message: %s", data)

			ack, _ := json.Marshal(ackMessage{
				Message:   "Message received",
				Timestamp: time.Now().UnixMilli(),
			})
			if err := c.write(ack); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	log.Printf("Client connected (total: %d)", len(h.clients))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()
	delete(h.clients, c)
	log.Printf("Client disconnected (total: %d)", len(h.clients))
}

// Broadcast sends a payload to every connected client.
func (h *Hub) Broadcast(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		c.write(data)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
