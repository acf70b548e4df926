package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients only send pings, so incoming frames stay small
	maxMessageSize = 4 * 1024
)

// Client is one board connection of a signed-in user.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	AccountID string
	UserID    string
}

// WebSocketMessage is the envelope of every board event.
type WebSocketMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
	User string `json:"user,omitempty"`
}

// ReadPump keeps the connection alive and answers application pings.
// Anything else a client sends is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("Error unmarshalling WebSocket message: %v", err)
			continue
		}
		if wsMessage.Type != "ping" {
			continue
		}

		pong, err := json.Marshal(WebSocketMessage{
			Type: "pong",
			Data: map[string]string{"timestamp": time.Now().Format(time.RFC3339)},
		})
		if err != nil {
			continue
		}
		c.Hub.reply(c, pong)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type accountMessage struct {
	accountID string
	payload   []byte
}

type clientMessage struct {
	client  *Client
	payload []byte
}

// Hub fans board events out to the connections of the account they belong
// to. Its maps are only touched by the Run goroutine.
type Hub struct {
	accounts   map[string]map[*Client]bool
	broadcast  chan accountMessage
	replies    chan clientMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		accounts:   make(map[string]map[*Client]bool),
		broadcast:  make(chan accountMessage, 256),
		replies:    make(chan clientMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// reply sends a message to one client, provided it is still registered.
func (h *Hub) reply(client *Client, payload []byte) {
	select {
	case h.replies <- clientMessage{client: client, payload: payload}:
	case <-h.done:
	}
}

// Publish queues an event for every connection of the account. Events are
// dropped when the hub is saturated or stopped.
func (h *Hub) Publish(accountID string, message WebSocketMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshalling WebSocket message: %v", err)
		return
	}

	select {
	case h.broadcast <- accountMessage{accountID: accountID, payload: payload}:
	case <-h.done:
	default:
		log.Printf("Hub broadcast queue full, dropping %s event", message.Type)
	}
}

// Run owns the hub state until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, clients := range h.accounts {
			for client := range clients {
				close(client.Send)
			}
		}
		h.accounts = nil
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			clients := h.accounts[client.AccountID]
			if clients == nil {
				clients = make(map[*Client]bool)
				h.accounts[client.AccountID] = clients
			}
			clients[client] = true
			log.Printf("Client connected: %s", client.UserID)
		case client := <-h.unregister:
			h.remove(client)
		case message := <-h.replies:
			if h.accounts[message.client.AccountID][message.client] {
				h.deliver(message.client, message.payload)
			}
		case message := <-h.broadcast:
			for client := range h.accounts[message.accountID] {
				h.deliver(client, message.payload)
			}
		}
	}
}

func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		log.Printf("Client send buffer full, removing client: %s", client.UserID)
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.accounts[client.AccountID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.accounts, client.AccountID)
	}
	close(client.Send)
	log.Printf("Client disconnected: %s", client.UserID)
}
