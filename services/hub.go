package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub tracks connected clients and fans room events out to them over
// websockets. It implements EventSink.
type Hub struct {
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	gameService *GameService
}

type Client struct {
	hub    *Hub
	id     string
	socket *websocket.Conn
	send   chan []byte
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// inboundMessage defers payload decoding until the type is known.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func NewHub(gameService *GameService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		gameService: gameService,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client connected: %s - Total clients: %d", client.id, h.clientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

			if ok {
				// Best-effort cleanup; double-disconnect is a no-op.
				h.gameService.Disconnect(client.id)
				log.Printf("Client disconnected: %s - Total clients: %d", client.id, h.clientCount())
			}
		}
	}
}

func (h *Hub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ToRoom sends a message to every member of a room.
func (h *Hub) ToRoom(roomCode string, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	members := h.gameService.MembersOf(roomCode)

	h.mutex.RLock()
	for client := range h.clients {
		if _, member := members[client.id]; member {
			client.deliver(data)
		}
	}
	h.mutex.RUnlock()
}

// ToPlayer sends a message to a single connection.
func (h *Hub) ToPlayer(playerID string, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	h.mutex.RLock()
	for client := range h.clients {
		if client.id == playerID {
			client.deliver(data)
			break
		}
	}
	h.mutex.RUnlock()
}

// deliver queues a message without blocking; a client whose send buffer is
// full misses the message and will resync from the next one.
func (c *Client) deliver(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("Client %s send buffer full, dropping message", c.id)
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn) *Client {
	client := &Client{
		hub:    h,
		id:     uuid.NewString(),
		socket: conn,
		send:   make(chan []byte, 256),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Error unmarshaling message from %s: %v", c.id, err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}

	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

type createRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type submitAnswerPayload struct {
	RoomCode    string `json:"roomCode"`
	AnswerIndex int    `json:"answerIndex"`
	TimeElapsed int    `json:"timeElapsed"` // milliseconds, client-reported
}

func (c *Client) handleMessage(msg inboundMessage) {
	gameService := c.hub.gameService

	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong"})
		c.deliver(data)

	case "createRoom":
		var payload createRoomPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("invalid payload")
			return
		}
		if _, err := gameService.CreateRoom(c.id, payload.PlayerName, c.hub); err != nil {
			c.sendError(err.Error())
		}

	case "joinRoom":
		var payload joinRoomPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("invalid payload")
			return
		}
		if _, err := gameService.JoinRoom(c.id, payload.RoomCode, payload.PlayerName, c.hub); err != nil {
			c.sendError(err.Error())
		}

	case "startGame":
		if err := gameService.StartGame(c.id); err != nil {
			c.sendError(err.Error())
		}

	case "submitAnswer":
		var payload submitAnswerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("invalid payload")
			return
		}
		if err := gameService.SubmitAnswer(c.id, payload.AnswerIndex, payload.TimeElapsed); err != nil {
			c.sendError(err.Error())
		}

	default:
		log.Printf("Unknown message type %q from client %s", msg.Type, c.id)
	}
}

// sendError reports a validation failure to the originating connection only.
func (c *Client) sendError(message string) {
	data, err := json.Marshal(Message{
		Type:    EventErrorNotice,
		Payload: map[string]interface{}{"message": message},
	})
	if err != nil {
		return
	}
	c.deliver(data)
}
