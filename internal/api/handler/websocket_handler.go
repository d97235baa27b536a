package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketManager pushes committed transaction events to every connected
// dashboard.
type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	mutex      sync.Mutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 64),
	}
}

// Start runs the client registry until ctx is cancelled, then closes every
// connection.
func (wsm *WebSocketManager) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			wsm.mutex.Lock()
			for client := range wsm.clients {
				client.Close()
				delete(wsm.clients, client)
			}
			wsm.mutex.Unlock()
			return

		case client := <-wsm.register:
			wsm.mutex.Lock()
			wsm.clients[client] = true
			total := len(wsm.clients)
			wsm.mutex.Unlock()
			log.Printf("WebSocket client connected. Total: %d", total)

		case client := <-wsm.unregister:
			wsm.mutex.Lock()
			if _, ok := wsm.clients[client]; ok {
				delete(wsm.clients, client)
				client.Close()
			}
			total := len(wsm.clients)
			wsm.mutex.Unlock()
			log.Printf("WebSocket client disconnected. Total: %d", total)

		case message := <-wsm.broadcast:
			wsm.mutex.Lock()
			for client := range wsm.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Printf("Error writing to WebSocket client: %v", err)
					client.Close()
					delete(wsm.clients, client)
				}
			}
			wsm.mutex.Unlock()
		}
	}
}

func (wsm *WebSocketManager) ClientCount() int {
	wsm.mutex.Lock()
	defer wsm.mutex.Unlock()
	return len(wsm.clients)
}

// Publish queues the event for broadcast and drops it when the queue is full.
func (wsm *WebSocketManager) Publish(ctx context.Context, event domain.TransactionEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling transaction event: %v", err)
		return
	}

	select {
	case wsm.broadcast <- message:
	default:
		log.Printf("Broadcast channel is full, dropping %s event", event.Type)
	}
}

type WebSocketHandler struct {
	wsManager *WebSocketManager
}

func NewWebSocketHandler(wsManager *WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{wsManager: wsManager}
}

// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	h.wsManager.register <- conn

	go func() {
		defer func() {
			h.wsManager.unregister <- conn
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket error: %v", err)
				}
				return
			}
		}
	}()
}
