package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"mediawall/internal/database"
	"mediawall/internal/models"
)

// Hub tracks one connection per user and pushes item-change events so an
// open dashboard updates without polling.
type Hub struct {
	clients    map[string]*Client // userID -> Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			// Close existing connection if any
			if existing, ok := h.clients[client.UserID]; ok {
				existing.Conn.Close()
			}
			h.clients[client.UserID] = client
			h.mutex.Unlock()
			log.Printf("Client connected: %s", client.UserID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if existing, ok := h.clients[client.UserID]; ok && existing == client {
				delete(h.clients, client.UserID)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Client disconnected: %s", client.UserID)

			database.DB.Model(&models.User{}).Where("id = ?", client.UserID).Update("last_seen", time.Now())
		}
	}
}

func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) SendToUser(userID string, message []byte) bool {
	h.mutex.RLock()
	client, ok := h.clients[userID]
	h.mutex.RUnlock()

	if ok {
		select {
		case client.Send <- message:
			return true
		default:
			return false
		}
	}
	return false
}

// ItemEvent is pushed to a user's open dashboard when one of their items
// changes.
type ItemEvent struct {
	Type   string                    `json:"type"`
	Action string                    `json:"action"` // created, updated, deleted
	Item   *models.MediaItemResponse `json:"item,omitempty"`
	ItemID string                    `json:"item_id,omitempty"`
}

// NotifyItemChange sends an item event to the owner if they are connected.
// Delivery is best-effort; a missed event just means the next page load
// fetches fresh data.
func (h *Hub) NotifyItemChange(userID, action string, item *models.MediaItemResponse, itemID string) {
	event := ItemEvent{
		Type:   "item",
		Action: action,
		Item:   item,
		ItemID: itemID,
	}
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.SendToUser(userID, msgBytes)
}
