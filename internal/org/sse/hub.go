package sse

import (
	"fmt"
	"log"
	"sync"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// GlobalHub is the singleton SSE Hub instance
var GlobalHub = NewHub()

// NewHub creates a new SSE Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to all connected clients. Delivery is best-effort:
// a client with a full buffer is skipped.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// SendToUser sends an event to a specific user's connections
func SendToUser(userID string, event Event) {
	GlobalHub.mu.RLock()
	defer GlobalHub.mu.RUnlock()
	for _, client := range GlobalHub.clients {
		if client.UserID == userID {
			select {
			case client.Events <- event:
			default:
				log.Printf("[SSE] Client %s buffer full, skipping user event", client.ID)
			}
		}
	}
}

// PublishBookingUpdate notifies clients of a room booking change
func PublishBookingUpdate(bookingID, roomID, action string) {
	data := fmt.Sprintf(`{"booking_id":"%s","room_id":"%s","action":"%s"}`, bookingID, roomID, action)
	GlobalHub.Broadcast(Event{
		EventType: "room_booking",
		Data:      data,
	})
	log.Printf("[SSE] Published room_booking: booking=%s room=%s action=%s", bookingID, roomID, action)
}

// PublishFeedbackUpdate notifies clients of a feedback change
func PublishFeedbackUpdate(feedbackID, action string) {
	data := fmt.Sprintf(`{"feedback_id":"%s","action":"%s"}`, feedbackID, action)
	GlobalHub.Broadcast(Event{
		EventType: "oti_bersuara",
		Data:      data,
	})
	log.Printf("[SSE] Published oti_bersuara: feedback=%s action=%s", feedbackID, action)
}

// PublishDivisionUpdate notifies clients of a division change
func PublishDivisionUpdate(divisionID, action string) {
	data := fmt.Sprintf(`{"division_id":"%s","action":"%s"}`, divisionID, action)
	GlobalHub.Broadcast(Event{
		EventType: "division",
		Data:      data,
	})
	log.Printf("[SSE] Published division: division=%s action=%s", divisionID, action)
}
