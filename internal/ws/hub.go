package ws

import (
	"encoding/json"
	"log"
)

// Hub maintains the set of connected presence clients and broadcasts
// messages to them. All client-map access happens on the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Outbound messages fanned out to every client.
	Broadcast chan []byte
}

// ConnectedClient is one entry of the presence roster.
type ConnectedClient struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
}

// Event is the envelope for every message sent over the presence channel.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 16),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Printf("Presence: user %s connected (%d clients)", client.UserID, len(h.clients))
			h.broadcastRoster()
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Printf("Presence: user %s disconnected (%d clients)", client.UserID, len(h.clients))
				h.broadcastRoster()
			}
		case message := <-h.Broadcast:
			h.fanOut(message)
		}
	}
}

// broadcastRoster pushes the current connected-client list to everyone.
// Sent on every connect and disconnect.
func (h *Hub) broadcastRoster() {
	roster := make([]ConnectedClient, 0, len(h.clients))
	for client := range h.clients {
		roster = append(roster, ConnectedClient{
			UserID:   client.UserID,
			FullName: client.FullName,
		})
	}
	payload, err := json.Marshal(Event{Event: "clients-updated", Data: roster})
	if err != nil {
		log.Printf("Presence: failed to marshal roster: %v", err)
		return
	}
	h.fanOut(payload)
}

func (h *Hub) fanOut(message []byte) {
	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}
