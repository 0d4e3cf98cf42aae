// Package classroom implements the live class board channel: one room per
// class, a single shared "current board position" broadcast to every socket
// in the room. Last write wins; there is no conflict resolution and delivery
// is best effort.
package classroom

import (
	"encoding/json"
	"log"
	"time"
)

// Message types on the classroom channel
const (
	MessageBoard  = "board"
	MessageJoined = "joined"
	MessageLeft   = "left"
)

// BoardUpdate is the wire format for classroom messages. For MessageBoard
// the FEN field carries the full board position; joins and leaves carry
// only the participant name.
type BoardUpdate struct {
	Type    string    `json:"type"`
	ClassID int64     `json:"class_id"`
	FEN     string    `json:"fen,omitempty"`
	By      string    `json:"by,omitempty"`
	At      time.Time `json:"at"`
}

// room tracks the sockets in one class plus the last broadcast position,
// replayed to late joiners.
type room struct {
	clients map[*Client]bool
	lastFEN string
	lastBy  string
}

// Hub routes board updates between the sockets of each class room.
// All state is owned by the Run loop; handlers interact with the hub only
// through channels.
type Hub struct {
	rooms      map[int64]*room
	register   chan *Client
	unregister chan *Client
	updates    chan BoardUpdate
}

// NewHub creates a new classroom hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[int64]*room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		updates:    make(chan BoardUpdate, 16),
	}
}

// Run processes registrations and board updates. Call once from main in
// its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case update := <-h.updates:
			h.handleUpdate(update)
		}
	}
}

// Join registers a client with its class room
func (h *Hub) Join(client *Client) {
	h.register <- client
}

// Leave removes a client from its class room
func (h *Hub) Leave(client *Client) {
	h.unregister <- client
}

// PushBoard broadcasts a new board position to a class room
func (h *Hub) PushBoard(classID int64, fen, by string) {
	h.updates <- BoardUpdate{
		Type:    MessageBoard,
		ClassID: classID,
		FEN:     fen,
		By:      by,
		At:      time.Now(),
	}
}

func (h *Hub) handleRegister(client *Client) {
	rm, ok := h.rooms[client.ClassID]
	if !ok {
		rm = &room{clients: make(map[*Client]bool)}
		h.rooms[client.ClassID] = rm
	}
	rm.clients[client] = true

	// Late joiners get the current position straight away
	if rm.lastFEN != "" {
		client.deliver(BoardUpdate{
			Type:    MessageBoard,
			ClassID: client.ClassID,
			FEN:     rm.lastFEN,
			By:      rm.lastBy,
			At:      time.Now(),
		})
	}

	h.broadcastExcept(rm, BoardUpdate{
		Type:    MessageJoined,
		ClassID: client.ClassID,
		By:      client.Name,
		At:      time.Now(),
	}, client)
}

func (h *Hub) handleUnregister(client *Client) {
	rm, ok := h.rooms[client.ClassID]
	if !ok {
		return
	}
	if _, ok := rm.clients[client]; !ok {
		return
	}
	delete(rm.clients, client)
	close(client.send)

	if len(rm.clients) == 0 {
		delete(h.rooms, client.ClassID)
		return
	}

	h.broadcast(rm, BoardUpdate{
		Type:    MessageLeft,
		ClassID: client.ClassID,
		By:      client.Name,
		At:      time.Now(),
	})
}

func (h *Hub) handleUpdate(update BoardUpdate) {
	rm, ok := h.rooms[update.ClassID]
	if !ok {
		// Nobody in the room; drop silently
		return
	}
	rm.lastFEN = update.FEN
	rm.lastBy = update.By
	h.broadcast(rm, update)
}

// broadcast sends an update to every client in the room. Slow clients are
// skipped rather than blocking the hub.
func (h *Hub) broadcast(rm *room, update BoardUpdate) {
	h.broadcastExcept(rm, update, nil)
}

// broadcastExcept sends an update to every client in the room except one
// (used to avoid echoing a client's own join back at it).
func (h *Hub) broadcastExcept(rm *room, update BoardUpdate, except *Client) {
	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling classroom update: %v", err)
		return
	}

	for client := range rm.clients {
		if client == except {
			continue
		}
		select {
		case client.send <- data:
		default:
		}
	}
}
