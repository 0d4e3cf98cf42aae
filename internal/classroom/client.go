package classroom

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"chesscoach/internal/models"
	"chesscoach/internal/rules"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one websocket participant in a class room
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	UserID  int64
	Name    string
	Role    string
	ClassID int64
}

// NewClient creates a classroom client for an upgraded websocket connection
func NewClient(hub *Hub, conn *websocket.Conn, userID int64, name, role string, classID int64) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 16),
		UserID:  userID,
		Name:    name,
		Role:    role,
		ClassID: classID,
	}
}

// Start registers the client and runs its read and write pumps.
// It blocks until the connection closes.
func (c *Client) Start() {
	c.hub.Join(c)
	go c.writePump()
	c.readPump()
}

// deliver queues an update to this client, dropping it if the client is slow
func (c *Client) deliver(update BoardUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// inboundMessage is what clients may send: a board position push.
// Only coaches drive the shared board.
type inboundMessage struct {
	Type string `json:"type"`
	FEN  string `json:"fen"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Classroom socket error (class %d, user %d): %v", c.ClassID, c.UserID, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type != MessageBoard {
			continue
		}
		if c.Role != models.RoleCoach {
			// Students watch; they do not drive the shared board
			continue
		}
		if err := rules.ValidateFEN(msg.FEN); err != nil {
			log.Printf("Dropping invalid board position from user %d: %v", c.UserID, err)
			continue
		}

		c.hub.PushBoard(c.ClassID, msg.FEN, c.Name)
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
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
