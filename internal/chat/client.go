package chat

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 512
)

// Client is a middleman between one websocket connection and the hub. Messages are
// sent through the REST endpoint; the socket only receives.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Room string

	// ids of messages already written in the history replay; owned by WritePump.
	replayed map[string]struct{}
}

// replayedAlready reports whether message was part of the history replay. Each id
// is matched at most once.
func (c *Client) replayedAlready(message []byte) bool {
	if len(c.replayed) == 0 {
		return false
	}
	id := gjson.GetBytes(message, "_id").String()
	if _, ok := c.replayed[id]; !ok {
		return false
	}
	delete(c.replayed, id)
	return true
}

// ReadPump drains the connection so control frames are processed, and unregisters
// the client once the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Debug("websocket closed", "room", c.Room, "error", err)
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection, one JSON
// document per frame.
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
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if c.replayedAlready(message) {
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
