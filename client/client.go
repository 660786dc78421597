// Package client is a websocket chat client speaking the server's
// {"event", "data"} frames. It backs the load tester and the e2e suite.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Frame is one server frame. Data is kept raw until the caller decodes it.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type Client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	frames chan Frame
	once   sync.Once
}

// Dial opens a connection to a /ws endpoint, e.g. ws://localhost:3001/ws.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{conn: conn, frames: make(chan Frame, 256)}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.frames)
	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			return
		}
		c.frames <- frame
	}
}

// Send writes one raw frame.
func (c *Client) Send(eventName string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(outbound{Event: eventName, Data: data})
}

func (c *Client) Join(username string) error {
	return c.Send("join", username)
}

func (c *Client) JoinRoom(roomID, username string) error {
	return c.Send("join-room", map[string]string{"roomId": roomID, "username": username})
}

func (c *Client) SendMessage(roomID, user, text string) error {
	return c.Send("chat-message", map[string]string{"roomId": roomID, "user": user, "text": text})
}

func (c *Client) SendLegacy(username, message string) error {
	return c.Send("chat message", map[string]string{"username": username, "message": message})
}

// Frames streams every frame received. It is closed with the connection.
func (c *Client) Frames() <-chan Frame {
	return c.frames
}

// WaitFor discards frames until one named eventName arrives.
func (c *Client) WaitFor(ctx context.Context, eventName string) (Frame, error) {
	for {
		select {
		case <-ctx.Done():
			return Frame{}, fmt.Errorf("waiting for %q: %w", eventName, ctx.Err())
		case frame, ok := <-c.frames:
			if !ok {
				return Frame{}, fmt.Errorf("waiting for %q: connection closed", eventName)
			}
			if frame.Event == eventName {
				return frame, nil
			}
		}
	}
}

// Close sends a normal close frame, then drops the connection.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// Decode unmarshals the data of a frame.
func Decode[T any](frame Frame) (T, error) {
	var res T
	err := json.Unmarshal(frame.Data, &res)
	return res, err
}
