// Package pusher sends base64 image frames to an overlay over WebSocket.
package pusher

import (
	"encoding/base64"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a WebSocket frame sender. Every frame the overlay receives is
// echoed back; Echoes delivers one token per echo.
type Client struct {
	url string

	conn   *websocket.Conn
	mu     sync.Mutex
	done   chan struct{}
	echoes chan struct{}
	closed bool
}

// NewClient creates a client for the overlay at url.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		done:   make(chan struct{}),
		echoes: make(chan struct{}, 1),
	}
}

// Connect dials the overlay and starts reading echoes.
func (c *Client) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("overlay dial: %w", err)
	}
	c.conn = conn
	go c.readLoop()
	return nil
}

// Close shuts down the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.conn.Close()
	}
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Echoes signals each echoed message.
func (c *Client) Echoes() <-chan struct{} {
	return c.echoes
}

// SendFrame base64-encodes an image and sends it as a text message.
func (c *Client) SendFrame(data []byte) error {
	return c.send(base64.StdEncoding.EncodeToString(data))
}

func (c *Client) send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *Client) readLoop() {
	defer c.Close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("overlay read error: %v", err)
			}
			return
		}
		select {
		case c.echoes <- struct{}{}:
		default:
		}
	}
}
