// Package bridge connects the daemon to an external runtime over a websocket.
// The runtime forwards key events, proximity samples and mapping updates; the
// daemon sends back the actions it decides on.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bezmoradi/gestured/internal/gesture"
)

// ErrNotConnected is returned when sending without a live connection.
var ErrNotConnected = errors.New("bridge not connected")

const (
	minBackoff   = 500 * time.Millisecond
	maxBackoff   = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// Handler receives inbound bridge messages.
type Handler interface {
	OnKeyEvent(ev gesture.Event) bool
	OnProximity(distance, maxRange float64, timestamp int64)
	OnMapping(scanCodes, actions []int)
}

type Client struct {
	url                string
	handler            Handler
	wsConn             *websocket.Conn
	wsMutex            sync.Mutex
	connectionCallback func(bool) // connected
	minBackoff         time.Duration
	maxBackoff         time.Duration
}

func NewClient(url string, handler Handler, connectionCallback func(bool)) *Client {
	return &Client{
		url:                url,
		handler:            handler,
		connectionCallback: connectionCallback,
		minBackoff:         minBackoff,
		maxBackoff:         maxBackoff,
	}
}

// Connect dials once.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("error connecting to bridge %s: %w", c.url, err)
	}

	c.wsMutex.Lock()
	c.wsConn = conn
	c.wsMutex.Unlock()

	if c.connectionCallback != nil {
		c.connectionCallback(true)
	}
	return nil
}

// Run keeps the connection up until ctx is cancelled, reconnecting with
// exponential backoff.
func (c *Client) Run(ctx context.Context) {
	backoff := c.minBackoff
	for {
		if err := c.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[BRIDGE] %v, retrying in %v", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, c.maxBackoff)
			continue
		}

		log.Printf("[BRIDGE] Connected to %s", c.url)
		backoff = c.minBackoff

		stop := context.AfterFunc(ctx, c.Close)
		c.handleResponses()
		stop()
		c.Close()

		if ctx.Err() != nil {
			return
		}
		log.Printf("[BRIDGE] Connection lost")
	}
}

// Execute forwards a delivered action to the runtime.
func (c *Client) Execute(action gesture.ActionID) {
	if err := c.send(actionMessage(action)); err != nil {
		log.Printf("[BRIDGE] Dropping %s: %v", action, err)
	}
}

// SendPulse tells the runtime to pulse the ambient display.
func (c *Client) SendPulse() {
	if err := c.send(pulseMessage()); err != nil {
		log.Printf("[BRIDGE] Dropping pulse: %v", err)
	}
}

func (c *Client) send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()

	if c.wsConn == nil {
		return ErrNotConnected
	}
	c.wsConn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err = c.wsConn.WriteMessage(websocket.TextMessage, data)
	if err != nil && isClosed(err) {
		c.wsConn = nil
	}
	return err
}

func (c *Client) Close() {
	c.wsMutex.Lock()
	conn := c.wsConn
	c.wsConn = nil
	c.wsMutex.Unlock()

	if conn == nil {
		return
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	if c.connectionCallback != nil {
		c.connectionCallback(false)
	}
}

func (c *Client) IsConnected() bool {
	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()
	return c.wsConn != nil
}

func (c *Client) handleResponses() {
	c.wsMutex.Lock()
	conn := c.wsConn
	c.wsMutex.Unlock()
	if conn == nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !isClosed(err) {
				log.Printf("[BRIDGE] Read error: %v", err)
			}
			return
		}

		msg, err := Decode(data)
		if err != nil {
			log.Printf("[BRIDGE] %v", err)
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	switch msg.Type {
	case TypeKey:
		ev := msg.Event()
		handled := c.handler.OnKeyEvent(ev)
		if err := c.send(handledMessage(msg.ID, ev, handled)); err != nil {
			log.Printf("[BRIDGE] Reply for scan code %d: %v", ev.ScanCode, err)
		}
	case TypeProximity:
		c.handler.OnProximity(msg.Distance, msg.MaxRange, msg.Timestamp)
	case TypeMapping:
		c.handler.OnMapping(msg.ScanCodes, msg.Actions)
	}
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		strings.Contains(err.Error(), "websocket: close sent") ||
		strings.Contains(err.Error(), "use of closed network connection")
}
