package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/gridcombat/engine/pkg/streaming"
)

const (
	outboxSize   = 10_000
	ackBufSize   = 16
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
)

// connection owns one WebSocket link. A single writer goroutine drains
// the outbox; a reader goroutine routes server acks. On transport
// errors the link re-dials with backoff and replays the cached
// start_episode frame so the server can re-associate the stream.
type connection struct {
	mu     sync.Mutex
	socket *ws.Conn
	closed bool

	outbox chan []byte
	acks   chan streaming.AckMessage
	quit   chan struct{}

	wsURL  string
	secret string

	// Replayed after every reconnect.
	cachedStartMsg []byte

	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		outbox: make(chan []byte, outboxSize),
		acks:   make(chan streaming.AckMessage, ackBufSize),
		quit:   make(chan struct{}),
		logger: logger,
	}
}

// dial establishes the link and starts the pump goroutines.
func (c *connection) dial(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	socket, err := c.dialOnce()
	if err != nil {
		return err
	}
	c.swapSocket(socket)

	go c.writePump()
	go c.readPump(socket)
	return nil
}

// dialOnce performs one dial attempt, authenticating via query param.
func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", c.secret)
	u.RawQuery = q.Encode()

	socket, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return socket, nil
}

func (c *connection) swapSocket(s *ws.Conn) {
	c.mu.Lock()
	c.socket = s
	c.mu.Unlock()
}

func (c *connection) currentSocket() *ws.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.socket
}

// writeFrame writes one text frame under the write deadline.
func writeFrame(socket *ws.Conn, data []byte) error {
	if err := socket.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return socket.WriteMessage(ws.TextMessage, data)
}

// writePump drains the outbox onto the socket. It exits on shutdown or
// on the first transport error, handing off to reconnect.
func (c *connection) writePump() {
	for {
		select {
		case <-c.quit:
			return
		case data := <-c.outbox:
			socket := c.currentSocket()
			if socket == nil {
				continue
			}
			if err := writeFrame(socket, data); err != nil {
				c.logger.Warn("WebSocket write error", "error", err)
				go c.reconnect()
				return
			}
		}
	}
}

// readPump consumes server messages from one socket, forwarding acks.
func (c *connection) readPump(socket *ws.Conn) {
	for {
		_, message, err := socket.ReadMessage()
		if err != nil {
			select {
			case <-c.quit:
			default:
				c.logger.Warn("WebSocket read error", "error", err)
				go c.reconnect()
			}
			return
		}

		var ack streaming.AckMessage
		if json.Unmarshal(message, &ack) != nil || ack.Type != "ack" {
			c.logger.Debug("Non-ack message received", "raw", string(message))
			continue
		}

		select {
		case c.acks <- ack:
		default:
			c.logger.Debug("Ack channel full, dropping", "for", ack.For)
		}
	}
}

// reconnect re-dials with exponential backoff, replays the cached
// start_episode frame and restarts both pumps.
func (c *connection) reconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.socket != nil {
		_ = c.socket.Close()
		c.socket = nil
	}
	c.mu.Unlock()

	backoff := time.Second
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		select {
		case <-c.quit:
			return
		default:
		}

		c.logger.Info("Reconnecting to WebSocket", "attempt", attempt, "backoff", backoff)
		time.Sleep(backoff)
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}

		socket, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			continue
		}

		c.mu.Lock()
		c.socket = socket
		cached := c.cachedStartMsg
		c.mu.Unlock()

		if cached != nil {
			if err := writeFrame(socket, cached); err != nil {
				c.logger.Warn("Failed to replay start message after reconnect", "error", err)
				_ = socket.Close()
				continue
			}
		}

		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		go c.writePump()
		go c.readPump(socket)
		return
	}

	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxReconnect)
}

// send enqueues data for the write pump. Never blocks; drops when the
// outbox is full.
func (c *connection) send(data []byte) {
	select {
	case c.outbox <- data:
	default:
		c.logger.Warn("WebSocket send channel full, dropping message")
	}
}

// sendAndWait enqueues data and blocks until the server acknowledges
// the named message type or the timeout expires.
func (c *connection) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	c.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ack := <-c.acks:
			if ack.For == ackFor {
				return nil
			}
			// Someone else's ack, keep waiting.
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-c.quit:
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

// close sends a close frame and stops both pumps. Idempotent.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.quit)
	socket := c.socket
	c.socket = nil
	c.mu.Unlock()

	if socket != nil {
		_ = socket.WriteMessage(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		)
		return socket.Close()
	}
	return nil
}
