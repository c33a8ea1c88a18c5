package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Identity is the authenticated user bound to a connection after a
// successful handshake.
type Identity struct {
	UserID   int64
	Username string
}

// Connection wraps a websocket and serializes outbound writes through a
// buffered channel drained by a single write loop. A connection starts
// unauthenticated; the handshake binds it to exactly one Identity for its
// whole lifetime. Safe for concurrent use.
type Connection struct {
	ID string

	ws    *websocket.Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}

	// Set by Close before the close channel is signaled; read only by
	// the write loop afterwards.
	closeCode   int
	closeReason string

	mu       sync.RWMutex
	identity *Identity
}

// NewConnection constructs an unauthenticated Connection.
func NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID: uuid.NewString(),
		ws: ws,
		// Sized above the largest reconnect replay burst so a full
		// backlog can be enqueued without tripping the slow-client cutoff.
		send:  make(chan []byte, 1024),
		close: make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Bind attaches the authenticated identity. The handshake runs once per
// connection, so later calls overwrite nothing meaningful.
func (c *Connection) Bind(userID int64, username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		c.identity = &Identity{UserID: userID, Username: username}
	}
}

// Identity returns the bound identity; ok is false while the connection
// is still unauthenticated.
func (c *Connection) Identity() (Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return Identity{}, false
	}
	return *c.identity, true
}

// Send enqueues payload for delivery. If the client is slow and the
// buffer is full, the connection is closed to keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close signals termination. The write loop flushes anything still
// queued, sends the close frame with the given code and tears the socket
// down, so a frame enqueued right before Close still reaches the client.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.close)
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			c.shutdown()
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "write failure")
				_ = c.ws.Close()
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "ping failure")
				_ = c.ws.Close()
				return
			}
		}
	}
}

// shutdown drains the send buffer, then writes the close frame and closes
// the socket. Frames enqueued after the drain snapshot are dropped.
func (c *Connection) shutdown() {
	for {
		select {
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				_ = c.ws.Close()
				return
			}
		default:
			deadline := time.Now().Add(writeWait)
			_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(c.closeCode, c.closeReason), deadline)
			_ = c.ws.Close()
			return
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
