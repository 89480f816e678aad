package bridge

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// conn serializes writes to a websocket and keeps its read deadline moving
// while pongs or frames arrive.
type conn struct {
	ws          *websocket.Conn
	mu          sync.Mutex
	writeWait   time.Duration
	readTimeout time.Duration
	closeOnce   sync.Once
}

func newConn(ws *websocket.Conn, pingInterval, pingTimeout time.Duration) *conn {
	c := &conn{
		ws:          ws,
		writeWait:   pingTimeout,
		readTimeout: pingInterval + pingTimeout,
	}
	c.extendReadDeadline()
	ws.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})
	return c
}

func (c *conn) extendReadDeadline() {
	_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
}

func (c *conn) read() ([]byte, error) {
	for {
		typ, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		c.extendReadDeadline()
		if typ == websocket.TextMessage || typ == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (c *conn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *conn) ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

// close sends a normal closure frame when possible and closes the socket.
// It is safe to call more than once.
func (c *conn) close() {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = c.ws.Close()
	})
}
