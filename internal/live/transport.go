package live

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketTransport dials the server's push endpoint
type WebSocketTransport struct {
	url    string
	header http.Header
}

// NewWebSocketTransport creates a transport for the given ws:// URL
func NewWebSocketTransport(url string, header http.Header) *WebSocketTransport {
	return &WebSocketTransport{url: url, header: header}
}

// Dial establishes a new websocket connection
func (t *WebSocketTransport) Dial(ctx context.Context) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, t.header)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
