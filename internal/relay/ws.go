package relay

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The relay carries no origin policy of its own; deployments that need
	// one are expected to enforce it in front of the gateway.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WSHandler upgrades HTTP requests and runs the normal session handler over
// the socket. Each text frame carries exactly one wire line, so WebSocket and
// TCP clients share the same room and roster.
func WSHandler(room *Room, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("relay: websocket upgrade from %s failed: %v", r.RemoteAddr, err)
			return
		}
		go HandleSession(room, newWSConn(conn))
	})
}

// wsConn adapts a websocket connection to the line-oriented Conn interface.
type wsConn struct {
	conn *websocket.Conn
}

func newWSConn(conn *websocket.Conn) Conn {
	return &wsConn{conn: conn}
}

func (c *wsConn) ReadLine() (string, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				// An orderly websocket close is the transport's EOF.
				return "", io.EOF
			}
			return "", err
		}
		if kind != websocket.TextMessage {
			continue
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
}

func (c *wsConn) WriteLine(line string) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
