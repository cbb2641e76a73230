package relay

import (
	"bufio"
	"io"
	"net"
	"strings"
)

// Conn is one client's duplex line stream. The session logic only ever sees
// this interface, which keeps it independent of the underlying transport.
type Conn interface {
	// ReadLine blocks until the next inbound line arrives and returns it
	// without trailing line-ending characters. io.EOF signals an orderly
	// close by the peer.
	ReadLine() (string, error)

	// WriteLine sends one line, adding whatever framing the transport needs.
	WriteLine(line string) error

	// Close releases the underlying transport. Safe to call more than once.
	Close() error

	// RemoteAddr identifies the peer for logging.
	RemoteAddr() string
}

// tcpConn adapts a stream connection to the line-oriented Conn interface.
type tcpConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewTCPConn wraps an accepted stream connection.
func NewTCPConn(conn net.Conn) Conn {
	return &tcpConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (c *tcpConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *tcpConn) WriteLine(line string) error {
	_, err := io.WriteString(c.conn, line+"\n")
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

func (c *tcpConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
