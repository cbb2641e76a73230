package relay

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// outboundQueueSize bounds how far a slow recipient may lag before broadcasts
// to it are dropped.
const outboundQueueSize = 16

// defaultUsername is assigned when the handshake line is blank.
const defaultUsername = "Guest"

// Session is the server-side state and worker for one connected client, from
// handshake to disconnect.
type Session struct {
	ID       string
	Username string
	Color    string

	conn     Conn
	outbound chan string
	done     chan struct{}

	workers sync.WaitGroup
	cleanup sync.Once
}

func newSession(conn Conn) *Session {
	return &Session{
		ID:       uuid.NewString(),
		conn:     conn,
		outbound: make(chan string, outboundQueueSize),
		done:     make(chan struct{}),
	}
}

// deliver queues one line for the session's writer without blocking. It
// reports false when the session is closing or its queue is full.
func (s *Session) deliver(line string) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.outbound <- line:
		return true
	default:
		return false
	}
}

// HandleSession runs one client connection from handshake to disconnect. It
// blocks until the session ends and always releases the transport.
func HandleSession(room *Room, conn Conn) {
	newSession(conn).run(room)
}

func (s *Session) run(room *Room) {
	defer s.cleanupSession(room)

	// The first line is the handshake. If the stream ends here the session
	// was never registered and nothing is announced.
	username, err := s.conn.ReadLine()
	if err != nil {
		return
	}
	s.Username = strings.TrimSpace(username)
	if s.Username == "" {
		s.Username = defaultUsername
	}

	room.Register(s)
	s.startOutboundRelay(room)

	room.Broadcast(EncodeSystem(fmt.Sprintf("--- %s has joined the chat. ---", s.Username)))
	room.BroadcastUserList()

	if err := s.readLoop(room); err != nil && !isExpectedCloseError(err) {
		room.logger.Printf("relay: session %q read error: %v", s.Username, err)
	}
}

// startOutboundRelay starts the single writer for this session's transport.
// Having one writer keeps each recipient's lines in submission order.
func (s *Session) startOutboundRelay(room *Room) {
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		for {
			select {
			case <-s.done:
				return
			case line := <-s.outbound:
				if err := s.conn.WriteLine(line); err != nil {
					if !isExpectedCloseError(err) {
						room.logger.Printf("relay: write to %q failed: %v", s.Username, err)
					}
					return
				}
			}
		}
	}()
}

func (s *Session) readLoop(room *Room) error {
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		room.BroadcastFrom(s, line)
	}
}

// cleanupSession unregisters the session, announces the departure when a
// record was actually removed, and releases the transport. The removal check
// guards against a duplicate disconnect signal broadcasting twice.
func (s *Session) cleanupSession(room *Room) {
	s.cleanup.Do(func() {
		if removed, ok := room.Unregister(s.ID); ok {
			room.Broadcast(EncodeSystem(fmt.Sprintf("--- %s has left the chat. ---", removed.Username)))
			room.BroadcastUserList()
		}

		close(s.done)
		_ = s.conn.Close()
		s.workers.Wait()
	})
}

// isExpectedCloseError reports whether err is a routine disconnect. These are
// part of normal teardown and stay out of the error log.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}
