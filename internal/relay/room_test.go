package relay

import (
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory Conn for registry and broadcast tests.
type fakeConn struct {
	mu      sync.Mutex
	closed  bool
	inbound chan string
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan string, 16)}
}

func (c *fakeConn) ReadLine() (string, error) {
	line, ok := <-c.inbound
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (c *fakeConn) WriteLine(string) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.inbound)
	}
	return nil
}

func (c *fakeConn) RemoteAddr() string { return "fake" }

type staticColorPicker struct {
	color string
}

func (p *staticColorPicker) Next() string {
	return p.color
}

func quietRoom(opts ...Option) *Room {
	opts = append([]Option{WithLogger(log.New(io.Discard, "", 0))}, opts...)
	return NewRoom(opts...)
}

func addSession(room *Room, username string) *Session {
	s := newSession(newFakeConn())
	s.Username = username
	room.Register(s)
	return s
}

func TestRegisterAssignsPaletteColorsInJoinOrder(t *testing.T) {
	room := quietRoom()

	for i := 0; i < len(defaultColorPalette)+2; i++ {
		s := addSession(room, fmt.Sprintf("user-%d", i))
		require.Equal(t, defaultColorPalette[i%len(defaultColorPalette)], s.Color)
	}
}

func TestUsernamesSortedSnapshot(t *testing.T) {
	room := quietRoom()

	addSession(room, "carol")
	bob := addSession(room, "bob")
	addSession(room, "alice")

	require.Equal(t, []string{"alice", "bob", "carol"}, room.Usernames())

	_, ok := room.Unregister(bob.ID)
	require.True(t, ok)
	require.Equal(t, []string{"alice", "carol"}, room.Usernames())
}

func TestUnregisterIsIdempotent(t *testing.T) {
	room := quietRoom()
	s := addSession(room, "carol")

	removed, ok := room.Unregister(s.ID)
	require.True(t, ok)
	require.Equal(t, "carol", removed.Username)

	removed, ok = room.Unregister(s.ID)
	require.False(t, ok)
	require.Nil(t, removed)
	require.Zero(t, room.Count())
}

func TestBroadcastDeliversToEverySession(t *testing.T) {
	room := quietRoom()

	sessions := []*Session{
		addSession(room, "alice"),
		addSession(room, "bob"),
		addSession(room, "carol"),
	}

	room.Broadcast("_system_|hello")

	for _, s := range sessions {
		select {
		case line := <-s.outbound:
			require.Equal(t, "_system_|hello", line)
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("session %q did not receive the broadcast", s.Username)
		}
	}
}

func TestBroadcastFromRewritesInboundLine(t *testing.T) {
	room := quietRoom(WithColorPicker(&staticColorPicker{color: "#1976D2"}))

	alice := addSession(room, "alice")
	bob := addSession(room, "bob")

	room.BroadcastFrom(alice, "_file_|report.pdf|QkFTRTY0")

	select {
	case line := <-bob.outbound:
		require.Equal(t, "_file_|alice|#1976D2|report.pdf|QkFTRTY0", line)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for the rewritten line")
	}
}

func TestBroadcastSkipsStuckRecipientWithoutEvicting(t *testing.T) {
	room := quietRoom()

	stuck := addSession(room, "stuck")
	healthy := []*Session{
		addSession(room, "alice"),
		addSession(room, "bob"),
		addSession(room, "carol"),
	}

	// Nobody drains the stuck session's queue, so it fills up.
	for i := 0; i < outboundQueueSize; i++ {
		require.True(t, stuck.deliver("filler"))
	}

	room.Broadcast("_system_|hello")

	for _, s := range healthy {
		drained := drainQueue(s)
		require.Contains(t, drained, "_system_|hello", "session %q missed the broadcast", s.Username)
	}

	// The stuck session was skipped, not removed: eviction belongs to its own
	// read loop.
	require.Equal(t, 4, room.Count())
	require.Contains(t, room.Usernames(), "stuck")
}

func TestBroadcastUserListPublishesRoster(t *testing.T) {
	room := quietRoom()

	addSession(room, "carol")
	alice := addSession(room, "alice")

	room.BroadcastUserList()

	select {
	case line := <-alice.outbound:
		require.Equal(t, "_userlist_|alice,carol", line)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for the roster")
	}
}

func drainQueue(s *Session) []string {
	var lines []string
	for {
		select {
		case line := <-s.outbound:
			lines = append(lines, line)
		default:
			return lines
		}
	}
}
