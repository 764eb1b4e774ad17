package room

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/manhunt/network"
	"github.com/wfunc/manhunt/session"
)

type stubConn struct{}

func (stubConn) Send(msgID uint16, data []byte) error { return nil }
func (stubConn) Close() error                         { return nil }
func (stubConn) RemoteAddr() net.Addr                 { return nil }
func (stubConn) SetHeartbeat(interval time.Duration)  {}
func (stubConn) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestRoomID(t *testing.T) {
	if got := RoomID(7); got != "game-7" {
		t.Errorf("Expected game-7, got %s", got)
	}
}

func TestJoinCreatesRoom(t *testing.T) {
	m := NewRoomManager()
	sess := session.NewSession("s1", stubConn{})

	r := m.Join(3, sess)
	if r.GameID != 3 {
		t.Errorf("Expected game id 3, got %d", r.GameID)
	}
	if sess.RoomID != r.ID {
		t.Errorf("Join should stamp the session's room, got %s", sess.RoomID)
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 room, got %d", m.Count())
	}

	// A second session lands in the same room.
	other := session.NewSession("s2", stubConn{})
	again := m.Join(3, other)
	if again != r {
		t.Error("Same game should reuse the room")
	}
	if len(r.GetSessions()) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(r.GetSessions()))
	}
}

func TestLeaveDropsEmptyRoom(t *testing.T) {
	m := NewRoomManager()
	s1 := session.NewSession("s1", stubConn{})
	s2 := session.NewSession("s2", stubConn{})
	r := m.Join(3, s1)
	m.Join(3, s2)

	m.Leave(r.ID, "s1")
	if _, ok := m.GetRoom(r.ID); !ok {
		t.Fatal("Room with members left should survive")
	}

	m.Leave(r.ID, "s2")
	if _, ok := m.GetRoom(r.ID); ok {
		t.Fatal("Empty room should be dropped")
	}
	if m.Count() != 0 {
		t.Errorf("Expected 0 rooms, got %d", m.Count())
	}
}

func TestLeaveUnknownRoom(t *testing.T) {
	m := NewRoomManager()
	// Should be a no-op, not a panic.
	m.Leave("game-99", "s1")
}

func TestRoomsPerGameAreDistinct(t *testing.T) {
	m := NewRoomManager()
	s1 := session.NewSession("s1", stubConn{})
	s2 := session.NewSession("s2", stubConn{})

	r1 := m.Join(1, s1)
	r2 := m.Join(2, s2)
	if r1 == r2 {
		t.Fatal("Different games should get different rooms")
	}
	if m.Count() != 2 {
		t.Errorf("Expected 2 rooms, got %d", m.Count())
	}
}
