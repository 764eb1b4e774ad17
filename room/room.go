// room/room.go
package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/wfunc/manhunt/session"
)

// Room tracks which sessions are watching one game. Game lifecycle lives in
// the database; a room is only push-channel membership.
type Room struct {
	ID        string
	GameID    uint
	Sessions  map[string]*session.Session // sessionID -> session
	CreatedAt time.Time
	mutex     sync.RWMutex
}

// RoomID builds the canonical room name for a game.
func RoomID(gameID uint) string {
	return fmt.Sprintf("game-%d", gameID)
}

func NewRoom(gameID uint) *Room {
	return &Room{
		ID:        RoomID(gameID),
		GameID:    gameID,
		Sessions:  make(map[string]*session.Session),
		CreatedAt: time.Now(),
	}
}

func (r *Room) Add(s *session.Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Sessions[s.ID] = s
	s.RoomID = r.ID
}

func (r *Room) Remove(sessionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.Sessions, sessionID)
}

func (r *Room) Empty() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.Sessions) == 0
}

// GetSessions returns a snapshot of the room's sessions.
func (r *Room) GetSessions() []*session.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	sessions := make([]*session.Session, 0, len(r.Sessions))
	for _, s := range r.Sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Manager tracks all rooms.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewRoomManager() *Manager {
	return &Manager{rooms: make(map[string]*Room)}
}

// Join adds a session to the game's room, creating it on first use.
func (m *Manager) Join(gameID uint, s *session.Session) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	id := RoomID(gameID)
	r, exists := m.rooms[id]
	if !exists {
		r = NewRoom(gameID)
		m.rooms[id] = r
	}
	r.Add(s)
	return r
}

// Leave removes the session from its room, dropping the room once empty.
func (m *Manager) Leave(roomID, sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	r, exists := m.rooms[roomID]
	if !exists {
		return
	}
	r.Remove(sessionID)
	if r.Empty() {
		delete(m.rooms, roomID)
	}
}

func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, exists := m.rooms[id]
	return r, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
