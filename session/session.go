// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/manhunt/network"
)

// Session is one connected client. PlayerID and GameID are zero until the
// client identifies itself via the join-game message.
type Session struct {
	ID         string
	Conn       network.Connection
	PlayerID   uint
	GameID     uint
	RoomID     string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Bind associates the session with a player and their game room.
func (s *Session) Bind(playerID, gameID uint, roomID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.PlayerID = playerID
	s.GameID = gameID
	s.RoomID = roomID
}

func (s *Session) Player() (playerID, gameID uint) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.PlayerID, s.GameID
}

func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.LastActive = time.Now()
}

func (s *Session) IdleSince() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.LastActive
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.Touch()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager is the explicit connection-to-player registry: sessions are added
// on connect, removed on disconnect by session id, and reverse-looked-up by
// player id for directed pushes.
type Manager struct {
	sessions map[string]*Session
	byPlayer map[uint]string // playerID -> sessionID
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byPlayer: make(map[uint]string),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

// BindPlayer records the player owning a session. A reconnecting player
// displaces their previous mapping.
func (m *Manager) BindPlayer(sessionID string, playerID uint) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.byPlayer[playerID] = sessionID
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if sess, ok := m.sessions[sessionID]; ok {
		if sess.PlayerID != 0 && m.byPlayer[sess.PlayerID] == sessionID {
			delete(m.byPlayer, sess.PlayerID)
		}
		delete(m.sessions, sessionID)
	}
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// GetByPlayerID returns the session of a connected player.
func (m *Manager) GetByPlayerID(playerID uint) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	sessionID, ok := m.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// IdleSessions returns sessions silent for longer than timeout.
func (m *Manager) IdleSessions(timeout time.Duration) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	cutoff := time.Now().Add(-timeout)
	var idle []*Session
	for _, sess := range m.sessions {
		if sess.IdleSince().Before(cutoff) {
			idle = append(idle, sess)
		}
	}
	return idle
}
