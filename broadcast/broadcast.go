// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/manhunt/room"
	"github.com/wfunc/manhunt/session"
)

var ErrRoomNotFound = errors.New("room not found")

// Broadcaster is the push channel: fan-out to a game room or a directed
// message to one connected player.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	SendToPlayer(playerID uint, msgID uint16, data []byte) error
}

type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	r, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, s := range r.GetSessions() {
		if err := s.Send(msgID, data); err != nil {
			// A dead connection is cleaned up by its read loop.
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) SendToPlayer(playerID uint, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.GetByPlayerID(playerID)
	if !exists {
		return errors.New("player not connected")
	}
	return s.Send(msgID, data)
}
