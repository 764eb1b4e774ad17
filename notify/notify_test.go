package notify

import (
	"encoding/json"
	"testing"

	"github.com/wfunc/manhunt/models"
	"github.com/wfunc/manhunt/network"
)

type fakeBroadcaster struct {
	roomMessages   []fakeMessage
	playerMessages []fakeMessage
}

type fakeMessage struct {
	roomID   string
	playerID uint
	msgID    uint16
	data     []byte
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	f.roomMessages = append(f.roomMessages, fakeMessage{roomID: roomID, msgID: msgID, data: data})
	return nil
}

func (f *fakeBroadcaster) SendToPlayer(playerID uint, msgID uint16, data []byte) error {
	f.playerMessages = append(f.playerMessages, fakeMessage{playerID: playerID, msgID: msgID, data: data})
	return nil
}

func TestKillResolved(t *testing.T) {
	fb := &fakeBroadcaster{}
	n := NewNotifier(fb)

	n.KillResolved(3, &models.KillResult{
		Killer:     models.PlayerView{ID: 1, Nickname: "alice", Kills: 1, IsAlive: true, SecretCode: "123456"},
		Victim:     models.PlayerView{ID: 2, Nickname: "bob"},
		AliveCount: 3,
	})

	if len(fb.roomMessages) != 1 {
		t.Fatalf("Expected 1 room message, got %d", len(fb.roomMessages))
	}
	msg := fb.roomMessages[0]
	if msg.roomID != "game-3" {
		t.Errorf("Expected room game-3, got %s", msg.roomID)
	}
	if msg.msgID != network.MsgTypePlayerKilled {
		t.Errorf("Expected msg id %d, got %d", network.MsgTypePlayerKilled, msg.msgID)
	}

	var ev playerKilledEvent
	if err := json.Unmarshal(msg.data, &ev); err != nil {
		t.Fatalf("Bad payload: %v", err)
	}
	if ev.Killer.SecretCode != "" {
		t.Error("Room payload must not carry the killer's secret code")
	}
	if ev.Killer.ID != 1 || ev.Victim.ID != 2 || ev.AlivePlayers != 3 {
		t.Errorf("Unexpected payload: %+v", ev)
	}
}

func TestKillResolved_Finished(t *testing.T) {
	fb := &fakeBroadcaster{}
	n := NewNotifier(fb)

	winner := models.PlayerView{ID: 1, Nickname: "alice", Kills: 3, IsAlive: true, SecretCode: "123456"}
	n.KillResolved(3, &models.KillResult{
		Finished:   true,
		Killer:     winner,
		Victim:     models.PlayerView{ID: 2, Nickname: "bob"},
		Winner:     &winner,
		AliveCount: 1,
	})

	if len(fb.roomMessages) != 2 {
		t.Fatalf("Expected playerKilled + gameFinished, got %d messages", len(fb.roomMessages))
	}
	final := fb.roomMessages[1]
	if final.msgID != network.MsgTypeGameFinished {
		t.Errorf("Expected msg id %d, got %d", network.MsgTypeGameFinished, final.msgID)
	}
	var ev gameFinishedEvent
	if err := json.Unmarshal(final.data, &ev); err != nil {
		t.Fatalf("Bad payload: %v", err)
	}
	if ev.Winner.ID != 1 {
		t.Errorf("Expected winner 1, got %d", ev.Winner.ID)
	}
	if ev.Winner.SecretCode != "" {
		t.Error("Winner payload must not carry the secret code")
	}
}

func TestKillRequested(t *testing.T) {
	fb := &fakeBroadcaster{}
	n := NewNotifier(fb)

	if err := n.KillRequested(2, 1); err != nil {
		t.Fatalf("KillRequested failed: %v", err)
	}
	if len(fb.playerMessages) != 1 {
		t.Fatalf("Expected 1 directed message, got %d", len(fb.playerMessages))
	}
	msg := fb.playerMessages[0]
	if msg.playerID != 2 {
		t.Errorf("Expected target 2, got %d", msg.playerID)
	}
	if msg.msgID != network.MsgTypeKillRequest {
		t.Errorf("Expected msg id %d, got %d", network.MsgTypeKillRequest, msg.msgID)
	}
	var ev killRequestEvent
	if err := json.Unmarshal(msg.data, &ev); err != nil {
		t.Fatalf("Bad payload: %v", err)
	}
	if ev.HunterID != 1 {
		t.Errorf("Expected hunter 1, got %d", ev.HunterID)
	}
}

func TestGameStarted(t *testing.T) {
	fb := &fakeBroadcaster{}
	n := NewNotifier(fb)

	n.GameStarted(5)
	if len(fb.roomMessages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(fb.roomMessages))
	}
	if fb.roomMessages[0].msgID != network.MsgTypeGameStarted {
		t.Errorf("Expected msg id %d, got %d", network.MsgTypeGameStarted, fb.roomMessages[0].msgID)
	}
	if fb.roomMessages[0].roomID != "game-5" {
		t.Errorf("Expected room game-5, got %s", fb.roomMessages[0].roomID)
	}
}
