// Package notify translates engine and proximity outcomes into push
// channel events. Payloads carry enough identity for a client to update
// its UI without a follow-up query.
package notify

import (
	"encoding/json"

	"github.com/wfunc/manhunt/broadcast"
	"github.com/wfunc/manhunt/logger"
	"github.com/wfunc/manhunt/models"
	"github.com/wfunc/manhunt/network"
	"github.com/wfunc/manhunt/room"
)

type Notifier struct {
	broadcaster broadcast.Broadcaster
}

func NewNotifier(b broadcast.Broadcaster) *Notifier {
	return &Notifier{broadcaster: b}
}

type playerKilledEvent struct {
	Killer       models.PlayerView `json:"killer"`
	Victim       models.PlayerView `json:"victim"`
	AlivePlayers int               `json:"alive_players"`
}

type gameFinishedEvent struct {
	Winner models.PlayerView `json:"winner"`
}

type gameStartedEvent struct {
	GameID  uint   `json:"game_id"`
	Message string `json:"message"`
}

type killRequestEvent struct {
	HunterID uint   `json:"hunter_id"`
	Message  string `json:"message"`
}

// GameStarted tells the room targets have been assigned.
func (n *Notifier) GameStarted(gameID uint) {
	n.toRoom(gameID, network.MsgTypeGameStarted, gameStartedEvent{
		GameID:  gameID,
		Message: "Game has started!",
	})
}

// KillResolved fans out playerKilled and, when the kill decided the game,
// gameFinished.
func (n *Notifier) KillResolved(gameID uint, result *models.KillResult) {
	killer := result.Killer
	killer.SecretCode = "" // the room never sees anyone's code
	n.toRoom(gameID, network.MsgTypePlayerKilled, playerKilledEvent{
		Killer:       killer,
		Victim:       result.Victim,
		AlivePlayers: result.AliveCount,
	})
	if result.Finished && result.Winner != nil {
		winner := *result.Winner
		winner.SecretCode = ""
		n.toRoom(gameID, network.MsgTypeGameFinished, gameFinishedEvent{Winner: winner})
	}
}

// KillRequested pops the confirmation prompt on the target's device.
func (n *Notifier) KillRequested(targetID, hunterID uint) error {
	data, _ := json.Marshal(killRequestEvent{
		HunterID: hunterID,
		Message:  "Your hunter is close! Did they get you?",
	})
	return n.broadcaster.SendToPlayer(targetID, network.MsgTypeKillRequest, data)
}

func (n *Notifier) toRoom(gameID uint, msgID uint16, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorf("Failed to marshal push payload: %v", err)
		return
	}
	if err := n.broadcaster.BroadcastToRoom(room.RoomID(gameID), msgID, data); err != nil {
		logger.Log.Debugf("Broadcast to %s skipped: %v", room.RoomID(gameID), err)
	}
}
