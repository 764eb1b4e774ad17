package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/manhunt/apperr"
	"github.com/wfunc/manhunt/logger"
	"github.com/wfunc/manhunt/network"
	"github.com/wfunc/manhunt/room"
	"github.com/wfunc/manhunt/session"
)

type joinGameMessage struct {
	GameID   uint `json:"game_id"`
	PlayerID uint `json:"player_id"`
}

type locationMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type respondToKillMessage struct {
	HunterID uint `json:"hunter_id"`
	Accepted bool `json:"accepted"`
}

type wsError struct {
	Message string `json:"message"`
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.mon.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		if sess.RoomID != "" {
			s.roomManager.Leave(sess.RoomID, sess.GetID())
		}
		s.sessionManager.Remove(sess.GetID())
		s.limiters.Remove(sess.GetID())
		s.mon.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeJoinGame:
		s.handleWsJoinGame(sess, packet)
	case network.MsgTypeUpdateLocation:
		s.handleWsLocation(sess, packet)
	case network.MsgTypeRequestKill:
		s.handleWsRequestKill(sess)
	case network.MsgTypeRespondToKill:
		s.handleWsRespondToKill(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// handleWsJoinGame binds the session to a player and joins the game room.
func (s *GameServer) handleWsJoinGame(sess *session.Session, packet *network.Packet) {
	var msg joinGameMessage
	if err := json.Unmarshal(packet.Data, &msg); err != nil {
		s.sendError(sess, "invalid join payload")
		return
	}

	player, err := s.engine.GetPlayer(msg.PlayerID)
	if err != nil {
		s.sendDomainError(sess, err)
		return
	}
	if !player.InGame(msg.GameID) {
		s.sendError(sess, "Player is not in this game")
		return
	}

	r := s.roomManager.Join(msg.GameID, sess)
	sess.Bind(msg.PlayerID, msg.GameID, r.ID)
	s.sessionManager.BindPlayer(sess.GetID(), msg.PlayerID)

	logger.Log.Infof("Player %d joined %s (session %s)", msg.PlayerID, r.ID, sess.GetID())

	resp, _ := json.Marshal(map[string]string{"status": "joined", "room": r.ID})
	sess.Send(network.MsgTypeJoined, resp)
}

// handleWsLocation records the location and replies with the distance to
// the session's target, plus an alert when the target is within threshold.
func (s *GameServer) handleWsLocation(sess *session.Session, packet *network.Packet) {
	playerID, _ := sess.Player()
	if playerID == 0 {
		s.sendError(sess, "join a game first")
		return
	}
	if !s.limiters.Allow(sess.GetID()) {
		return // silently dropped, the next fix supersedes it anyway
	}

	var msg locationMessage
	if err := json.Unmarshal(packet.Data, &msg); err != nil {
		s.sendError(sess, "invalid location payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := s.prox.DistanceToTarget(ctx, playerID, msg.Latitude, msg.Longitude)
	if err != nil {
		s.sendDomainError(sess, err)
		return
	}
	s.mon.IncLocationUpdate()

	data, _ := json.Marshal(result)
	sess.Send(network.MsgTypeDistanceUpdate, data)

	if result.Nearby {
		alert, _ := json.Marshal(map[string]interface{}{
			"message":  "Your target is close!",
			"distance": result.Distance,
		})
		sess.Send(network.MsgTypeTargetAlert, alert)
	}
}

// handleWsRequestKill runs the advisory proximity gate and, when the
// target is close and connected, pops the confirmation prompt on the
// target's device. The authoritative check stays with the secret code.
func (s *GameServer) handleWsRequestKill(sess *session.Session) {
	hunterID, _ := sess.Player()
	if hunterID == 0 {
		s.sendError(sess, "join a game first")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := s.prox.VerifyKillProximity(ctx, hunterID)
	if err != nil {
		s.sendDomainError(sess, err)
		return
	}
	if !result.Nearby {
		s.sendError(sess, "Target is too far away!")
		return
	}

	if err := s.notifier.KillRequested(result.TargetID, hunterID); err != nil {
		s.sendError(sess, "Target is disconnected")
		return
	}

	resp, _ := json.Marshal(map[string]string{"status": "waiting"})
	sess.Send(network.MsgTypeKillRequest, resp)
}

// handleWsRespondToKill is sent by the target. Accepting resolves the kill
// through the engine with the target's own secret code as proof.
func (s *GameServer) handleWsRespondToKill(sess *session.Session, packet *network.Packet) {
	targetID, gameID := sess.Player()
	if targetID == 0 {
		s.sendError(sess, "join a game first")
		return
	}

	var msg respondToKillMessage
	if err := json.Unmarshal(packet.Data, &msg); err != nil {
		s.sendError(sess, "invalid response payload")
		return
	}

	if !msg.Accepted {
		denial, _ := json.Marshal(wsError{Message: "Target denied the kill. Get closer!"})
		s.broadcaster.SendToPlayer(msg.HunterID, network.MsgTypeKillDenied, denial)
		return
	}

	target, err := s.engine.GetPlayer(targetID)
	if err != nil {
		s.sendDomainError(sess, err)
		return
	}

	start := time.Now()
	result, err := s.engine.KillTarget(msg.HunterID, target.SecretCode)
	s.mon.ObserveKillLatency(time.Since(start))
	if err != nil {
		if _, domain := apperr.KindOf(err); domain {
			s.mon.IncKillsRejected()
		}
		errMsg, _ := json.Marshal(wsError{Message: err.Error()})
		s.broadcaster.SendToPlayer(msg.HunterID, network.MsgTypeKillError, errMsg)
		return
	}

	s.mon.IncKillsResolved()
	if result.Finished {
		s.mon.IncGamesFinished()
	}

	confirmation, _ := json.Marshal(map[string]string{"result": "success"})
	s.broadcaster.SendToPlayer(msg.HunterID, network.MsgTypeKillConfirmed, confirmation)
	s.notifier.KillResolved(gameID, result)
}

func (s *GameServer) sendError(sess *session.Session, message string) {
	data, _ := json.Marshal(wsError{Message: message})
	sess.Send(network.MsgTypeError, data)
}

func (s *GameServer) sendDomainError(sess *session.Session, err error) {
	if _, ok := apperr.KindOf(err); ok {
		s.sendError(sess, err.Error())
		return
	}
	logger.Log.Errorf("Websocket handler error (room %s): %v", room.RoomID(sess.GameID), err)
	s.sendError(sess, "internal error")
}
