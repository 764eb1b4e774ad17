package game

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/wfunc/manhunt/apperr"
	"github.com/wfunc/manhunt/models"
	"github.com/wfunc/manhunt/persistence"
)

// KillTarget resolves a kill: the killer presents the target's secret code,
// inherits their kill credit and target, the ring is repaired, and a game
// down to one alive player finishes — all inside a single transaction, with
// kills in the same game serialized by a per-game lock. On any failure the
// transaction rolls back and no partial state is observable.
func (e *Engine) KillTarget(killerID uint, targetCode string) (*models.KillResult, error) {
	// Resolve the game outside the transaction so the lock can be taken
	// before any mutation starts.
	probe, err := e.store.GetPlayer(killerID)
	if err != nil {
		return nil, notFound(err, "Player not found")
	}
	if probe.GameID == nil {
		return nil, apperr.InvalidState("Player is not in a game")
	}
	gameID := *probe.GameID

	lock := e.locks.forGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	var result *models.KillResult
	err = e.store.InTransaction(func(tx persistence.Store) error {
		killer, err := tx.GetPlayer(killerID)
		if err != nil {
			return notFound(err, "Player not found")
		}
		if killer.GameID == nil {
			return apperr.InvalidState("Player is not in a game")
		}
		if !killer.IsAlive {
			return apperr.InvalidState("You are dead and cannot kill targets")
		}

		game, err := tx.GetGame(*killer.GameID)
		if err != nil {
			return notFound(err, "Game not found")
		}
		if game.Status != models.StatusInProgress {
			return apperr.InvalidState("Game is not in progress")
		}

		target, err := tx.FindPlayerByCode(game.ID, targetCode)
		if err != nil {
			if errors.Is(err, persistence.ErrRecordNotFound) {
				return apperr.InvalidTarget("Invalid target")
			}
			return err
		}
		if !target.IsAlive {
			return apperr.InvalidTarget("Invalid target")
		}
		if killer.CurrentTargetID == nil {
			return apperr.InvalidState("You have no assigned target")
		}
		if *killer.CurrentTargetID != target.ID {
			return apperr.InvalidState("This is not your assigned target")
		}

		// Credit cascades forward: the survivor's count reflects the
		// whole eliminated chain.
		formerTargetID := target.CurrentTargetID
		killer.Kills += 1 + target.Kills
		killer.CurrentTargetID = formerTargetID
		if killer.CurrentTargetID != nil && *killer.CurrentTargetID == killer.ID {
			killer.CurrentTargetID = nil
		}

		target.IsAlive = false
		target.CurrentTargetID = nil

		if err := tx.SavePlayers(killer, target); err != nil {
			return err
		}

		if err := e.repairRing(tx, game.ID, target.ID, formerTargetID); err != nil {
			return err
		}

		alive, err := tx.CountAlive(game.ID)
		if err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"killer_id": killer.ID,
			"victim_id": target.ID,
			"alive":     alive,
		})
		if err := tx.AppendEvent(&models.GameEvent{
			GameID:  game.ID,
			Type:    models.EventPlayerKilled,
			Payload: payload,
		}); err != nil {
			return err
		}

		result = &models.KillResult{
			Killer:     models.NewPlayerView(killer, true),
			Victim:     models.NewPlayerView(target, false),
			AliveCount: int(alive),
		}

		if alive == 1 {
			now := time.Now()
			game.Status = models.StatusFinished
			game.WinnerID = &killer.ID
			game.FinishedAt = &now
			if err := tx.SaveGame(game); err != nil {
				return err
			}

			finPayload, _ := json.Marshal(map[string]interface{}{"winner_id": killer.ID})
			if err := tx.AppendEvent(&models.GameEvent{
				GameID:  game.ID,
				Type:    models.EventGameFinished,
				Payload: finPayload,
			}); err != nil {
				return err
			}

			winner := models.NewPlayerView(killer, true)
			result.Finished = true
			result.Winner = &winner
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// repairRing restores the single-cycle invariant after a death. It must
// never surface a domain error: a malformed chain degrades to a nil target
// rather than failing an otherwise valid kill.
func (e *Engine) repairRing(tx persistence.Store, gameID, deadID uint, formerTargetID *uint) error {
	all, err := tx.PlayersByGame(gameID)
	if err != nil {
		return err
	}
	playerMap := make(map[uint]*models.Player, len(all))
	for _, p := range all {
		playerMap[p.ID] = p
	}
	changed := repairDeadReferences(playerMap, deadID, formerTargetID)
	if len(changed) == 0 {
		return nil
	}
	return tx.SavePlayers(changed...)
}
