package game

import (
	"encoding/json"
	"math/rand"

	"github.com/wfunc/manhunt/apperr"
	"github.com/wfunc/manhunt/models"
	"github.com/wfunc/manhunt/persistence"
)

// AssignInitialTargets links the game's alive players into one random
// cycle and moves the game to IN_PROGRESS, all in one transaction.
func (e *Engine) AssignInitialTargets(gameID uint) error {
	lock := e.locks.forGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	return e.store.InTransaction(func(tx persistence.Store) error {
		game, err := tx.GetGame(gameID)
		if err != nil {
			return notFound(err, "Game not found")
		}
		if game.Status != models.StatusWaiting {
			return apperr.InvalidState("Targets can only be assigned to a waiting game")
		}

		players, err := tx.AlivePlayersByGame(gameID)
		if err != nil {
			return err
		}
		if len(players) < e.minPlayers {
			return apperr.InvalidState("Not enough players")
		}

		linkCycle(players)
		if err := tx.SavePlayers(players...); err != nil {
			return err
		}

		game.Status = models.StatusInProgress
		if err := tx.SaveGame(game); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{"players": len(players)})
		return tx.AppendEvent(&models.GameEvent{
			GameID:  gameID,
			Type:    models.EventTargetsAssigned,
			Payload: payload,
		})
	})
}

// linkCycle shuffles the players and points each at the next, wrapping the
// last to the first. A circular shift of a permutation is a single cycle by
// construction: no self-loops, no sub-cycles.
func linkCycle(players []*models.Player) {
	rand.Shuffle(len(players), func(i, j int) {
		players[i], players[j] = players[j], players[i]
	})
	for i, p := range players {
		targetID := players[(i+1)%len(players)].ID
		p.CurrentTargetID = &targetID
	}
}

// repairDeadReferences re-points every alive hunter still targeting the
// dead player at the nearest alive successor along the dead player's former
// chain. The cycle invariant means there is at most one such hunter, but a
// corrupt chain must degrade to a nil target, never to an error.
func repairDeadReferences(players map[uint]*models.Player, deadID uint, formerTargetID *uint) []*models.Player {
	var changed []*models.Player
	for _, hunter := range players {
		if !hunter.IsAlive || hunter.ID == deadID {
			continue
		}
		if hunter.CurrentTargetID == nil || *hunter.CurrentTargetID != deadID {
			continue
		}
		hunter.CurrentTargetID = nextAliveInChain(players, hunter.ID, deadID, formerTargetID)
		changed = append(changed, hunter)
	}
	return changed
}

// nextAliveInChain walks target pointers from start, skipping dead nodes,
// until it finds an alive player other than the hunter. The visited set is
// seeded with the hunter and the dead player so a degenerate chain
// terminates with nil instead of looping.
func nextAliveInChain(players map[uint]*models.Player, hunterID, deadID uint, start *uint) *uint {
	visited := map[uint]bool{hunterID: true, deadID: true}
	next := start
	for next != nil {
		candidate, ok := players[*next]
		if !ok {
			return nil
		}
		if candidate.IsAlive && candidate.ID != hunterID {
			id := candidate.ID
			return &id
		}
		if visited[candidate.ID] {
			return nil
		}
		visited[candidate.ID] = true
		next = candidate.CurrentTargetID
	}
	return nil
}
