// Package game owns the target ring: every alive player has exactly one
// alive target, the targets of one game form a single directed cycle, and
// kill resolution repairs the cycle atomically.
package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/wfunc/manhunt/apperr"
	"github.com/wfunc/manhunt/logger"
	"github.com/wfunc/manhunt/models"
	"github.com/wfunc/manhunt/persistence"
)

const maxPageLimit = 100

type Engine struct {
	store      persistence.Store
	locks      *lockTable
	minPlayers int
}

func NewEngine(store persistence.Store, minPlayers int) *Engine {
	if minPlayers < 2 {
		minPlayers = 4
	}
	return &Engine{
		store:      store,
		locks:      newLockTable(),
		minPlayers: minPlayers,
	}
}

// --- Game records ---

func (e *Engine) CreateGame() (*models.Game, error) {
	game := &models.Game{Status: models.StatusWaiting}
	if err := e.store.CreateGame(game); err != nil {
		return nil, err
	}
	return game, nil
}

func (e *Engine) GetGame(gameID uint) (*models.Game, error) {
	game, err := e.store.GetGame(gameID)
	if err != nil {
		return nil, notFound(err, "Game not found")
	}
	return game, nil
}

func (e *Engine) ListGames() ([]models.Game, error) {
	return e.store.ListGames()
}

// --- Player membership ---

// JoinGame creates a player inside a WAITING game with a unique nickname
// and a fresh secret code.
func (e *Engine) JoinGame(gameID uint, nickname string) (*models.Player, error) {
	game, err := e.store.GetGame(gameID)
	if err != nil {
		return nil, notFound(err, "Game not found")
	}
	if game.Status != models.StatusWaiting {
		return nil, apperr.InvalidState("Cannot join a game that has started")
	}
	if _, err := e.store.FindPlayerByNickname(gameID, nickname); err == nil {
		return nil, apperr.Conflict("Nickname already taken in this game")
	} else if !errors.Is(err, persistence.ErrRecordNotFound) {
		return nil, err
	}

	code, err := e.uniqueSecretCode(gameID)
	if err != nil {
		return nil, err
	}

	player := &models.Player{
		Nickname:   nickname,
		SecretCode: code,
		IsAlive:    true,
		GameID:     &game.ID,
	}
	if err := e.store.CreatePlayer(player); err != nil {
		return nil, err
	}
	e.recordJoin(game.ID, player)
	return player, nil
}

// CreateStandalonePlayer creates a player outside any game. Uniqueness is
// not enforced until the player joins one.
func (e *Engine) CreateStandalonePlayer(nickname string) (*models.Player, error) {
	player := &models.Player{
		Nickname:   nickname,
		SecretCode: randomCode(),
		IsAlive:    true,
	}
	if err := e.store.CreatePlayer(player); err != nil {
		return nil, err
	}
	return player, nil
}

// JoinStandaloneGame moves a gameless player into a WAITING game,
// validating nickname uniqueness and minting a game-scoped secret code.
func (e *Engine) JoinStandaloneGame(playerID, gameID uint) (*models.Player, error) {
	game, err := e.store.GetGame(gameID)
	if err != nil {
		return nil, notFound(err, "Game not found")
	}
	if game.Status != models.StatusWaiting {
		return nil, apperr.InvalidState("Cannot join a game that has started")
	}

	player, err := e.store.GetPlayer(playerID)
	if err != nil {
		return nil, notFound(err, "Player not found")
	}
	if player.GameID != nil {
		return nil, apperr.InvalidState("Player is already in a game")
	}
	if _, err := e.store.FindPlayerByNickname(gameID, player.Nickname); err == nil {
		return nil, apperr.Conflict("Nickname already taken in this game")
	} else if !errors.Is(err, persistence.ErrRecordNotFound) {
		return nil, err
	}

	code, err := e.uniqueSecretCode(gameID)
	if err != nil {
		return nil, err
	}

	player.GameID = &game.ID
	player.SecretCode = code
	player.IsAlive = true
	if err := e.store.SavePlayers(player); err != nil {
		return nil, err
	}
	e.recordJoin(game.ID, player)
	return player, nil
}

// recordJoin appends the audit row. Join itself already succeeded, so a
// failed append is logged and swallowed.
func (e *Engine) recordJoin(gameID uint, player *models.Player) {
	payload, _ := json.Marshal(map[string]interface{}{
		"player_id": player.ID,
		"nickname":  player.Nickname,
	})
	if err := e.store.AppendEvent(&models.GameEvent{
		GameID:  gameID,
		Type:    models.EventPlayerJoined,
		Payload: payload,
	}); err != nil {
		logger.Log.Errorf("Failed to record join event: %v", err)
	}
}

func (e *Engine) ChangeNickname(playerID uint, newNickname string) (*models.Player, error) {
	player, err := e.store.GetPlayer(playerID)
	if err != nil {
		return nil, notFound(err, "Player not found")
	}
	if player.GameID != nil {
		existing, err := e.store.FindPlayerByNickname(*player.GameID, newNickname)
		if err == nil && existing.ID != playerID {
			return nil, apperr.Conflict("Nickname already taken in this game")
		}
		if err != nil && !errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, err
		}
	}
	player.Nickname = newNickname
	if err := e.store.SavePlayers(player); err != nil {
		return nil, err
	}
	return player, nil
}

// --- Queries ---

func (e *Engine) Players(gameID uint) ([]*models.Player, error) {
	if _, err := e.store.GetGame(gameID); err != nil {
		return nil, notFound(err, "Game not found")
	}
	return e.store.PlayersByGame(gameID)
}

func (e *Engine) AlivePlayers(gameID uint) ([]*models.Player, error) {
	if _, err := e.store.GetGame(gameID); err != nil {
		return nil, notFound(err, "Game not found")
	}
	return e.store.AlivePlayersByGame(gameID)
}

func (e *Engine) Leaderboard(gameID uint) ([]models.LeaderboardEntry, error) {
	if _, err := e.store.GetGame(gameID); err != nil {
		return nil, notFound(err, "Game not found")
	}
	return e.store.Leaderboard(gameID)
}

func (e *Engine) GetPlayer(playerID uint) (*models.Player, error) {
	player, err := e.store.GetPlayer(playerID)
	if err != nil {
		return nil, notFound(err, "Player not found")
	}
	return player, nil
}

func (e *Engine) AllPlayers(page, limit int) (*models.PlayerPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	players, total, err := e.store.ListPlayers((page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	lastPage := int((total + int64(limit) - 1) / int64(limit))
	return &models.PlayerPage{
		Data: players,
		Meta: models.PageMeta{
			Total:    total,
			Page:     page,
			Limit:    limit,
			LastPage: lastPage,
		},
	}, nil
}

// --- Deletion ---

func (e *Engine) DeletePlayer(gameID, playerID uint) error {
	player, err := e.store.GetPlayer(playerID)
	if err != nil {
		return notFound(err, "Player not found")
	}
	if !player.InGame(gameID) {
		return apperr.NotFound("Player not found")
	}
	return e.store.DeletePlayers([]uint{playerID})
}

func (e *Engine) DeleteAllPlayers(gameID uint) error {
	ids, err := e.store.PlayerIDs(&gameID)
	if err != nil {
		return err
	}
	return e.store.DeletePlayers(ids)
}

func (e *Engine) DeleteEveryone() error {
	ids, err := e.store.PlayerIDs(nil)
	if err != nil {
		return err
	}
	return e.store.DeletePlayers(ids)
}

// --- Secret codes ---

func randomCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// uniqueSecretCode regenerates until the code is unused within the game.
// Collisions are resolved here, never surfaced to the caller.
func (e *Engine) uniqueSecretCode(gameID uint) (string, error) {
	for {
		code := randomCode()
		_, err := e.store.FindPlayerByCode(gameID, code)
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func notFound(err error, msg string) error {
	if errors.Is(err, persistence.ErrRecordNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return err
}
